package hermes

import "time"

type InitiativeEvent struct {
	InitiativeID string `json:"initiative_id"`
	Title        string `json:"title"`
	Status       string `json:"status"`
	Owner        string `json:"owner,omitempty"`
	Actor        string `json:"actor,omitempty"`
}

type ModelCreatedEvent struct {
	ModelID   string `json:"model_id"`
	Name      string `json:"name"`
	Version   int    `json:"version"`
	Active    bool   `json:"active"`
	CreatedBy string `json:"created_by,omitempty"`
}

type ModelActivatedEvent struct {
	ModelID     string `json:"model_id"`
	Name        string `json:"name"`
	Version     int    `json:"version"`
	ActivatedBy string `json:"activated_by,omitempty"`
}

type ScoreComputedEvent struct {
	InitiativeID string  `json:"initiative_id"`
	ModelID      string  `json:"model_id"`
	OverallScore float64 `json:"overall_score"`
	Rank         *int    `json:"rank,omitempty"`
	Method       string  `json:"method"`
	ScoredBy     string  `json:"scored_by,omitempty"`
}

type RankRecomputedEvent struct {
	ModelID string `json:"model_id"`
	Ranked  int    `json:"ranked"`
	Trigger string `json:"trigger,omitempty"`
}

type DependencyEvent struct {
	EdgeID   string `json:"edge_id"`
	FromID   string `json:"from_id"`
	ToID     string `json:"to_id"`
	Kind     string `json:"kind"`
	Blocking bool   `json:"blocking"`
	Actor    string `json:"actor,omitempty"`
}

type AllocationRecordedEvent struct {
	AllocationID string  `json:"allocation_id"`
	InitiativeID string  `json:"initiative_id"`
	ResourceType string  `json:"resource_type"`
	Amount       float64 `json:"amount"`
	Window       string  `json:"window,omitempty"`
}

type GateAssessedEvent struct {
	InitiativeID string `json:"initiative_id"`
	Status       string `json:"status"`
	Score        int    `json:"score"`
	AssessedBy   string `json:"assessed_by,omitempty"`
}

type StatsEvent struct {
	Initiatives     int       `json:"initiatives"`
	Models          int       `json:"models"`
	Snapshots       int       `json:"snapshots"`
	Edges           int       `json:"edges"`
	UnresolvedEdges int       `json:"unresolved_edges"`
	Assessments     int       `json:"assessments"`
	Timestamp       time.Time `json:"timestamp"`
}
