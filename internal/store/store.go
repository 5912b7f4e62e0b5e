package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type InitiativeStatus string

const (
	InitiativeProposed  InitiativeStatus = "proposed"
	InitiativeActive    InitiativeStatus = "active"
	InitiativeOnHold    InitiativeStatus = "on_hold"
	InitiativeDone      InitiativeStatus = "done"
	InitiativeCancelled InitiativeStatus = "cancelled"
)

type Initiative struct {
	ID          uuid.UUID        `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Status      InitiativeStatus `json:"status"`
	Owner       string           `json:"owner,omitempty"`

	// Scorable attributes. Nil means not assessed yet; criterion
	// evaluation falls back to its default rather than erroring.
	ExpectedValue      *float64 `json:"expected_value,omitempty"`
	StrategicFit       *float64 `json:"strategic_fit,omitempty"`
	RiskLevel          *float64 `json:"risk_level,omitempty"`
	TeamExperience     *float64 `json:"team_experience,omitempty"`
	Urgency            *float64 `json:"urgency,omitempty"`
	CostScore          *float64 `json:"cost_score,omitempty"`
	ConfidencePct      *float64 `json:"confidence_pct,omitempty"`
	DataReady          *bool    `json:"data_ready,omitempty"`
	ComplianceApproved *bool    `json:"compliance_approved,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type InitiativeFilter struct {
	Status *InitiativeStatus
	Owner  string
	Limit  int
	Offset int
}

// --- Scoring model types ---

type DimensionType string

const (
	DimensionValue              DimensionType = "value"
	DimensionFeasibility        DimensionType = "feasibility"
	DimensionRisk               DimensionType = "risk"
	DimensionStrategicAlignment DimensionType = "strategic_alignment"
)

// ModelWeights are percentages per dimension type; the four must sum to 100.
type ModelWeights struct {
	Value              float64 `json:"value"`
	Feasibility        float64 `json:"feasibility"`
	Risk               float64 `json:"risk"`
	StrategicAlignment float64 `json:"strategic_alignment"`
}

type ScoringModel struct {
	ID         uuid.UUID    `json:"id"`
	Name       string       `json:"name"`
	Version    int          `json:"version"`
	Weights    ModelWeights `json:"weights"`
	Active     bool         `json:"active"`
	Dimensions []Dimension  `json:"dimensions"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

type Dimension struct {
	Type DimensionType `json:"type"`
	// Weight is relative within the model and carried for display; the
	// model-level weight table is authoritative for the overall rollup.
	Weight   float64     `json:"weight,omitempty"`
	Criteria []Criterion `json:"criteria"`
}

type CriterionKind string

const (
	KindScore   CriterionKind = "score"   // raw value already on the 0-10 scale
	KindPercent CriterionKind = "percent" // raw value on 0-100, divided by 10
	KindBoolean CriterionKind = "boolean" // true maps to max, false to min
)

type Criterion struct {
	Name        string        `json:"name"`
	Weight      float64       `json:"weight"`
	Min         float64       `json:"min"`
	Max         float64       `json:"max"`
	Inverted    bool          `json:"inverted,omitempty"`
	Kind        CriterionKind `json:"kind,omitempty"`
	SourceField string        `json:"source_field,omitempty"`
}

// --- Score snapshot types ---

type ScoreMethod string

const (
	MethodManual   ScoreMethod = "manual"
	MethodAssisted ScoreMethod = "assisted"
)

// ScoreSnapshot is the current scoring result for one (initiative, model)
// pair. Re-scoring replaces the row in place; the superseded version is
// copied into the score history log first.
type ScoreSnapshot struct {
	ID              uuid.UUID          `json:"id"`
	InitiativeID    uuid.UUID          `json:"initiative_id"`
	ModelID         uuid.UUID          `json:"model_id"`
	DimensionScores map[string]float64 `json:"dimension_scores"`
	OverallScore    float64            `json:"overall_score"`
	Rank            *int               `json:"rank,omitempty"`
	Justification   string             `json:"justification,omitempty"`
	Strengths       []string           `json:"strengths,omitempty"`
	Weaknesses      []string           `json:"weaknesses,omitempty"`
	Confidence      *float64           `json:"confidence,omitempty"`
	Method          ScoreMethod        `json:"method"`
	ScoredBy        string             `json:"scored_by,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

type ScoreHistoryEntry struct {
	ID              uuid.UUID          `json:"id"`
	SnapshotID      uuid.UUID          `json:"snapshot_id"`
	InitiativeID    uuid.UUID          `json:"initiative_id"`
	ModelID         uuid.UUID          `json:"model_id"`
	DimensionScores map[string]float64 `json:"dimension_scores"`
	OverallScore    float64            `json:"overall_score"`
	Rank            *int               `json:"rank,omitempty"`
	Method          ScoreMethod        `json:"method"`
	ScoredBy        string             `json:"scored_by,omitempty"`
	SupersededAt    time.Time          `json:"superseded_at"`
}

// RankFn orders one model's snapshots and assigns ranks in place. It is
// supplied by the caller so the store stays free of ranking policy.
type RankFn func(snapshots []*ScoreSnapshot)

// --- Dependency types ---

type EdgeKind string

const (
	EdgeBlocks   EdgeKind = "blocks"
	EdgeRequires EdgeKind = "requires"
	EdgeRelates  EdgeKind = "relates"
)

// DependencyEdge records that initiative From depends on initiative To.
// Blocking edges carry the acyclicity contract; relates edges are
// informational and may form cycles.
type DependencyEdge struct {
	ID         uuid.UUID  `json:"id"`
	FromID     uuid.UUID  `json:"from_id"`
	ToID       uuid.UUID  `json:"to_id"`
	Kind       EdgeKind   `json:"kind"`
	Blocking   bool       `json:"blocking"`
	Resolved   bool       `json:"resolved"`
	Note       string     `json:"note,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// EdgeCheckFn inspects the current edge set and reports an error if adding
// candidate would violate the blocking-acyclicity contract. It runs inside
// the insert transaction so concurrent inserts cannot race the check.
type EdgeCheckFn func(existing []*DependencyEdge, candidate *DependencyEdge) error

// --- Resource allocation types ---

type ResourceAllocation struct {
	ID           uuid.UUID `json:"id"`
	InitiativeID uuid.UUID `json:"initiative_id"`
	ResourceType string    `json:"resource_type"`
	ResourceName string    `json:"resource_name,omitempty"`
	Amount       float64   `json:"amount"`
	Window       string    `json:"window,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type AllocationFilter struct {
	ResourceType string
	Window       string
}

// --- Gate types ---

type GateStatus string

const (
	GateGo       GateStatus = "go"
	GateCautious GateStatus = "cautious"
	GateRisk     GateStatus = "risk"
)

type GateFactorAssessment struct {
	FactorID   string     `json:"factor_id"`
	Category   string     `json:"category"`
	Question   string     `json:"question"`
	Status     GateStatus `json:"status"`
	Confidence *float64   `json:"confidence,omitempty"`
	Rationale  string     `json:"rationale,omitempty"`
	Evidence   string     `json:"evidence,omitempty"`
}

type GateOverall struct {
	Status GateStatus `json:"status"`
	Score  int        `json:"score"`
}

// GateAssessment is the stored feasibility checklist for one initiative.
// Re-submitting replaces the row; one assessment per initiative.
type GateAssessment struct {
	ID           uuid.UUID              `json:"id"`
	InitiativeID uuid.UUID              `json:"initiative_id"`
	Factors      []GateFactorAssessment `json:"factors"`
	Overall      GateOverall            `json:"overall"`
	AssessedBy   string                 `json:"assessed_by,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// --- Stats ---

type PortfolioStats struct {
	TotalInitiatives int        `json:"total_initiatives"`
	TotalModels      int        `json:"total_models"`
	ActiveModelID    *uuid.UUID `json:"active_model_id,omitempty"`
	TotalSnapshots   int        `json:"total_snapshots"`
	TotalEdges       int        `json:"total_edges"`
	UnresolvedEdges  int        `json:"unresolved_edges"`
	TotalAssessments int        `json:"total_assessments"`
}

type Store interface {
	// Initiatives
	CreateInitiative(ctx context.Context, init *Initiative) error
	GetInitiative(ctx context.Context, id uuid.UUID) (*Initiative, error)
	ListInitiatives(ctx context.Context, filter InitiativeFilter) ([]*Initiative, error)
	UpdateInitiative(ctx context.Context, init *Initiative) error
	DeleteInitiative(ctx context.Context, id uuid.UUID) error

	// Scoring models
	CreateScoringModel(ctx context.Context, model *ScoringModel) error
	GetScoringModel(ctx context.Context, id uuid.UUID) (*ScoringModel, error)
	GetActiveScoringModel(ctx context.Context) (*ScoringModel, error)
	ListScoringModels(ctx context.Context) ([]*ScoringModel, error)
	// ActivateScoringModel sets exactly one model active inside a single
	// transaction. Returns (false, nil) when the id does not exist.
	ActivateScoringModel(ctx context.Context, id uuid.UUID) (bool, error)

	// Score snapshots
	GetScoreSnapshot(ctx context.Context, initiativeID, modelID uuid.UUID) (*ScoreSnapshot, error)
	ListScoreSnapshots(ctx context.Context, modelID uuid.UUID) ([]*ScoreSnapshot, error)
	// UpsertScoreSnapshot replaces the (initiative, model) row, logging the
	// superseded version to history. Ranks are untouched.
	UpsertScoreSnapshot(ctx context.Context, snap *ScoreSnapshot) error
	// ReplaceAndRerank upserts one snapshot and re-ranks the whole model
	// population in one transaction, serialized per model.
	ReplaceAndRerank(ctx context.Context, snap *ScoreSnapshot, rankFn RankFn) (*ScoreSnapshot, error)
	// RerankModel runs one ranking pass over a model's snapshots and
	// persists the ranks. Returns the number of snapshots ranked.
	RerankModel(ctx context.Context, modelID uuid.UUID, rankFn RankFn) (int, error)
	GetScoreHistory(ctx context.Context, initiativeID uuid.UUID, limit int) ([]*ScoreHistoryEntry, error)

	// Dependencies
	// InsertDependencyEdge runs checkFn against the current edge set and
	// inserts only if it passes, atomically with respect to other inserts.
	InsertDependencyEdge(ctx context.Context, edge *DependencyEdge, checkFn EdgeCheckFn) error
	GetDependencyEdge(ctx context.Context, id uuid.UUID) (*DependencyEdge, error)
	ListDependencyEdges(ctx context.Context) ([]*DependencyEdge, error)
	ListDependencyEdgesForInitiative(ctx context.Context, initiativeID uuid.UUID) ([]*DependencyEdge, error)
	DeleteDependencyEdge(ctx context.Context, id uuid.UUID) error
	ResolveDependencyEdge(ctx context.Context, id uuid.UUID) error

	// Resource allocations
	CreateAllocation(ctx context.Context, alloc *ResourceAllocation) error
	ListAllocations(ctx context.Context, filter AllocationFilter) ([]*ResourceAllocation, error)

	// Gate assessments
	GetGateAssessment(ctx context.Context, initiativeID uuid.UUID) (*GateAssessment, error)
	PutGateAssessment(ctx context.Context, a *GateAssessment) error

	GetStats(ctx context.Context) (*PortfolioStats, error)

	Close() error
}
