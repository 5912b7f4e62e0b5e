package scoring

import (
	"fmt"
	"log/slog"

	"github.com/MikeSquared-Agency/Compass/internal/store"
)

// ScoreInput bundles everything one scoring run needs. Overrides are
// untrusted caller data: unknown names are ignored, values are clamped by
// criterion bounds, and their use is recorded in the breakdown.
type ScoreInput struct {
	Initiative    *store.Initiative
	Model         *store.ScoringModel
	Overrides     map[string]float64
	Method        store.ScoreMethod
	ScoredBy      string
	Justification string
	Strengths     []string
	Weaknesses    []string
	Confidence    *float64
}

// ScoreResult is the complete output of one scoring run: the snapshot to
// persist plus the per-dimension breakdown for auditing.
type ScoreResult struct {
	Dimensions   []DimensionResult `json:"dimensions"`
	OverallScore float64           `json:"overall_score"`
	Snapshot     *store.ScoreSnapshot
}

// Scorer runs the criterion → dimension → overall rollup for one initiative
// against one model. It performs no I/O; callers resolve inputs first and
// persist the snapshot after.
type Scorer struct {
	logger *slog.Logger
}

func NewScorer(logger *slog.Logger) *Scorer {
	return &Scorer{logger: logger}
}

// Score evaluates every dimension of the model and combines them with the
// model-level percentage weights:
//
//	overall = Σ dimensionScore × weight/100, rounded to 2 decimals
//
// Dimensions absent from the model simply contribute nothing.
func (s *Scorer) Score(in ScoreInput) (*ScoreResult, error) {
	if in.Initiative == nil {
		return nil, fmt.Errorf("initiative is required")
	}
	if in.Model == nil {
		return nil, fmt.Errorf("scoring model is required")
	}

	method := in.Method
	if method == "" {
		method = store.MethodManual
	}

	result := &ScoreResult{}
	dimScores := make(map[string]float64, len(in.Model.Dimensions))
	var overall float64
	for _, d := range in.Model.Dimensions {
		r := AggregateDimension(d, in.Initiative, in.Overrides)
		result.Dimensions = append(result.Dimensions, r)
		dimScores[string(d.Type)] = r.Score
		overall += r.Score * WeightFor(in.Model.Weights, d.Type) / 100
	}
	result.OverallScore = round2(overall)

	result.Snapshot = &store.ScoreSnapshot{
		InitiativeID:    in.Initiative.ID,
		ModelID:         in.Model.ID,
		DimensionScores: dimScores,
		OverallScore:    result.OverallScore,
		Justification:   in.Justification,
		Strengths:       in.Strengths,
		Weaknesses:      in.Weaknesses,
		Confidence:      in.Confidence,
		Method:          method,
		ScoredBy:        in.ScoredBy,
	}

	if s.logger != nil {
		s.logger.Debug("scored initiative",
			"initiative_id", in.Initiative.ID,
			"model_id", in.Model.ID,
			"overall", result.OverallScore,
			"method", method)
	}
	return result, nil
}
