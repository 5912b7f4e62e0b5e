package scoring

import (
	"math"

	"github.com/MikeSquared-Agency/Compass/internal/store"
)

// DimensionResult captures one dimension's aggregated score plus the
// per-criterion breakdown that produced it.
type DimensionResult struct {
	Type     store.DimensionType `json:"type"`
	Score    float64             `json:"score"`
	Criteria []CriterionResult   `json:"criteria"`
}

// AggregateDimension evaluates a dimension's criteria and weight-averages
// them. A dimension with no criteria, or with all criterion weights zero,
// scores 0 — that is a data-modeling omission, not an error.
func AggregateDimension(d store.Dimension, init *store.Initiative, overrides map[string]float64) DimensionResult {
	out := DimensionResult{Type: d.Type}

	var weighted, total float64
	for _, c := range d.Criteria {
		r := EvaluateCriterion(c, init, overrides)
		out.Criteria = append(out.Criteria, r)
		weighted += r.Weighted
		total += r.Weight
	}
	if total == 0 {
		return out
	}
	out.Score = round2(weighted / total)
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
