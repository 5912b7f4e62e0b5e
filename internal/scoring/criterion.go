package scoring

import (
	"github.com/MikeSquared-Agency/Compass/internal/store"
)

// CriterionResult captures one criterion's contribution to its dimension.
type CriterionResult struct {
	Name      string  `json:"name"`
	Raw       float64 `json:"raw"`
	Score     float64 `json:"score"`
	Weight    float64 `json:"weight"`
	Weighted  float64 `json:"weighted"`
	Source    string  `json:"source"`
	Available bool    `json:"available"`
	Reason    string  `json:"reason,omitempty"`
}

// EvaluateCriterion resolves one criterion for one initiative. Resolution
// order: override entry for the criterion's name, then the mapped source
// field, then zero. The result is kind-mapped, optionally inverted, and
// clamped to [min, max]. Missing data degrades to the default, never errors.
func EvaluateCriterion(c store.Criterion, init *store.Initiative, overrides map[string]float64) CriterionResult {
	res := CriterionResult{Name: c.Name, Weight: c.Weight}

	var raw float64
	if v, ok := overrides[c.Name]; ok {
		raw = v
		res.Source = "override"
		res.Available = true
	} else if c.SourceField != "" {
		if spec, ok := sourceFields[c.SourceField]; ok {
			if v, set := spec.Get(init); set {
				raw = v
				res.Source = "field:" + c.SourceField
				res.Available = true
			} else {
				res.Source = "default"
				res.Reason = "field " + c.SourceField + " not assessed"
			}
		} else {
			// Rejected at model validation; degrade rather than crash on
			// models stored before the field was removed.
			res.Source = "default"
			res.Reason = "unknown source field " + c.SourceField
		}
	} else {
		res.Source = "default"
		res.Reason = "no source configured"
	}
	res.Raw = raw

	score := raw
	switch c.Kind {
	case store.KindPercent:
		score = raw / 10
	case store.KindBoolean:
		if raw != 0 {
			score = c.Max
		} else {
			score = c.Min
		}
	}
	if c.Inverted {
		score = c.Max - score
	}
	res.Score = clamp(score, c.Min, c.Max)
	res.Weighted = res.Score * c.Weight
	return res
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
