package scoring

import (
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/Compass/internal/store"
)

// weightSumTolerance is how far the four model weights may drift from 100.
const weightSumTolerance = 0.01

// DefaultWeights returns the weight distribution used by the starter model.
func DefaultWeights() store.ModelWeights {
	return store.ModelWeights{
		Value:              40,
		Feasibility:        30,
		Risk:               20,
		StrategicAlignment: 10,
	}
}

// WeightSum returns the total of the four dimension weights.
func WeightSum(w store.ModelWeights) float64 {
	return w.Value + w.Feasibility + w.Risk + w.StrategicAlignment
}

// WeightFor returns the model-level weight for one dimension type.
func WeightFor(w store.ModelWeights, t store.DimensionType) float64 {
	switch t {
	case store.DimensionValue:
		return w.Value
	case store.DimensionFeasibility:
		return w.Feasibility
	case store.DimensionRisk:
		return w.Risk
	case store.DimensionStrategicAlignment:
		return w.StrategicAlignment
	default:
		return 0
	}
}

// ValidateWeights checks that the weights sum to 100 and none are negative.
func ValidateWeights(w store.ModelWeights) error {
	for _, e := range []struct {
		name string
		v    float64
	}{
		{"value", w.Value},
		{"feasibility", w.Feasibility},
		{"risk", w.Risk},
		{"strategic_alignment", w.StrategicAlignment},
	} {
		if e.v < 0 {
			return fmt.Errorf("weight %s is negative: %.2f", e.name, e.v)
		}
	}
	if sum := WeightSum(w); math.Abs(sum-100) > weightSumTolerance {
		return fmt.Errorf("weights sum to %.2f, must sum to 100", sum)
	}
	return nil
}

// NormalizeModel fills in the defaults a caller may omit: criterion bounds
// default to [0,10] and kind is taken from the source-field registry when
// unset. Call before ValidateModel so defaults are validated too.
func NormalizeModel(m *store.ScoringModel) {
	if m.Version == 0 {
		m.Version = 1
	}
	for di := range m.Dimensions {
		d := &m.Dimensions[di]
		for ci := range d.Criteria {
			c := &d.Criteria[ci]
			if c.Min == 0 && c.Max == 0 {
				c.Max = 10
			}
			if c.Kind == "" {
				if spec, ok := sourceFields[c.SourceField]; ok {
					c.Kind = spec.Kind
				} else {
					c.Kind = store.KindScore
				}
			}
		}
	}
}

// ValidateModel checks the whole model tree at definition time: weight sum,
// dimension types, criterion weights and bounds, and that every source field
// resolves against the registry. Nothing is corrected silently.
func ValidateModel(m *store.ScoringModel) error {
	if m.Name == "" {
		return fmt.Errorf("model name is required")
	}
	if err := ValidateWeights(m.Weights); err != nil {
		return err
	}
	seenDims := make(map[store.DimensionType]bool)
	seenCriteria := make(map[string]bool)
	for _, d := range m.Dimensions {
		switch d.Type {
		case store.DimensionValue, store.DimensionFeasibility,
			store.DimensionRisk, store.DimensionStrategicAlignment:
		default:
			return fmt.Errorf("unknown dimension type %q", d.Type)
		}
		if seenDims[d.Type] {
			return fmt.Errorf("duplicate dimension type %q", d.Type)
		}
		seenDims[d.Type] = true
		if d.Weight < 0 {
			return fmt.Errorf("dimension %s weight is negative: %.2f", d.Type, d.Weight)
		}
		for _, c := range d.Criteria {
			if c.Name == "" {
				return fmt.Errorf("dimension %s has a criterion without a name", d.Type)
			}
			if seenCriteria[c.Name] {
				return fmt.Errorf("duplicate criterion name %q", c.Name)
			}
			seenCriteria[c.Name] = true
			if c.Weight < 0 {
				return fmt.Errorf("criterion %q weight is negative: %.2f", c.Name, c.Weight)
			}
			if c.Min > c.Max {
				return fmt.Errorf("criterion %q has min %.2f above max %.2f", c.Name, c.Min, c.Max)
			}
			switch c.Kind {
			case store.KindScore, store.KindPercent, store.KindBoolean:
			default:
				return fmt.Errorf("criterion %q has unknown kind %q", c.Name, c.Kind)
			}
			if c.SourceField != "" && !KnownSourceField(c.SourceField) {
				return fmt.Errorf("criterion %q references unknown source field %q", c.Name, c.SourceField)
			}
		}
	}
	return nil
}
