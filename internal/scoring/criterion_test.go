package scoring

import (
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/Compass/internal/store"
)

func float64Ptr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool          { return &v }

func scoreCriterion(name, field string) store.Criterion {
	return store.Criterion{Name: name, Weight: 100, Min: 0, Max: 10, Kind: store.KindScore, SourceField: field}
}

func TestEvaluateCriterionResolutionOrder(t *testing.T) {
	c := scoreCriterion("expected_value", "expected_value")

	t.Run("override wins over field", func(t *testing.T) {
		init := &store.Initiative{ExpectedValue: float64Ptr(6)}
		r := EvaluateCriterion(c, init, map[string]float64{"expected_value": 9})
		if r.Raw != 9 || r.Score != 9 {
			t.Errorf("expected raw/score 9, got %f/%f", r.Raw, r.Score)
		}
		if r.Source != "override" {
			t.Errorf("expected source override, got %q", r.Source)
		}
		if !r.Available {
			t.Error("expected available=true")
		}
	})

	t.Run("field when no override", func(t *testing.T) {
		init := &store.Initiative{ExpectedValue: float64Ptr(6)}
		r := EvaluateCriterion(c, init, nil)
		if r.Score != 6 {
			t.Errorf("expected 6, got %f", r.Score)
		}
		if r.Source != "field:expected_value" {
			t.Errorf("expected source field:expected_value, got %q", r.Source)
		}
	})

	t.Run("default when field unset", func(t *testing.T) {
		r := EvaluateCriterion(c, &store.Initiative{}, nil)
		if r.Score != 0 {
			t.Errorf("expected 0, got %f", r.Score)
		}
		if r.Source != "default" {
			t.Errorf("expected source default, got %q", r.Source)
		}
		if r.Available {
			t.Error("expected available=false")
		}
		if !strings.Contains(r.Reason, "not assessed") {
			t.Errorf("expected reason to mention not assessed, got %q", r.Reason)
		}
	})

	t.Run("no source configured", func(t *testing.T) {
		bare := store.Criterion{Name: "vibes", Weight: 10, Max: 10, Kind: store.KindScore}
		r := EvaluateCriterion(bare, &store.Initiative{}, nil)
		if r.Source != "default" || r.Reason != "no source configured" {
			t.Errorf("got source=%q reason=%q", r.Source, r.Reason)
		}
	})

	t.Run("unknown source field degrades", func(t *testing.T) {
		stale := scoreCriterion("velocity", "velocity")
		r := EvaluateCriterion(stale, &store.Initiative{}, nil)
		if r.Score != 0 || r.Source != "default" {
			t.Errorf("expected default 0, got %f from %q", r.Score, r.Source)
		}
		if !strings.Contains(r.Reason, "unknown source field") {
			t.Errorf("expected unknown-field reason, got %q", r.Reason)
		}
	})
}

func TestEvaluateCriterionKinds(t *testing.T) {
	t.Run("percent divides by ten", func(t *testing.T) {
		c := store.Criterion{Name: "confidence", Weight: 30, Max: 10, Kind: store.KindPercent, SourceField: "confidence_pct"}
		init := &store.Initiative{ConfidencePct: float64Ptr(70)}
		r := EvaluateCriterion(c, init, nil)
		if r.Raw != 70 {
			t.Errorf("expected raw 70, got %f", r.Raw)
		}
		if r.Score != 7 {
			t.Errorf("expected 7, got %f", r.Score)
		}
	})

	t.Run("boolean true maps to max", func(t *testing.T) {
		c := store.Criterion{Name: "data_ready", Weight: 30, Max: 10, Kind: store.KindBoolean, SourceField: "data_ready"}
		init := &store.Initiative{DataReady: boolPtr(true)}
		r := EvaluateCriterion(c, init, nil)
		if r.Score != 10 {
			t.Errorf("expected 10, got %f", r.Score)
		}
	})

	t.Run("boolean false maps to min", func(t *testing.T) {
		c := store.Criterion{Name: "data_ready", Weight: 30, Min: 2, Max: 10, Kind: store.KindBoolean, SourceField: "data_ready"}
		init := &store.Initiative{DataReady: boolPtr(false)}
		r := EvaluateCriterion(c, init, nil)
		if r.Score != 2 {
			t.Errorf("expected min 2, got %f", r.Score)
		}
		if !r.Available {
			t.Error("false is still an assessed value")
		}
	})
}

func TestEvaluateCriterionInvertAndClamp(t *testing.T) {
	t.Run("inverted subtracts from max", func(t *testing.T) {
		c := store.Criterion{Name: "risk_level", Weight: 60, Max: 10, Kind: store.KindScore, SourceField: "risk_level", Inverted: true}
		init := &store.Initiative{RiskLevel: float64Ptr(3)}
		r := EvaluateCriterion(c, init, nil)
		if r.Score != 7 {
			t.Errorf("expected 7, got %f", r.Score)
		}
	})

	t.Run("clamps above max", func(t *testing.T) {
		c := scoreCriterion("expected_value", "expected_value")
		r := EvaluateCriterion(c, &store.Initiative{}, map[string]float64{"expected_value": 15})
		if r.Score != 10 {
			t.Errorf("expected clamp to 10, got %f", r.Score)
		}
	})

	t.Run("clamps below min", func(t *testing.T) {
		c := scoreCriterion("expected_value", "expected_value")
		r := EvaluateCriterion(c, &store.Initiative{}, map[string]float64{"expected_value": -5})
		if r.Score != 0 {
			t.Errorf("expected clamp to 0, got %f", r.Score)
		}
	})

	t.Run("inverted overflow clamps to min", func(t *testing.T) {
		c := store.Criterion{Name: "risk_level", Weight: 60, Max: 10, Kind: store.KindScore, SourceField: "risk_level", Inverted: true}
		r := EvaluateCriterion(c, &store.Initiative{}, map[string]float64{"risk_level": 15})
		if r.Score != 0 {
			t.Errorf("expected 0, got %f", r.Score)
		}
	})
}

func TestEvaluateCriterionWeighted(t *testing.T) {
	c := store.Criterion{Name: "expected_value", Weight: 50, Max: 10, Kind: store.KindScore, SourceField: "expected_value"}
	init := &store.Initiative{ExpectedValue: float64Ptr(8)}
	r := EvaluateCriterion(c, init, nil)
	if r.Weighted != 400 {
		t.Errorf("expected weighted 400, got %f", r.Weighted)
	}
}

func TestAggregateDimension(t *testing.T) {
	d := store.Dimension{
		Type: store.DimensionValue,
		Criteria: []store.Criterion{
			{Name: "expected_value", Weight: 60, Max: 10, Kind: store.KindScore, SourceField: "expected_value"},
			{Name: "urgency", Weight: 40, Max: 10, Kind: store.KindScore, SourceField: "urgency"},
		},
	}
	init := &store.Initiative{ExpectedValue: float64Ptr(8), Urgency: float64Ptr(5)}

	r := AggregateDimension(d, init, nil)
	// (8*60 + 5*40) / 100 = 6.8
	if r.Score != 6.8 {
		t.Errorf("expected 6.8, got %f", r.Score)
	}
	if len(r.Criteria) != 2 {
		t.Errorf("expected 2 criterion results, got %d", len(r.Criteria))
	}
	if r.Type != store.DimensionValue {
		t.Errorf("expected value dimension, got %q", r.Type)
	}
}

func TestAggregateDimensionZeroWeight(t *testing.T) {
	d := store.Dimension{
		Type: store.DimensionRisk,
		Criteria: []store.Criterion{
			{Name: "risk_level", Weight: 0, Max: 10, Kind: store.KindScore, SourceField: "risk_level"},
		},
	}
	init := &store.Initiative{RiskLevel: float64Ptr(9)}

	r := AggregateDimension(d, init, nil)
	if r.Score != 0 {
		t.Errorf("expected 0 for zero total weight, got %f", r.Score)
	}
	if len(r.Criteria) != 1 {
		t.Errorf("breakdown should still carry the criterion, got %d", len(r.Criteria))
	}
}

func TestAggregateDimensionEmpty(t *testing.T) {
	r := AggregateDimension(store.Dimension{Type: store.DimensionFeasibility}, &store.Initiative{}, nil)
	if r.Score != 0 {
		t.Errorf("expected 0, got %f", r.Score)
	}
}

func TestSourceFieldRegistry(t *testing.T) {
	if !KnownSourceField("expected_value") {
		t.Error("expected_value should be registered")
	}
	if KnownSourceField("velocity") {
		t.Error("velocity should not be registered")
	}

	names := SourceFieldNames()
	if len(names) != 9 {
		t.Errorf("expected 9 source fields, got %d", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %q before %q", names[i-1], names[i])
		}
	}
}
