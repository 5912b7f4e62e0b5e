package scoring

import (
	"sort"

	"github.com/MikeSquared-Agency/Compass/internal/store"
)

// FieldSpec binds a criterion source field name to a typed accessor on an
// initiative. Get reports false when the attribute has not been assessed,
// so the evaluator can fall back to the criterion default.
type FieldSpec struct {
	Kind store.CriterionKind
	Get  func(*store.Initiative) (float64, bool)
}

// sourceFields is the closed set of initiative attributes a criterion may
// reference. Resolving names here at model-validation time means an unknown
// field fails model creation instead of silently scoring 0 later.
var sourceFields = map[string]FieldSpec{
	"expected_value":      {Kind: store.KindScore, Get: floatField(func(i *store.Initiative) *float64 { return i.ExpectedValue })},
	"strategic_fit":       {Kind: store.KindScore, Get: floatField(func(i *store.Initiative) *float64 { return i.StrategicFit })},
	"risk_level":          {Kind: store.KindScore, Get: floatField(func(i *store.Initiative) *float64 { return i.RiskLevel })},
	"team_experience":     {Kind: store.KindScore, Get: floatField(func(i *store.Initiative) *float64 { return i.TeamExperience })},
	"urgency":             {Kind: store.KindScore, Get: floatField(func(i *store.Initiative) *float64 { return i.Urgency })},
	"cost_score":          {Kind: store.KindScore, Get: floatField(func(i *store.Initiative) *float64 { return i.CostScore })},
	"confidence_pct":      {Kind: store.KindPercent, Get: floatField(func(i *store.Initiative) *float64 { return i.ConfidencePct })},
	"data_ready":          {Kind: store.KindBoolean, Get: boolField(func(i *store.Initiative) *bool { return i.DataReady })},
	"compliance_approved": {Kind: store.KindBoolean, Get: boolField(func(i *store.Initiative) *bool { return i.ComplianceApproved })},
}

// KnownSourceField reports whether name is a registered initiative attribute.
func KnownSourceField(name string) bool {
	_, ok := sourceFields[name]
	return ok
}

// SourceFieldNames returns the registered attribute names, sorted.
func SourceFieldNames() []string {
	names := make([]string, 0, len(sourceFields))
	for name := range sourceFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func floatField(get func(*store.Initiative) *float64) func(*store.Initiative) (float64, bool) {
	return func(i *store.Initiative) (float64, bool) {
		v := get(i)
		if v == nil {
			return 0, false
		}
		return *v, true
	}
}

func boolField(get func(*store.Initiative) *bool) func(*store.Initiative) (float64, bool) {
	return func(i *store.Initiative) (float64, bool) {
		v := get(i)
		if v == nil {
			return 0, false
		}
		if *v {
			return 1, true
		}
		return 0, true
	}
}
