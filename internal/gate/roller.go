package gate

import (
	"math"

	"github.com/MikeSquared-Agency/Compass/internal/store"
)

// Status point values for the rollup score.
const (
	pointsGo       = 100
	pointsCautious = 50
	pointsRisk     = 0
)

// cautionScoreFloor and cautionCountLimit decide when a non-hard-stop
// assessment still lands on cautious instead of go.
const (
	cautionScoreFloor = 70
	cautionCountLimit = 2
)

// Normalize expands partial assessments keyed by factor id into the full
// nine-factor checklist. Missing factors synthesize as cautious, statuses
// outside go/cautious/risk coerce to cautious, and category/question always
// come from the fixed table. Unknown factor ids are dropped.
func Normalize(in map[string]store.GateFactorAssessment) []store.GateFactorAssessment {
	out := make([]store.GateFactorAssessment, 0, len(Factors))
	for _, def := range Factors {
		a, ok := in[def.ID]
		if !ok {
			a = store.GateFactorAssessment{Status: store.GateCautious}
		}
		if !validStatuses[a.Status] {
			a.Status = store.GateCautious
		}
		a.FactorID = def.ID
		a.Category = def.Category
		a.Question = def.Question
		out = append(out, a)
	}
	return out
}

// Roll computes the overall verdict for a normalized factor list:
//
//	score  = round(mean of factor points), go=100 cautious=50 risk=0
//	status = risk when any Data or Technology/Execution factor is risk,
//	         else cautious when score < 70 or at least 2 factors are
//	         cautious, else go
//
// A single failure in a critical category overrides an otherwise-good
// average.
func Roll(factors []store.GateFactorAssessment) store.GateOverall {
	if len(factors) == 0 {
		return store.GateOverall{Status: store.GateCautious}
	}

	var points, cautiousCount int
	hardStop := false
	for _, f := range factors {
		switch f.Status {
		case store.GateGo:
			points += pointsGo
		case store.GateCautious:
			points += pointsCautious
			cautiousCount++
		case store.GateRisk:
			points += pointsRisk
			if hardStopCategories[f.Category] {
				hardStop = true
			}
		}
	}

	score := int(math.Round(float64(points) / float64(len(factors))))
	status := store.GateGo
	switch {
	case hardStop:
		status = store.GateRisk
	case score < cautionScoreFloor || cautiousCount >= cautionCountLimit:
		status = store.GateCautious
	}
	return store.GateOverall{Status: status, Score: score}
}

// Assess is the one-call path used by handlers: normalize the caller's
// partial input, roll the verdict, and return both.
func Assess(in map[string]store.GateFactorAssessment) ([]store.GateFactorAssessment, store.GateOverall) {
	factors := Normalize(in)
	return factors, Roll(factors)
}
