package scoring

import (
	"io"
	"log/slog"
	"math"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Compass/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rollerModel() *store.ScoringModel {
	return &store.ScoringModel{
		ID:   uuid.New(),
		Name: "test-model",
		Weights: store.ModelWeights{
			Value:              40,
			Feasibility:        35,
			Risk:               25,
			StrategicAlignment: 0,
		},
		Dimensions: []store.Dimension{
			{Type: store.DimensionValue, Criteria: []store.Criterion{
				{Name: "expected_value", Weight: 100, Max: 10, Kind: store.KindScore, SourceField: "expected_value"},
			}},
			{Type: store.DimensionFeasibility, Criteria: []store.Criterion{
				{Name: "team_experience", Weight: 100, Max: 10, Kind: store.KindScore, SourceField: "team_experience"},
			}},
			{Type: store.DimensionRisk, Criteria: []store.Criterion{
				{Name: "risk_level", Weight: 100, Max: 10, Kind: store.KindScore, SourceField: "risk_level", Inverted: true},
			}},
		},
	}
}

func TestScoreRollup(t *testing.T) {
	s := NewScorer(discardLogger())
	init := &store.Initiative{
		ID:             uuid.New(),
		Title:          "rollup",
		ExpectedValue:  float64Ptr(8),
		TeamExperience: float64Ptr(6),
		RiskLevel:      float64Ptr(1), // inverted: 10 - 1 = 9
	}

	result, err := s.Score(ScoreInput{Initiative: init, Model: rollerModel(), ScoredBy: "mike-d"})
	if err != nil {
		t.Fatalf("score: %v", err)
	}

	// 8*0.40 + 6*0.35 + 9*0.25 = 7.55
	if math.Abs(result.OverallScore-7.55) > 0.001 {
		t.Errorf("expected overall 7.55, got %f", result.OverallScore)
	}
	if len(result.Dimensions) != 3 {
		t.Errorf("expected 3 dimension results, got %d", len(result.Dimensions))
	}

	snap := result.Snapshot
	if snap == nil {
		t.Fatal("expected snapshot")
	}
	if snap.InitiativeID != init.ID {
		t.Errorf("snapshot initiative mismatch: %s", snap.InitiativeID)
	}
	if snap.OverallScore != result.OverallScore {
		t.Errorf("snapshot score %f != result %f", snap.OverallScore, result.OverallScore)
	}
	if snap.DimensionScores["value"] != 8 || snap.DimensionScores["risk"] != 9 {
		t.Errorf("unexpected dimension scores: %v", snap.DimensionScores)
	}
	if snap.Method != store.MethodManual {
		t.Errorf("expected manual default, got %q", snap.Method)
	}
	if snap.ScoredBy != "mike-d" {
		t.Errorf("expected scored_by mike-d, got %q", snap.ScoredBy)
	}
}

func TestScoreMethodPassthrough(t *testing.T) {
	s := NewScorer(discardLogger())
	init := &store.Initiative{ID: uuid.New(), ExpectedValue: float64Ptr(5)}

	result, err := s.Score(ScoreInput{Initiative: init, Model: rollerModel(), Method: store.MethodAssisted})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if result.Snapshot.Method != store.MethodAssisted {
		t.Errorf("expected assisted, got %q", result.Snapshot.Method)
	}
}

func TestScoreOverridesReachCriteria(t *testing.T) {
	s := NewScorer(discardLogger())
	init := &store.Initiative{ID: uuid.New(), ExpectedValue: float64Ptr(2), TeamExperience: float64Ptr(2), RiskLevel: float64Ptr(8)}

	result, err := s.Score(ScoreInput{
		Initiative: init,
		Model:      rollerModel(),
		Overrides:  map[string]float64{"expected_value": 10},
	})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if result.Dimensions[0].Score != 10 {
		t.Errorf("expected value dimension 10 from override, got %f", result.Dimensions[0].Score)
	}
	if result.Dimensions[0].Criteria[0].Source != "override" {
		t.Errorf("expected override source, got %q", result.Dimensions[0].Criteria[0].Source)
	}
}

func TestScoreMissingInputs(t *testing.T) {
	s := NewScorer(discardLogger())

	if _, err := s.Score(ScoreInput{Model: rollerModel()}); err == nil {
		t.Error("expected error without initiative")
	}
	if _, err := s.Score(ScoreInput{Initiative: &store.Initiative{}}); err == nil {
		t.Error("expected error without model")
	}
}

func TestScoreUnassessedInitiative(t *testing.T) {
	s := NewScorer(discardLogger())

	result, err := s.Score(ScoreInput{Initiative: &store.Initiative{ID: uuid.New()}, Model: rollerModel()})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	// Value and feasibility default to 0; inverted risk defaults to 10.
	// 0*0.40 + 0*0.35 + 10*0.25 = 2.5
	if math.Abs(result.OverallScore-2.5) > 0.001 {
		t.Errorf("expected 2.5, got %f", result.OverallScore)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	s := NewScorer(discardLogger())
	model := rollerModel()
	init := &store.Initiative{
		ID:             uuid.New(),
		ExpectedValue:  float64Ptr(7),
		TeamExperience: float64Ptr(4),
		RiskLevel:      float64Ptr(3),
	}

	first, err := s.Score(ScoreInput{Initiative: init, Model: model})
	if err != nil {
		t.Fatalf("first score: %v", err)
	}
	second, err := s.Score(ScoreInput{Initiative: init, Model: model})
	if err != nil {
		t.Fatalf("second score: %v", err)
	}

	if first.OverallScore != second.OverallScore {
		t.Errorf("overall drifted: %f then %f", first.OverallScore, second.OverallScore)
	}
	if !reflect.DeepEqual(first.Snapshot.DimensionScores, second.Snapshot.DimensionScores) {
		t.Errorf("dimension scores drifted: %v then %v",
			first.Snapshot.DimensionScores, second.Snapshot.DimensionScores)
	}
}

func TestRankOrdersByScoreDescending(t *testing.T) {
	snaps := []*store.ScoreSnapshot{
		{InitiativeID: uuid.New(), OverallScore: 5.5},
		{InitiativeID: uuid.New(), OverallScore: 9.1},
		{InitiativeID: uuid.New(), OverallScore: 7.2},
	}

	Rank(snaps)

	if snaps[0].OverallScore != 9.1 || snaps[1].OverallScore != 7.2 || snaps[2].OverallScore != 5.5 {
		t.Errorf("unexpected order: %f, %f, %f", snaps[0].OverallScore, snaps[1].OverallScore, snaps[2].OverallScore)
	}
	for i, s := range snaps {
		if s.Rank == nil || *s.Rank != i+1 {
			t.Errorf("snapshot %d: expected rank %d, got %v", i, i+1, s.Rank)
		}
	}
}

func TestRankTieBreaksOnInitiativeID(t *testing.T) {
	lo := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	hi := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	snaps := []*store.ScoreSnapshot{
		{InitiativeID: hi, OverallScore: 7.0},
		{InitiativeID: lo, OverallScore: 7.0},
	}

	Rank(snaps)

	if snaps[0].InitiativeID != lo {
		t.Errorf("expected lower id first on tie, got %s", snaps[0].InitiativeID)
	}

	// Repeat passes must be stable.
	Rank(snaps)
	if snaps[0].InitiativeID != lo {
		t.Error("ranking not stable across passes")
	}
}

func TestRankEmpty(t *testing.T) {
	Rank(nil)
	Rank([]*store.ScoreSnapshot{})
}
