package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MikeSquared-Agency/Compass/internal/store"
)

// TestFullPortfolioLifecycle exercises the complete happy-path:
// create initiatives → publish a model → score → rank → re-score after an
// attribute change → gate → dependency → allocation → stats
func TestFullPortfolioLifecycle(t *testing.T) {
	router, _ := setupTestRouter()

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body != "" {
			req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(method, path, nil)
		}
		req.Header.Set("X-Actor-ID", "mike-d")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// 1. Create two initiatives
	w := do("POST", "/api/v1/initiatives", `{"title":"Churn Model","owner":"mike-d","expected_value":9,"team_experience":5}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create a: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var initA store.Initiative
	_ = json.NewDecoder(w.Body).Decode(&initA)

	w = do("POST", "/api/v1/initiatives", `{"title":"Forecast Rebuild","owner":"sam","expected_value":4,"team_experience":8}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create b: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var initB store.Initiative
	_ = json.NewDecoder(w.Body).Decode(&initB)

	// 2. Publish and activate a scoring model
	modelBody := `{
		"name": "q3-portfolio",
		"activate": true,
		"weights": {"value": 60, "feasibility": 40},
		"dimensions": [
			{"type": "value", "criteria": [{"name": "expected_value", "weight": 1, "source_field": "expected_value"}]},
			{"type": "feasibility", "criteria": [{"name": "team_experience", "weight": 1, "source_field": "team_experience"}]}
		]
	}`
	w = do("POST", "/api/v1/models", modelBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("create model: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var model store.ScoringModel
	_ = json.NewDecoder(w.Body).Decode(&model)
	if !model.Active {
		t.Fatalf("create model: expected active after activate=true")
	}

	// 3. Score both initiatives against the active model
	w = do("POST", "/api/v1/initiatives/"+initA.ID.String()+"/score", `{}`)
	if w.Code != http.StatusOK {
		t.Fatalf("score a: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var snapA store.ScoreSnapshot
	_ = json.NewDecoder(w.Body).Decode(&snapA)
	// 9*0.6 + 5*0.4 = 7.4
	if math.Abs(snapA.OverallScore-7.4) > 0.001 {
		t.Fatalf("score a: expected 7.4, got %f", snapA.OverallScore)
	}

	w = do("POST", "/api/v1/initiatives/"+initB.ID.String()+"/score", `{}`)
	if w.Code != http.StatusOK {
		t.Fatalf("score b: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// 4. Rankings put A (7.4) over B (5.6)
	w = do("GET", "/api/v1/models/"+model.ID.String()+"/rankings", "")
	if w.Code != http.StatusOK {
		t.Fatalf("rankings: expected 200, got %d", w.Code)
	}
	var ranked []store.ScoreSnapshot
	_ = json.NewDecoder(w.Body).Decode(&ranked)
	if len(ranked) != 2 {
		t.Fatalf("rankings: expected 2 snapshots, got %d", len(ranked))
	}
	if ranked[0].InitiativeID != initA.ID {
		t.Errorf("rankings: expected A first, got %s", ranked[0].InitiativeID)
	}

	// 5. New information arrives: B's expected value jumps. The edit alone
	// does not re-score; an explicit scoring run picks it up.
	w = do("PATCH", "/api/v1/initiatives/"+initB.ID.String(), `{"expected_value":10}`)
	if w.Code != http.StatusOK {
		t.Fatalf("patch b: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = do("POST", "/api/v1/initiatives/"+initB.ID.String()+"/score", `{}`)
	if w.Code != http.StatusOK {
		t.Fatalf("rescore b: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var snapB store.ScoreSnapshot
	_ = json.NewDecoder(w.Body).Decode(&snapB)
	// 10*0.6 + 8*0.4 = 9.2, which takes rank 1
	if math.Abs(snapB.OverallScore-9.2) > 0.001 {
		t.Fatalf("rescore b: expected 9.2, got %f", snapB.OverallScore)
	}
	if snapB.Rank == nil || *snapB.Rank != 1 {
		t.Errorf("rescore b: expected rank 1, got %v", snapB.Rank)
	}

	// 6. The superseded score shows up in B's history
	w = do("GET", "/api/v1/initiatives/"+initB.ID.String()+"/score/history", "")
	if w.Code != http.StatusOK {
		t.Fatalf("history: expected 200, got %d", w.Code)
	}
	var history []store.ScoreHistoryEntry
	_ = json.NewDecoder(w.Body).Decode(&history)
	if len(history) != 1 {
		t.Fatalf("history: expected 1 entry, got %d", len(history))
	}
	if math.Abs(history[0].OverallScore-5.6) > 0.001 {
		t.Errorf("history: expected superseded 5.6, got %f", history[0].OverallScore)
	}

	// 7. Gate B: eight go, one cautious data factor still reads go overall
	gateJSON := `{"factors":{
		"problem_definition":{"status":"go"},
		"value_hypothesis":{"status":"go"},
		"stakeholder_commitment":{"status":"go"},
		"data_availability":{"status":"cautious"},
		"data_quality":{"status":"go"},
		"data_compliance":{"status":"go"},
		"technical_fit":{"status":"go"},
		"team_capability":{"status":"go"},
		"operational_readiness":{"status":"go"}
	}}`
	w = do("PUT", "/api/v1/initiatives/"+initB.ID.String()+"/gate", gateJSON)
	if w.Code != http.StatusOK {
		t.Fatalf("gate: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var assessment store.GateAssessment
	_ = json.NewDecoder(w.Body).Decode(&assessment)
	if assessment.Overall.Status != store.GateGo {
		t.Errorf("gate: expected go, got %s", assessment.Overall.Status)
	}
	if assessment.Overall.Score != 94 {
		t.Errorf("gate: expected score 94, got %d", assessment.Overall.Score)
	}

	// 8. B depends on A; the critical path runs dependency-first
	depJSON := fmt.Sprintf(`{"from_id":"%s","to_id":"%s","kind":"blocks"}`, initB.ID, initA.ID)
	w = do("POST", "/api/v1/dependencies", depJSON)
	if w.Code != http.StatusCreated {
		t.Fatalf("dependency: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = do("GET", "/api/v1/dependencies/critical-path", "")
	var pathResp struct {
		Path   []string `json:"path"`
		Length int      `json:"length"`
	}
	_ = json.NewDecoder(w.Body).Decode(&pathResp)
	if pathResp.Length != 2 || pathResp.Path[0] != initA.ID.String() {
		t.Errorf("critical path: expected [A B], got %v", pathResp.Path)
	}

	// 9. Record an allocation and read the capacity report
	w = do("POST", "/api/v1/initiatives/"+initA.ID.String()+"/allocations", `{"resource_type":"eng_weeks","amount":40}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("allocation: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = do("GET", "/api/v1/capacity?resource_type=eng_weeks", "")
	var rows []struct {
		Allocated float64 `json:"allocated"`
		Available float64 `json:"available"`
	}
	_ = json.NewDecoder(w.Body).Decode(&rows)
	if len(rows) != 1 || rows[0].Allocated != 40 || rows[0].Available != 60 {
		t.Errorf("capacity: expected 40 allocated / 60 available, got %+v", rows)
	}

	// 10. Admin stats reflect everything written above
	req := httptest.NewRequest("GET", "/api/v1/admin/stats", nil)
	req.Header.Set("X-Actor-ID", "mike-d")
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var stats store.PortfolioStats
	_ = json.NewDecoder(rec.Body).Decode(&stats)
	if stats.TotalInitiatives != 2 || stats.TotalModels != 1 || stats.TotalSnapshots != 2 {
		t.Errorf("stats: unexpected counts: %+v", stats)
	}
	if stats.TotalEdges != 1 || stats.TotalAssessments != 1 {
		t.Errorf("stats: expected 1 edge and 1 assessment: %+v", stats)
	}
	if stats.ActiveModelID == nil || *stats.ActiveModelID != model.ID {
		t.Errorf("stats: expected active model %s, got %v", model.ID, stats.ActiveModelID)
	}
}

// TestScoreLifecycleWithRecompute verifies a model-wide recompute picks up
// attribute edits across the whole portfolio in one call.
func TestScoreLifecycleWithRecompute(t *testing.T) {
	router, ms := setupTestRouter()
	model := seedScoringModel(ms, true)
	a := seedInitiative(ms, "A", 9, 5)
	b := seedInitiative(ms, "B", 4, 8)

	// 1. Initial recompute scores both from stored attributes
	req := httptest.NewRequest("POST", "/api/v1/models/"+model.ID.String()+"/recompute", nil)
	req.Header.Set("X-Actor-ID", "mike-d")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("recompute: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// 2. Shift B's attributes past A
	ten := 10.0
	b.ExpectedValue = &ten
	_ = ms.UpdateInitiative(nil, b)

	// 3. Second recompute reorders the portfolio
	req = httptest.NewRequest("POST", "/api/v1/models/"+model.ID.String()+"/recompute", nil)
	req.Header.Set("X-Actor-ID", "mike-d")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("second recompute: expected 200, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/v1/models/"+model.ID.String()+"/rankings", nil)
	req.Header.Set("X-Actor-ID", "mike-d")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var ranked []store.ScoreSnapshot
	_ = json.NewDecoder(w.Body).Decode(&ranked)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(ranked))
	}
	// B now 10*0.6 + 8*0.4 = 9.2 over A's 7.4
	if ranked[0].InitiativeID != b.ID {
		t.Errorf("expected B ranked first after recompute, got %s", ranked[0].InitiativeID)
	}
	if ranked[1].InitiativeID != a.ID {
		t.Errorf("expected A ranked second, got %s", ranked[1].InitiativeID)
	}
}
