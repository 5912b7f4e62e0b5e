package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MikeSquared-Agency/Compass/internal/store"
)

const validModelBody = `{
	"name": "FY27 Portfolio Model",
	"weights": {"value": 40, "feasibility": 30, "risk": 20, "strategic_alignment": 10},
	"dimensions": [
		{"type": "value", "criteria": [
			{"name": "expected_value", "weight": 2, "source_field": "expected_value"},
			{"name": "urgency", "weight": 1, "source_field": "urgency"}
		]},
		{"type": "feasibility", "criteria": [
			{"name": "team_experience", "weight": 1, "source_field": "team_experience"},
			{"name": "data_ready", "weight": 1, "source_field": "data_ready"}
		]},
		{"type": "risk", "criteria": [
			{"name": "risk_level", "weight": 1, "source_field": "risk_level", "inverted": true}
		]},
		{"type": "strategic_alignment", "criteria": [
			{"name": "strategic_fit", "weight": 1, "source_field": "strategic_fit"}
		]}
	]
}`

func TestCreateModel(t *testing.T) {
	router, _ := setupTestRouter()

	req := httptest.NewRequest("POST", "/api/v1/models", bytes.NewBufferString(validModelBody))
	req.Header.Set("X-Actor-ID", "mike-d")
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var model store.ScoringModel
	json.NewDecoder(w.Body).Decode(&model)
	if model.Name != "FY27 Portfolio Model" {
		t.Errorf("expected model name, got '%s'", model.Name)
	}
	if model.Version != 1 {
		t.Errorf("expected version defaulted to 1, got %d", model.Version)
	}
	if model.Active {
		t.Error("expected model inactive unless activate requested")
	}
	// criterion bounds default to [0,10] during normalization
	if got := model.Dimensions[0].Criteria[0].Max; got != 10 {
		t.Errorf("expected criterion max defaulted to 10, got %f", got)
	}
	if got := model.Dimensions[0].Criteria[0].Kind; got != store.KindScore {
		t.Errorf("expected criterion kind defaulted from field registry, got '%s'", got)
	}
}

func TestCreateModelBadWeights(t *testing.T) {
	router, _ := setupTestRouter()

	body := `{"name":"Lopsided","weights":{"value":90,"feasibility":30,"risk":20,"strategic_alignment":10},"dimensions":[]}`
	req := httptest.NewRequest("POST", "/api/v1/models", bytes.NewBufferString(body))
	req.Header.Set("X-Actor-ID", "mike-d")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateModelUnknownSourceField(t *testing.T) {
	router, _ := setupTestRouter()

	body := `{
		"name": "Bad Field",
		"weights": {"value": 100, "feasibility": 0, "risk": 0, "strategic_alignment": 0},
		"dimensions": [{"type": "value", "criteria": [
			{"name": "vibes", "weight": 1, "source_field": "vibes"}
		]}]
	}`
	req := httptest.NewRequest("POST", "/api/v1/models", bytes.NewBufferString(body))
	req.Header.Set("X-Actor-ID", "mike-d")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateModelUnknownDimensionType(t *testing.T) {
	router, _ := setupTestRouter()

	body := `{
		"name": "Bad Dimension",
		"weights": {"value": 100, "feasibility": 0, "risk": 0, "strategic_alignment": 0},
		"dimensions": [{"type": "velocity", "criteria": []}]
	}`
	req := httptest.NewRequest("POST", "/api/v1/models", bytes.NewBufferString(body))
	req.Header.Set("X-Actor-ID", "mike-d")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestActivateModel(t *testing.T) {
	router, ms := setupTestRouter()

	first := &store.ScoringModel{Name: "first", Weights: store.ModelWeights{Value: 100}, Active: true}
	second := &store.ScoringModel{Name: "second", Weights: store.ModelWeights{Value: 100}}
	_ = ms.CreateScoringModel(nil, first)
	_ = ms.CreateScoringModel(nil, second)

	req := httptest.NewRequest("POST", "/api/v1/models/"+second.ID.String()+"/activate", nil)
	req.Header.Set("X-Actor-ID", "mike-d")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !second.Active {
		t.Error("expected second model active")
	}
	if first.Active {
		t.Error("expected first model deactivated")
	}

	// active endpoint now reports the new model
	req = httptest.NewRequest("GET", "/api/v1/models/active", nil)
	req.Header.Set("X-Actor-ID", "mike-d")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("active: expected 200, got %d", w.Code)
	}
	var active store.ScoringModel
	json.NewDecoder(w.Body).Decode(&active)
	if active.ID != second.ID {
		t.Errorf("expected active model %s, got %s", second.ID, active.ID)
	}
}

func TestActivateModelNotFound(t *testing.T) {
	router, _ := setupTestRouter()

	req := httptest.NewRequest("POST", "/api/v1/models/00000000-0000-0000-0000-000000000000/activate", nil)
	req.Header.Set("X-Actor-ID", "mike-d")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestActiveModelNone(t *testing.T) {
	router, _ := setupTestRouter()

	req := httptest.NewRequest("GET", "/api/v1/models/active", nil)
	req.Header.Set("X-Actor-ID", "mike-d")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
