package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Compass/internal/scoring"
	"github.com/MikeSquared-Agency/Compass/internal/store"
)

// ExplainHandler answers "why does this initiative score what it scores" by
// re-running the evaluator live and returning the full breakdown instead of
// a persisted snapshot. Nothing is written.
type ExplainHandler struct {
	store  store.Store
	scorer *scoring.Scorer
}

func NewExplainHandler(s store.Store, scorer *scoring.Scorer) *ExplainHandler {
	return &ExplainHandler{store: s, scorer: scorer}
}

type ExplainResponse struct {
	InitiativeID uuid.UUID                 `json:"initiative_id"`
	Title        string                    `json:"title"`
	ModelID      uuid.UUID                 `json:"model_id"`
	ModelName    string                    `json:"model_name"`
	Weights      store.ModelWeights        `json:"weights"`
	Dimensions   []scoring.DimensionResult `json:"dimensions"`
	OverallScore float64                   `json:"overall_score"`
}

// Explain handles GET /api/v1/initiatives/{id}/score/explain
func (h *ExplainHandler) Explain(w http.ResponseWriter, r *http.Request) {
	initiativeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid initiative id"})
		return
	}

	init, err := h.store.GetInitiative(r.Context(), initiativeID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if init == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "initiative not found"})
		return
	}

	var model *store.ScoringModel
	if s := r.URL.Query().Get("model_id"); s != "" {
		modelID, err := uuid.Parse(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid model id"})
			return
		}
		model, err = h.store.GetScoringModel(r.Context(), modelID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if model == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "model not found"})
			return
		}
	} else {
		model, err = h.store.GetActiveScoringModel(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if model == nil {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "no active scoring model"})
			return
		}
	}

	result, err := h.scorer.Score(scoring.ScoreInput{Initiative: init, Model: model})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, ExplainResponse{
		InitiativeID: init.ID,
		Title:        init.Title,
		ModelID:      model.ID,
		ModelName:    model.Name,
		Weights:      model.Weights,
		Dimensions:   result.Dimensions,
		OverallScore: result.OverallScore,
	})
}
