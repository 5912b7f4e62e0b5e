package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Compass/internal/hermes"
	"github.com/MikeSquared-Agency/Compass/internal/scoring"
	"github.com/MikeSquared-Agency/Compass/internal/store"
)

type ModelsHandler struct {
	store  store.Store
	hermes hermes.Client
}

func NewModelsHandler(s store.Store, h hermes.Client) *ModelsHandler {
	return &ModelsHandler{store: s, hermes: h}
}

type CreateModelRequest struct {
	Name       string             `json:"name"`
	Version    int                `json:"version,omitempty"`
	Weights    store.ModelWeights `json:"weights"`
	Dimensions []store.Dimension  `json:"dimensions"`
	Activate   bool               `json:"activate,omitempty"`
}

// Create validates the full model tree up front; a model that passes here
// never fails at scoring time.
func (h *ModelsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	model := &store.ScoringModel{
		Name:       req.Name,
		Version:    req.Version,
		Weights:    req.Weights,
		Dimensions: req.Dimensions,
	}
	scoring.NormalizeModel(model)
	if err := scoring.ValidateModel(model); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.store.CreateScoringModel(r.Context(), model); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if req.Activate {
		if _, err := h.store.ActivateScoringModel(r.Context(), model.ID); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		model.Active = true
	}

	if h.hermes != nil {
		_ = h.hermes.Publish(hermes.SubjectModelCreated(model.ID.String()), hermes.ModelCreatedEvent{
			ModelID:   model.ID.String(),
			Name:      model.Name,
			Version:   model.Version,
			Active:    model.Active,
			CreatedBy: r.Header.Get("X-Actor-ID"),
		})
	}

	writeJSON(w, http.StatusCreated, model)
}

func (h *ModelsHandler) List(w http.ResponseWriter, r *http.Request) {
	models, err := h.store.ListScoringModels(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if models == nil {
		models = []*store.ScoringModel{}
	}
	writeJSON(w, http.StatusOK, models)
}

func (h *ModelsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid model id"})
		return
	}

	model, err := h.store.GetScoringModel(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if model == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "model not found"})
		return
	}
	writeJSON(w, http.StatusOK, model)
}

// Active returns the currently active model, 404 when none is active.
func (h *ModelsHandler) Active(w http.ResponseWriter, r *http.Request) {
	model, err := h.store.GetActiveScoringModel(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if model == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active model"})
		return
	}
	writeJSON(w, http.StatusOK, model)
}

// Activate makes the model the single active one. Existing snapshots are
// left alone; callers recompute when they want fresh rankings.
func (h *ModelsHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid model id"})
		return
	}

	model, err := h.store.GetScoringModel(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if model == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "model not found"})
		return
	}

	if _, err := h.store.ActivateScoringModel(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if h.hermes != nil {
		_ = h.hermes.Publish(hermes.SubjectModelActivated(id.String()), hermes.ModelActivatedEvent{
			ModelID:     id.String(),
			Name:        model.Name,
			Version:     model.Version,
			ActivatedBy: r.Header.Get("X-Actor-ID"),
		})
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "activated", "model_id": id.String()})
}
