package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Compass/internal/gate"
	"github.com/MikeSquared-Agency/Compass/internal/hermes"
	"github.com/MikeSquared-Agency/Compass/internal/metrics"
	"github.com/MikeSquared-Agency/Compass/internal/store"
)

type GatesHandler struct {
	store  store.Store
	hermes hermes.Client
}

func NewGatesHandler(s store.Store, h hermes.Client) *GatesHandler {
	return &GatesHandler{store: s, hermes: h}
}

type PutGateRequest struct {
	Factors map[string]store.GateFactorAssessment `json:"factors"`
}

// Put handles PUT /api/v1/initiatives/{id}/gate. The submitted factors are
// normalized against the fixed checklist, rolled into an overall verdict,
// and stored as the initiative's single current assessment.
func (h *GatesHandler) Put(w http.ResponseWriter, r *http.Request) {
	initiativeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid initiative id"})
		return
	}

	var req PutGateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
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

	factors, overall := gate.Assess(req.Factors)
	assessment := &store.GateAssessment{
		InitiativeID: initiativeID,
		Factors:      factors,
		Overall:      overall,
		AssessedBy:   r.Header.Get("X-Actor-ID"),
	}

	if err := h.store.PutGateAssessment(r.Context(), assessment); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	metrics.RecordGateAssessment(string(overall.Status))

	if h.hermes != nil {
		_ = h.hermes.Publish(hermes.SubjectGateAssessed(initiativeID.String()), hermes.GateAssessedEvent{
			InitiativeID: initiativeID.String(),
			Status:       string(overall.Status),
			Score:        overall.Score,
			AssessedBy:   assessment.AssessedBy,
		})
	}

	writeJSON(w, http.StatusOK, assessment)
}

// Get handles GET /api/v1/initiatives/{id}/gate
func (h *GatesHandler) Get(w http.ResponseWriter, r *http.Request) {
	initiativeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid initiative id"})
		return
	}

	assessment, err := h.store.GetGateAssessment(r.Context(), initiativeID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if assessment == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "gate assessment not found"})
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}

// Factors handles GET /api/v1/gate/factors — the fixed checklist clients
// render assessment forms from.
func (h *GatesHandler) Factors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, gate.Factors)
}
