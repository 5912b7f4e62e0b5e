package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Compass/internal/hermes"
	"github.com/MikeSquared-Agency/Compass/internal/store"
)

type InitiativesHandler struct {
	store  store.Store
	hermes hermes.Client
}

func NewInitiativesHandler(s store.Store, h hermes.Client) *InitiativesHandler {
	return &InitiativesHandler{store: s, hermes: h}
}

type CreateInitiativeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Owner       string `json:"owner,omitempty"`

	ExpectedValue      *float64 `json:"expected_value,omitempty"`
	StrategicFit       *float64 `json:"strategic_fit,omitempty"`
	RiskLevel          *float64 `json:"risk_level,omitempty"`
	TeamExperience     *float64 `json:"team_experience,omitempty"`
	Urgency            *float64 `json:"urgency,omitempty"`
	CostScore          *float64 `json:"cost_score,omitempty"`
	ConfidencePct      *float64 `json:"confidence_pct,omitempty"`
	DataReady          *bool    `json:"data_ready,omitempty"`
	ComplianceApproved *bool    `json:"compliance_approved,omitempty"`
}

func validInitiativeStatus(s store.InitiativeStatus) bool {
	switch s {
	case store.InitiativeProposed, store.InitiativeActive, store.InitiativeOnHold,
		store.InitiativeDone, store.InitiativeCancelled:
		return true
	}
	return false
}

func (h *InitiativesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateInitiativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title required"})
		return
	}

	status := store.InitiativeProposed
	if req.Status != "" {
		status = store.InitiativeStatus(req.Status)
		if !validInitiativeStatus(status) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
			return
		}
	}

	init := &store.Initiative{
		Title:              req.Title,
		Description:        req.Description,
		Status:             status,
		Owner:              req.Owner,
		ExpectedValue:      req.ExpectedValue,
		StrategicFit:       req.StrategicFit,
		RiskLevel:          req.RiskLevel,
		TeamExperience:     req.TeamExperience,
		Urgency:            req.Urgency,
		CostScore:          req.CostScore,
		ConfidencePct:      req.ConfidencePct,
		DataReady:          req.DataReady,
		ComplianceApproved: req.ComplianceApproved,
	}

	if err := h.store.CreateInitiative(r.Context(), init); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if h.hermes != nil {
		_ = h.hermes.Publish(hermes.SubjectInitiativeCreated(init.ID.String()), hermes.InitiativeEvent{
			InitiativeID: init.ID.String(),
			Title:        init.Title,
			Status:       string(init.Status),
			Owner:        init.Owner,
			Actor:        r.Header.Get("X-Actor-ID"),
		})
	}

	writeJSON(w, http.StatusCreated, init)
}

func (h *InitiativesHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.InitiativeFilter{
		Owner: r.URL.Query().Get("owner"),
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status := store.InitiativeStatus(s)
		filter.Status = &status
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			filter.Limit = n
		}
	}
	if s := r.URL.Query().Get("offset"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			filter.Offset = n
		}
	}

	inits, err := h.store.ListInitiatives(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if inits == nil {
		inits = []*store.Initiative{}
	}
	writeJSON(w, http.StatusOK, inits)
}

func (h *InitiativesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid initiative id"})
		return
	}

	init, err := h.store.GetInitiative(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if init == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "initiative not found"})
		return
	}
	writeJSON(w, http.StatusOK, init)
}

type UpdateInitiativeRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Owner       *string `json:"owner,omitempty"`

	ExpectedValue      *float64 `json:"expected_value,omitempty"`
	StrategicFit       *float64 `json:"strategic_fit,omitempty"`
	RiskLevel          *float64 `json:"risk_level,omitempty"`
	TeamExperience     *float64 `json:"team_experience,omitempty"`
	Urgency            *float64 `json:"urgency,omitempty"`
	CostScore          *float64 `json:"cost_score,omitempty"`
	ConfidencePct      *float64 `json:"confidence_pct,omitempty"`
	DataReady          *bool    `json:"data_ready,omitempty"`
	ComplianceApproved *bool    `json:"compliance_approved,omitempty"`
}

// Update applies a partial patch. Absent fields keep their value; attribute
// edits here do NOT re-score — rankings catch up on the next scoring pass
// or refresh tick.
func (h *InitiativesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid initiative id"})
		return
	}

	init, err := h.store.GetInitiative(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if init == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "initiative not found"})
		return
	}

	var req UpdateInitiativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Title != nil {
		init.Title = *req.Title
	}
	if req.Description != nil {
		init.Description = *req.Description
	}
	if req.Status != nil {
		status := store.InitiativeStatus(*req.Status)
		if !validInitiativeStatus(status) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
			return
		}
		init.Status = status
	}
	if req.Owner != nil {
		init.Owner = *req.Owner
	}
	if req.ExpectedValue != nil {
		init.ExpectedValue = req.ExpectedValue
	}
	if req.StrategicFit != nil {
		init.StrategicFit = req.StrategicFit
	}
	if req.RiskLevel != nil {
		init.RiskLevel = req.RiskLevel
	}
	if req.TeamExperience != nil {
		init.TeamExperience = req.TeamExperience
	}
	if req.Urgency != nil {
		init.Urgency = req.Urgency
	}
	if req.CostScore != nil {
		init.CostScore = req.CostScore
	}
	if req.ConfidencePct != nil {
		init.ConfidencePct = req.ConfidencePct
	}
	if req.DataReady != nil {
		init.DataReady = req.DataReady
	}
	if req.ComplianceApproved != nil {
		init.ComplianceApproved = req.ComplianceApproved
	}

	if err := h.store.UpdateInitiative(r.Context(), init); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if h.hermes != nil {
		_ = h.hermes.Publish(hermes.SubjectInitiativeUpdated(init.ID.String()), hermes.InitiativeEvent{
			InitiativeID: init.ID.String(),
			Title:        init.Title,
			Status:       string(init.Status),
			Owner:        init.Owner,
			Actor:        r.Header.Get("X-Actor-ID"),
		})
	}

	writeJSON(w, http.StatusOK, init)
}

func (h *InitiativesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid initiative id"})
		return
	}

	init, err := h.store.GetInitiative(r.Context(), id)
	if err != nil || init == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "initiative not found"})
		return
	}

	if err := h.store.DeleteInitiative(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if h.hermes != nil {
		_ = h.hermes.Publish(hermes.SubjectInitiativeDeleted(id.String()), hermes.InitiativeEvent{
			InitiativeID: id.String(),
			Title:        init.Title,
			Status:       string(init.Status),
			Actor:        r.Header.Get("X-Actor-ID"),
		})
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
