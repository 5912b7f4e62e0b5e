package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Compass/internal/depgraph"
	"github.com/MikeSquared-Agency/Compass/internal/hermes"
	"github.com/MikeSquared-Agency/Compass/internal/store"
)

// CapacityHandler records resource allocations and reports utilization
// against the configured totals. Totals are deployment policy, injected at
// construction rather than stored.
type CapacityHandler struct {
	store  store.Store
	hermes hermes.Client
	totals map[string]float64
}

func NewCapacityHandler(s store.Store, h hermes.Client, totals map[string]float64) *CapacityHandler {
	return &CapacityHandler{store: s, hermes: h, totals: totals}
}

type CreateAllocationRequest struct {
	ResourceType string  `json:"resource_type"`
	ResourceName string  `json:"resource_name,omitempty"`
	Amount       float64 `json:"amount"`
	Window       string  `json:"window,omitempty"`
}

// CreateAllocation handles POST /api/v1/initiatives/{id}/allocations.
// Over-allocation is allowed and surfaces in the capacity report; blocking
// the write would just push bookkeeping into spreadsheets.
func (h *CapacityHandler) CreateAllocation(w http.ResponseWriter, r *http.Request) {
	initiativeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid initiative id"})
		return
	}

	var req CreateAllocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.ResourceType == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "resource_type required"})
		return
	}
	if req.Amount <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must be positive"})
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

	alloc := &store.ResourceAllocation{
		InitiativeID: initiativeID,
		ResourceType: req.ResourceType,
		ResourceName: req.ResourceName,
		Amount:       req.Amount,
		Window:       req.Window,
	}
	if err := h.store.CreateAllocation(r.Context(), alloc); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if h.hermes != nil {
		_ = h.hermes.Publish(hermes.SubjectAllocationRecorded(initiativeID.String()), hermes.AllocationRecordedEvent{
			AllocationID: alloc.ID.String(),
			InitiativeID: initiativeID.String(),
			ResourceType: alloc.ResourceType,
			Amount:       alloc.Amount,
			Window:       alloc.Window,
		})
	}

	writeJSON(w, http.StatusCreated, alloc)
}

// Capacity handles GET /api/v1/capacity — allocations grouped by resource
// type against configured totals, optionally narrowed by type or window.
func (h *CapacityHandler) Capacity(w http.ResponseWriter, r *http.Request) {
	filter := store.AllocationFilter{
		ResourceType: r.URL.Query().Get("resource_type"),
		Window:       r.URL.Query().Get("window"),
	}

	allocs, err := h.store.ListAllocations(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	rows := depgraph.CapacityOverview(allocs, h.totals, filter.ResourceType)
	if rows == nil {
		rows = []depgraph.CapacityRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}
