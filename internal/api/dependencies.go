package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Compass/internal/depgraph"
	"github.com/MikeSquared-Agency/Compass/internal/hermes"
	"github.com/MikeSquared-Agency/Compass/internal/metrics"
	"github.com/MikeSquared-Agency/Compass/internal/store"
)

type DependenciesHandler struct {
	store  store.Store
	hermes hermes.Client
}

func NewDependenciesHandler(s store.Store, h hermes.Client) *DependenciesHandler {
	return &DependenciesHandler{store: s, hermes: h}
}

type CreateDependencyRequest struct {
	FromID   string `json:"from_id"`
	ToID     string `json:"to_id"`
	Kind     string `json:"kind,omitempty"`
	Blocking *bool  `json:"blocking,omitempty"`
	Note     string `json:"note,omitempty"`
}

// Create handles POST /api/v1/dependencies. The cycle check runs inside the
// insert transaction, so two racing inserts cannot sneak a loop in between
// check and write.
func (h *DependenciesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDependencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	fromID, err := uuid.Parse(req.FromID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid from_id"})
		return
	}
	toID, err := uuid.Parse(req.ToID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid to_id"})
		return
	}

	kind := store.EdgeKind(req.Kind)
	if kind == "" {
		kind = store.EdgeBlocks
	}
	switch kind {
	case store.EdgeBlocks, store.EdgeRequires, store.EdgeRelates:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid kind"})
		return
	}

	// blocks and requires edges gate execution order; relates is annotation.
	blocking := kind != store.EdgeRelates
	if req.Blocking != nil {
		blocking = *req.Blocking
	}

	for _, id := range []uuid.UUID{fromID, toID} {
		init, err := h.store.GetInitiative(r.Context(), id)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if init == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "initiative not found: " + id.String()})
			return
		}
	}

	edge := &store.DependencyEdge{
		FromID:   fromID,
		ToID:     toID,
		Kind:     kind,
		Blocking: blocking,
		Note:     req.Note,
	}

	if err := h.store.InsertDependencyEdge(r.Context(), edge, depgraph.Check); err != nil {
		var cycleErr *depgraph.CycleError
		if errors.As(err, &cycleErr) {
			metrics.RecordCycleRejection()
			writeJSON(w, http.StatusConflict, map[string]interface{}{
				"error":   "dependency would create a cycle",
				"from_id": cycleErr.FromID.String(),
				"to_id":   cycleErr.ToID.String(),
				"path":    idStrings(cycleErr.Path),
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if h.hermes != nil {
		_ = h.hermes.Publish(hermes.SubjectDependencyCreated(edge.ID.String()), hermes.DependencyEvent{
			EdgeID:   edge.ID.String(),
			FromID:   edge.FromID.String(),
			ToID:     edge.ToID.String(),
			Kind:     string(edge.Kind),
			Blocking: edge.Blocking,
			Actor:    r.Header.Get("X-Actor-ID"),
		})
	}

	writeJSON(w, http.StatusCreated, edge)
}

// List handles GET /api/v1/dependencies, optionally narrowed to edges
// touching one initiative.
func (h *DependenciesHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		edges []*store.DependencyEdge
		err   error
	)
	if s := r.URL.Query().Get("initiative_id"); s != "" {
		initiativeID, parseErr := uuid.Parse(s)
		if parseErr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid initiative_id"})
			return
		}
		edges, err = h.store.ListDependencyEdgesForInitiative(r.Context(), initiativeID)
	} else {
		edges, err = h.store.ListDependencyEdges(r.Context())
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if edges == nil {
		edges = []*store.DependencyEdge{}
	}
	writeJSON(w, http.StatusOK, edges)
}

// Delete handles DELETE /api/v1/dependencies/{id}
func (h *DependenciesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid dependency id"})
		return
	}

	edge, err := h.store.GetDependencyEdge(r.Context(), id)
	if err != nil || edge == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "dependency not found"})
		return
	}

	if err := h.store.DeleteDependencyEdge(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if h.hermes != nil {
		_ = h.hermes.Publish(hermes.SubjectDependencyRemoved(id.String()), hermes.DependencyEvent{
			EdgeID:   id.String(),
			FromID:   edge.FromID.String(),
			ToID:     edge.ToID.String(),
			Kind:     string(edge.Kind),
			Blocking: edge.Blocking,
			Actor:    r.Header.Get("X-Actor-ID"),
		})
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Resolve handles POST /api/v1/dependencies/{id}/resolve. Resolving is
// idempotent: a second call leaves the original resolved_at in place.
func (h *DependenciesHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid dependency id"})
		return
	}

	edge, err := h.store.GetDependencyEdge(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if edge == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "dependency not found"})
		return
	}

	if err := h.store.ResolveDependencyEdge(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	edge, err = h.store.GetDependencyEdge(r.Context(), id)
	if err != nil || edge == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to reload dependency"})
		return
	}

	if h.hermes != nil {
		_ = h.hermes.Publish(hermes.SubjectDependencyResolved(id.String()), hermes.DependencyEvent{
			EdgeID:   id.String(),
			FromID:   edge.FromID.String(),
			ToID:     edge.ToID.String(),
			Kind:     string(edge.Kind),
			Blocking: edge.Blocking,
			Actor:    r.Header.Get("X-Actor-ID"),
		})
	}

	writeJSON(w, http.StatusOK, edge)
}

// Cycles handles GET /api/v1/dependencies/cycles — a full scan over the
// blocking subgraph. The insert path keeps the graph acyclic, so anything
// reported here came in through imports or manual database edits.
func (h *DependenciesHandler) Cycles(w http.ResponseWriter, r *http.Request) {
	edges, err := h.store.ListDependencyEdges(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	cycles := depgraph.NewGraph(edges).ScanCycles()
	out := make([][]string, 0, len(cycles))
	for _, c := range cycles {
		out = append(out, idStrings(c))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cycles": out,
		"count":  len(out),
	})
}

// CriticalPath handles GET /api/v1/dependencies/critical-path
func (h *DependenciesHandler) CriticalPath(w http.ResponseWriter, r *http.Request) {
	edges, err := h.store.ListDependencyEdges(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	path := depgraph.NewGraph(edges).CriticalPath()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"path":   idStrings(path),
		"length": len(path),
	})
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
