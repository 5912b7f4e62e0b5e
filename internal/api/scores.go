package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Compass/internal/advisor"
	"github.com/MikeSquared-Agency/Compass/internal/hermes"
	"github.com/MikeSquared-Agency/Compass/internal/metrics"
	"github.com/MikeSquared-Agency/Compass/internal/scoring"
	"github.com/MikeSquared-Agency/Compass/internal/store"
)

type ScoresHandler struct {
	store   store.Store
	hermes  hermes.Client
	advisor advisor.Client
	scorer  *scoring.Scorer
}

func NewScoresHandler(s store.Store, h hermes.Client, adv advisor.Client, scorer *scoring.Scorer) *ScoresHandler {
	return &ScoresHandler{store: s, hermes: h, advisor: adv, scorer: scorer}
}

type ScoreRequest struct {
	ModelID       string             `json:"model_id,omitempty"`
	Overrides     map[string]float64 `json:"overrides,omitempty"`
	UseAdvisor    bool               `json:"use_advisor,omitempty"`
	Justification string             `json:"justification,omitempty"`
	Strengths     []string           `json:"strengths,omitempty"`
	Weaknesses    []string           `json:"weaknesses,omitempty"`
	Confidence    *float64           `json:"confidence,omitempty"`
}

// Score evaluates one initiative against one model, replaces its snapshot,
// and re-ranks the model population in the same transaction. An advisor
// outage degrades to a manual score; it never fails the request.
func (h *ScoresHandler) Score(w http.ResponseWriter, r *http.Request) {
	initiativeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid initiative id"})
		return
	}

	var req ScoreRequest
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

	model, status, errMsg := h.resolveModel(r, req.ModelID)
	if model == nil {
		writeJSON(w, status, map[string]string{"error": errMsg})
		return
	}

	in := scoring.ScoreInput{
		Initiative:    init,
		Model:         model,
		Overrides:     req.Overrides,
		Method:        store.MethodManual,
		ScoredBy:      r.Header.Get("X-Actor-ID"),
		Justification: req.Justification,
		Strengths:     req.Strengths,
		Weaknesses:    req.Weaknesses,
		Confidence:    req.Confidence,
	}

	if req.UseAdvisor && h.advisor != nil {
		h.consultAdvisor(r, init, model, &in)
	}

	started := time.Now()
	result, err := h.scorer.Score(in)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	metrics.RecordScoringDuration(time.Since(started).Seconds() * 1000)

	ranked, err := h.store.ReplaceAndRerank(r.Context(), result.Snapshot, scoring.Rank)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	metrics.RecordScoreComputed(string(ranked.Method))

	if h.hermes != nil {
		_ = h.hermes.Publish(hermes.SubjectScoreComputed(initiativeID.String()), hermes.ScoreComputedEvent{
			InitiativeID: initiativeID.String(),
			ModelID:      model.ID.String(),
			OverallScore: ranked.OverallScore,
			Rank:         ranked.Rank,
			Method:       string(ranked.Method),
			ScoredBy:     ranked.ScoredBy,
		})
	}

	writeJSON(w, http.StatusOK, ranked)
}

// consultAdvisor asks for suggestions on the criteria the caller has not
// already overridden and merges them in. Manual overrides always win; the
// advisor only fills gaps. Any advisor response upgrades the method to
// assisted.
func (h *ScoresHandler) consultAdvisor(r *http.Request, init *store.Initiative, model *store.ScoringModel, in *scoring.ScoreInput) {
	var wanted []string
	for _, d := range model.Dimensions {
		for _, c := range d.Criteria {
			if _, overridden := in.Overrides[c.Name]; !overridden {
				wanted = append(wanted, c.Name)
			}
		}
	}
	if len(wanted) == 0 {
		return
	}

	suggestion, err := h.advisor.Suggest(r.Context(), &advisor.SuggestRequest{
		InitiativeID: init.ID.String(),
		Title:        init.Title,
		Description:  init.Description,
		Attributes:   initiativeAttributes(init),
		Criteria:     wanted,
	})
	if err != nil {
		metrics.RecordAdvisorCall("error")
		return
	}
	metrics.RecordAdvisorCall("ok")

	if in.Overrides == nil {
		in.Overrides = make(map[string]float64, len(suggestion.Suggestions))
	}
	for name, v := range suggestion.Suggestions {
		if _, overridden := in.Overrides[name]; !overridden {
			in.Overrides[name] = v
		}
	}
	in.Method = store.MethodAssisted
	if in.Justification == "" {
		in.Justification = suggestion.Justification
	}
	if len(in.Strengths) == 0 {
		in.Strengths = suggestion.Strengths
	}
	if len(in.Weaknesses) == 0 {
		in.Weaknesses = suggestion.Weaknesses
	}
	if in.Confidence == nil {
		in.Confidence = suggestion.Confidence
	}
}

// initiativeAttributes flattens the assessed attributes into the bag the
// advisor receives. Unassessed fields are omitted rather than zeroed.
func initiativeAttributes(init *store.Initiative) map[string]interface{} {
	attrs := make(map[string]interface{})
	addFloat := func(name string, v *float64) {
		if v != nil {
			attrs[name] = *v
		}
	}
	addBool := func(name string, v *bool) {
		if v != nil {
			attrs[name] = *v
		}
	}
	addFloat("expected_value", init.ExpectedValue)
	addFloat("strategic_fit", init.StrategicFit)
	addFloat("risk_level", init.RiskLevel)
	addFloat("team_experience", init.TeamExperience)
	addFloat("urgency", init.Urgency)
	addFloat("cost_score", init.CostScore)
	addFloat("confidence_pct", init.ConfidencePct)
	addBool("data_ready", init.DataReady)
	addBool("compliance_approved", init.ComplianceApproved)
	return attrs
}

// resolveModel picks the model for a scoring call: the explicit model_id
// from the request when present, the active model otherwise. The error
// status distinguishes a bad reference (404) from a portfolio with no
// active model configured (409).
func (h *ScoresHandler) resolveModel(r *http.Request, explicit string) (*store.ScoringModel, int, string) {
	if explicit != "" {
		modelID, err := uuid.Parse(explicit)
		if err != nil {
			return nil, http.StatusBadRequest, "invalid model id"
		}
		model, err := h.store.GetScoringModel(r.Context(), modelID)
		if err != nil {
			return nil, http.StatusInternalServerError, err.Error()
		}
		if model == nil {
			return nil, http.StatusNotFound, "model not found"
		}
		return model, 0, ""
	}

	model, err := h.store.GetActiveScoringModel(r.Context())
	if err != nil {
		return nil, http.StatusInternalServerError, err.Error()
	}
	if model == nil {
		return nil, http.StatusConflict, "no active scoring model"
	}
	return model, 0, ""
}

// GetScore returns the current snapshot for an initiative under one model
// (?model_id= optional, defaulting to the active model).
func (h *ScoresHandler) GetScore(w http.ResponseWriter, r *http.Request) {
	initiativeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid initiative id"})
		return
	}

	model, status, errMsg := h.resolveModel(r, r.URL.Query().Get("model_id"))
	if model == nil {
		writeJSON(w, status, map[string]string{"error": errMsg})
		return
	}

	snap, err := h.store.GetScoreSnapshot(r.Context(), initiativeID, model.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if snap == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "score not found"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Recompute batch-scores every initiative against the model, then runs one
// ranking pass. Existing overrides are not replayed: each initiative is
// re-evaluated from its stored attributes.
func (h *ScoresHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	modelID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid model id"})
		return
	}

	model, err := h.store.GetScoringModel(r.Context(), modelID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if model == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "model not found"})
		return
	}

	inits, err := h.store.ListInitiatives(r.Context(), store.InitiativeFilter{})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	actor := r.Header.Get("X-Actor-ID")
	scored := 0
	for _, init := range inits {
		result, err := h.scorer.Score(scoring.ScoreInput{
			Initiative: init,
			Model:      model,
			Method:     store.MethodManual,
			ScoredBy:   actor,
		})
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if err := h.store.UpsertScoreSnapshot(r.Context(), result.Snapshot); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		metrics.RecordScoreComputed(string(result.Snapshot.Method))
		scored++
	}

	ranked, err := h.store.RerankModel(r.Context(), modelID, scoring.Rank)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	metrics.RecordRankPass(ranked)

	if h.hermes != nil {
		_ = h.hermes.Publish(hermes.SubjectRankRecomputed(modelID.String()), hermes.RankRecomputedEvent{
			ModelID: modelID.String(),
			Ranked:  ranked,
			Trigger: "recompute",
		})
	}

	writeJSON(w, http.StatusOK, map[string]int{"scored": scored, "ranked": ranked})
}

// Rankings returns a model's snapshots in rank order.
func (h *ScoresHandler) Rankings(w http.ResponseWriter, r *http.Request) {
	modelID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid model id"})
		return
	}

	model, err := h.store.GetScoringModel(r.Context(), modelID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if model == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "model not found"})
		return
	}

	snaps, err := h.store.ListScoreSnapshots(r.Context(), modelID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if snaps == nil {
		snaps = []*store.ScoreSnapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}

// History returns superseded snapshot versions, newest first.
func (h *ScoresHandler) History(w http.ResponseWriter, r *http.Request) {
	initiativeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid initiative id"})
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.store.GetScoreHistory(r.Context(), initiativeID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []*store.ScoreHistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
