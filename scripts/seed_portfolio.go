// seed_portfolio.go — standalone script to seed a default scoring model and a
// sample portfolio via the Compass API.
//
// Usage:
//
//	go run scripts/seed_portfolio.go -api http://localhost:8700 -actor system
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
)

type modelPayload struct {
	Name       string             `json:"name"`
	Weights    map[string]float64 `json:"weights"`
	Dimensions []dimensionPayload `json:"dimensions"`
	Activate   bool               `json:"activate"`
}

type dimensionPayload struct {
	Type     string             `json:"type"`
	Weight   float64            `json:"weight,omitempty"`
	Criteria []criterionPayload `json:"criteria"`
}

type criterionPayload struct {
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	SourceField string  `json:"source_field,omitempty"`
	Inverted    bool    `json:"inverted,omitempty"`
}

type initiativePayload struct {
	Title              string   `json:"title"`
	Description        string   `json:"description,omitempty"`
	Owner              string   `json:"owner,omitempty"`
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

type dependencyPayload struct {
	FromID string `json:"from_id"`
	ToID   string `json:"to_id"`
	Kind   string `json:"kind"`
	Note   string `json:"note,omitempty"`
}

type allocationPayload struct {
	ResourceType string  `json:"resource_type"`
	Amount       float64 `json:"amount"`
	Window       string  `json:"window,omitempty"`
}

func f(v float64) *float64 { return &v }
func b(v bool) *bool       { return &v }

func defaultModel() modelPayload {
	return modelPayload{
		Name: "default-portfolio",
		Weights: map[string]float64{
			"value":               40,
			"feasibility":         30,
			"risk":                20,
			"strategic_alignment": 10,
		},
		Dimensions: []dimensionPayload{
			{Type: "value", Criteria: []criterionPayload{
				{Name: "expected_value", Weight: 50, SourceField: "expected_value"},
				{Name: "urgency", Weight: 30, SourceField: "urgency"},
				{Name: "cost_efficiency", Weight: 20, SourceField: "cost_score", Inverted: true},
			}},
			{Type: "feasibility", Criteria: []criterionPayload{
				{Name: "team_experience", Weight: 40, SourceField: "team_experience"},
				{Name: "data_ready", Weight: 30, SourceField: "data_ready"},
				{Name: "confidence", Weight: 30, SourceField: "confidence_pct"},
			}},
			{Type: "risk", Criteria: []criterionPayload{
				{Name: "risk_level", Weight: 60, SourceField: "risk_level", Inverted: true},
				{Name: "compliance_approved", Weight: 40, SourceField: "compliance_approved"},
			}},
			{Type: "strategic_alignment", Criteria: []criterionPayload{
				{Name: "portfolio_alignment", Weight: 100, SourceField: "strategic_fit"},
			}},
		},
		Activate: true,
	}
}

func sampleInitiatives() []initiativePayload {
	return []initiativePayload{
		{
			Title:          "Checkout latency rewrite",
			Description:    "Move the checkout path off the legacy monolith.",
			Owner:          "platform",
			ExpectedValue:  f(8), StrategicFit: f(9), RiskLevel: f(4),
			TeamExperience: f(7), Urgency: f(8), CostScore: f(5),
			ConfidencePct: f(70), DataReady: b(true), ComplianceApproved: b(true),
		},
		{
			Title:          "Churn prediction model",
			Description:    "Score accounts weekly for retention outreach.",
			Owner:          "data",
			ExpectedValue:  f(7), StrategicFit: f(6), RiskLevel: f(6),
			TeamExperience: f(5), Urgency: f(4), CostScore: f(4),
			ConfidencePct: f(50), DataReady: b(false),
		},
		{
			Title:          "Vendor consolidation",
			Description:    "Collapse three observability vendors into one.",
			Owner:          "ops",
			ExpectedValue:  f(5), StrategicFit: f(4), RiskLevel: f(2),
			TeamExperience: f(8), Urgency: f(3), CostScore: f(2),
			ConfidencePct: f(90), DataReady: b(true), ComplianceApproved: b(true),
		},
		{
			Title:          "EU data residency",
			Description:    "Regional storage split ahead of enterprise deals.",
			Owner:          "platform",
			ExpectedValue:  f(9), StrategicFit: f(10), RiskLevel: f(7),
			TeamExperience: f(4), Urgency: f(6), CostScore: f(8),
			ConfidencePct: f(40), DataReady: b(false), ComplianceApproved: b(false),
		},
	}
}

func main() {
	apiURL := flag.String("api", "http://localhost:8700", "Compass API base URL")
	actorID := flag.String("actor", "system", "X-Actor-ID header value")
	dryRun := flag.Bool("dry-run", false, "print payloads without posting")
	flag.Parse()

	model := defaultModel()
	initiatives := sampleInitiatives()

	if *dryRun {
		fmt.Printf("model %q (%d dimensions)\n", model.Name, len(model.Dimensions))
		for i, init := range initiatives {
			fmt.Printf("[%d] %s (owner=%s)\n", i+1, init.Title, init.Owner)
		}
		return
	}

	c := &seedClient{api: *apiURL, actor: *actorID, http: &http.Client{}}

	var created idResponse
	if err := c.post("/api/v1/models", model, &created); err != nil {
		log.Fatalf("create model: %v", err)
	}
	log.Printf("created scoring model %s", created.ID)

	ids := make([]string, 0, len(initiatives))
	for _, init := range initiatives {
		var resp idResponse
		if err := c.post("/api/v1/initiatives", init, &resp); err != nil {
			log.Printf("skip %q: %v", init.Title, err)
			continue
		}
		ids = append(ids, resp.ID)
	}
	log.Printf("created %d initiatives", len(ids))

	scored := 0
	for _, id := range ids {
		if err := c.post("/api/v1/initiatives/"+id+"/score", map[string]any{}, nil); err != nil {
			log.Printf("skip score %s: %v", id, err)
			continue
		}
		scored++
	}
	log.Printf("scored %d initiatives", scored)

	// Sample graph: churn model needs the latency rewrite, residency needs both.
	edges := 0
	if len(ids) >= 4 {
		deps := []dependencyPayload{
			{FromID: ids[1], ToID: ids[0], Kind: "blocks", Note: "shares checkout event pipeline"},
			{FromID: ids[3], ToID: ids[0], Kind: "requires"},
			{FromID: ids[3], ToID: ids[2], Kind: "relates"},
		}
		for _, dep := range deps {
			if err := c.post("/api/v1/dependencies", dep, nil); err != nil {
				log.Printf("skip dependency: %v", err)
				continue
			}
			edges++
		}
	}
	log.Printf("created %d dependency edges", edges)

	allocated := 0
	if len(ids) >= 4 {
		allocs := []struct {
			initiative string
			payload    allocationPayload
		}{
			{ids[0], allocationPayload{ResourceType: "eng_weeks", Amount: 24, Window: "2026-Q3"}},
			{ids[1], allocationPayload{ResourceType: "eng_weeks", Amount: 10, Window: "2026-Q3"}},
			{ids[3], allocationPayload{ResourceType: "eng_weeks", Amount: 32, Window: "2026-Q4"}},
			{ids[0], allocationPayload{ResourceType: "budget_k", Amount: 120, Window: "2026-Q3"}},
		}
		for _, a := range allocs {
			if err := c.post("/api/v1/initiatives/"+a.initiative+"/allocations", a.payload, nil); err != nil {
				log.Printf("skip allocation: %v", err)
				continue
			}
			allocated++
		}
	}
	log.Printf("created %d allocations", allocated)

	log.Printf("done: model + %d initiatives, %d scored, %d edges, %d allocations", len(ids), scored, edges, allocated)
}

// idResponse captures just the id field from a create response.
type idResponse struct {
	ID string `json:"id"`
}

type seedClient struct {
	api   string
	actor string
	http  *http.Client
}

func (c *seedClient) post(path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest("POST", c.api+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-ID", c.actor)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
