// Package gate rolls qualitative feasibility assessments into a single
// advisory verdict. The checklist is fixed: nine factors across three
// categories, assessed go, cautious, or risk. The rollup is deliberately
// conservative and never produces an approval on its own — the output feeds
// a human decision step.
package gate

import "github.com/MikeSquared-Agency/Compass/internal/store"

const (
	CategoryBusiness = "Business Feasibility"
	CategoryData     = "Data Feasibility"
	CategoryTech     = "Technology/Execution Feasibility"
)

// FactorDef is one entry of the fixed checklist. Callers cannot redefine
// category or question; normalization overwrites both from this table.
type FactorDef struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Question string `json:"question"`
}

// Factors is the canonical checklist in display order.
var Factors = []FactorDef{
	{ID: "problem_definition", Category: CategoryBusiness, Question: "Is the business problem clearly defined and owned?"},
	{ID: "value_hypothesis", Category: CategoryBusiness, Question: "Is there a quantified value hypothesis with success metrics?"},
	{ID: "stakeholder_commitment", Category: CategoryBusiness, Question: "Are the sponsor and stakeholders committed to adopting the outcome?"},
	{ID: "data_availability", Category: CategoryData, Question: "Is the required data accessible in sufficient volume?"},
	{ID: "data_quality", Category: CategoryData, Question: "Is data quality adequate for the intended use?"},
	{ID: "data_compliance", Category: CategoryData, Question: "Are privacy, licensing, and compliance constraints cleared?"},
	{ID: "technical_fit", Category: CategoryTech, Question: "Does the solution fit the current platform and architecture?"},
	{ID: "team_capability", Category: CategoryTech, Question: "Does the team have the skills and capacity to deliver?"},
	{ID: "operational_readiness", Category: CategoryTech, Question: "Can the result be deployed, monitored, and maintained?"},
}

// hardStopCategories force an overall risk verdict when any of their
// factors is assessed risk, regardless of the numeric average.
var hardStopCategories = map[string]bool{
	CategoryData: true,
	CategoryTech: true,
}

// validStatuses guards against free-text statuses from untrusted input;
// anything unrecognized coerces to cautious during normalization.
var validStatuses = map[store.GateStatus]bool{
	store.GateGo:       true,
	store.GateCautious: true,
	store.GateRisk:     true,
}
