package hermes

import "time"

const (
	SubjectPortfolioStats = "portfolio.stats"

	StreamName   = "PORTFOLIO_EVENTS"
	StreamMaxAge = 720 * time.Hour // 30 days
)

// Initiative lifecycle subjects
func SubjectInitiativeCreated(initiativeID string) string {
	return "portfolio.initiative." + initiativeID + ".created"
}
func SubjectInitiativeUpdated(initiativeID string) string {
	return "portfolio.initiative." + initiativeID + ".updated"
}
func SubjectInitiativeDeleted(initiativeID string) string {
	return "portfolio.initiative." + initiativeID + ".deleted"
}

// Scoring model subjects
func SubjectModelCreated(modelID string) string   { return "portfolio.model." + modelID + ".created" }
func SubjectModelActivated(modelID string) string { return "portfolio.model." + modelID + ".activated" }

// Ranking subjects
func SubjectRankRecomputed(modelID string) string {
	return "portfolio.rank." + modelID + ".recomputed"
}

// Score subjects
func SubjectScoreComputed(initiativeID string) string {
	return "portfolio.score." + initiativeID + ".computed"
}

// Dependency graph subjects
func SubjectDependencyCreated(edgeID string) string {
	return "portfolio.dependency." + edgeID + ".created"
}
func SubjectDependencyResolved(edgeID string) string {
	return "portfolio.dependency." + edgeID + ".resolved"
}
func SubjectDependencyRemoved(edgeID string) string {
	return "portfolio.dependency." + edgeID + ".removed"
}

// Capacity subjects
func SubjectAllocationRecorded(initiativeID string) string {
	return "portfolio.allocation." + initiativeID + ".recorded"
}

// Gate subjects
func SubjectGateAssessed(initiativeID string) string {
	return "portfolio.gate." + initiativeID + ".assessed"
}
