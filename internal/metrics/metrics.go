// Package metrics exposes Prometheus instrumentation for the scoring and
// graph engines. Metrics live on a dedicated registry so the scrape surface
// stays limited to what Compass itself records.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	scoresComputed = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "compass",
			Subsystem: "portfolio",
			Name:      "scores_computed_total",
			Help:      "Total score snapshots computed, by method",
		},
		[]string{"method"},
	)

	scoringDuration = promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: "compass",
		Subsystem: "portfolio",
		Name:      "scoring_duration_milliseconds",
		Help:      "Time spent scoring one initiative, milliseconds",
		Buckets:   prometheus.DefBuckets,
	})

	rankPasses = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "compass",
		Subsystem: "portfolio",
		Name:      "rank_passes_total",
		Help:      "Total ranking passes over a model population",
	})

	rankedInitiatives = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Namespace: "compass",
		Subsystem: "portfolio",
		Name:      "ranked_initiatives",
		Help:      "Initiatives ranked in the most recent pass",
	})

	cycleRejections = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "compass",
		Subsystem: "portfolio",
		Name:      "cycle_rejections_total",
		Help:      "Dependency edges rejected because they would close a cycle",
	})

	gateAssessments = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "compass",
			Subsystem: "portfolio",
			Name:      "gate_assessments_total",
			Help:      "Gate assessments rolled, by overall status",
		},
		[]string{"status"},
	)

	advisorCalls = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "compass",
			Subsystem: "portfolio",
			Name:      "advisor_calls_total",
			Help:      "Advisor suggestion calls, by outcome",
		},
		[]string{"outcome"},
	)
)

func RecordScoreComputed(method string) {
	scoresComputed.WithLabelValues(method).Inc()
}

func RecordScoringDuration(ms float64) {
	scoringDuration.Observe(ms)
}

func RecordRankPass(ranked int) {
	rankPasses.Inc()
	rankedInitiatives.Set(float64(ranked))
}

func RecordCycleRejection() {
	cycleRejections.Inc()
}

func RecordGateAssessment(status string) {
	gateAssessments.WithLabelValues(status).Inc()
}

func RecordAdvisorCall(outcome string) {
	advisorCalls.WithLabelValues(outcome).Inc()
}

// Handler serves the registry for the metrics listener.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
