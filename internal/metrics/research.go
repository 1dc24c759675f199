package metrics

import "github.com/prometheus/client_golang/prometheus"

// Research session Prometheus metrics.
var (
	ResearchSessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hoplite",
			Name:      "research_sessions_total",
			Help:      "Total number of research sessions",
		},
		[]string{"status"},
	)

	ResearchHopsPerSession = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "hoplite",
			Name:      "research_hops_per_session",
			Help:      "Retrieval hops executed per research session",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8, 10},
		},
	)

	ResearchStopDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hoplite",
			Name:      "research_stop_decisions_total",
			Help:      "Stop decisions by rule",
		},
		[]string{"rule"},
	)

	RetrievalRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "hoplite",
			Name:      "retrieval_request_duration_seconds",
			Help:      "Subquery retrieval duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	RetrievalFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hoplite",
			Name:      "retrieval_failures_total",
			Help:      "Subquery retrieval calls that failed",
		},
	)
)

var researchMetricsRegistered bool

// RegisterResearchMetrics registers Prometheus research metrics. Must be called once from main.
func RegisterResearchMetrics() {
	if researchMetricsRegistered {
		return
	}
	prometheus.MustRegister(ResearchSessionsTotal)
	prometheus.MustRegister(ResearchHopsPerSession)
	prometheus.MustRegister(ResearchStopDecisionsTotal)
	prometheus.MustRegister(RetrievalRequestDuration)
	prometheus.MustRegister(RetrievalFailuresTotal)
	researchMetricsRegistered = true
}
