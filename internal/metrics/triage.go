package metrics

import "github.com/prometheus/client_golang/prometheus"

// Triage Prometheus metrics.
var (
	AssessmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "symcheck",
			Name:      "assessments_total",
			Help:      "Total number of completed assessments",
		},
		[]string{"urgency"},
	)

	ExtractionKeywords = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "symcheck",
			Name:      "extraction_keywords_per_request",
			Help:      "Number of keywords extracted per assessment",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
		},
	)

	KBReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "symcheck",
			Name:      "kb_reloads_total",
			Help:      "Knowledge base reload attempts",
		},
		[]string{"status"}, // "ok" / "error"
	)

	KBConditions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "symcheck",
			Name:      "kb_conditions",
			Help:      "Conditions in the active knowledge base snapshot",
		},
	)
)

var triageMetricsRegistered bool

// RegisterTriageMetrics registers Prometheus triage metrics. Must be called once from main.
func RegisterTriageMetrics() {
	if triageMetricsRegistered {
		return
	}
	prometheus.MustRegister(AssessmentsTotal)
	prometheus.MustRegister(ExtractionKeywords)
	prometheus.MustRegister(KBReloadsTotal)
	prometheus.MustRegister(KBConditions)
	triageMetricsRegistered = true
}
