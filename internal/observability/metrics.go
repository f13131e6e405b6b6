package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	gradingOutcomesTotal   *prometheus.CounterVec
	gradingLatencySeconds  *prometheus.HistogramVec
	totalRecomputesTotal   prometheus.Counter
	gradebookCacheRequests *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used for grading observability.
func RegisterMetrics() {
	registerOnce.Do(func() {
		gradingOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grading_outcomes_total",
			Help: "Total number of graded submissions by outcome and skip reason.",
		}, []string{"outcome", "reason"})

		gradingLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grading_latency_seconds",
			Help:    "Latency distribution of the grading workflow.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"which_to_grade"})

		totalRecomputesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grading_total_recomputes_total",
			Help: "Total number of assignment total recomputations.",
		})

		gradebookCacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradebook_cache_requests_total",
			Help: "Gradebook total lookups by cache result.",
		}, []string{"result"})

		prometheus.MustRegister(gradingOutcomesTotal, gradingLatencySeconds, totalRecomputesTotal, gradebookCacheRequests)
	})
}

// GradingOutcomes exposes the counter for grading outcomes.
func GradingOutcomes() *prometheus.CounterVec {
	RegisterMetrics()
	return gradingOutcomesTotal
}

// GradingLatency exposes the latency histogram for the grading workflow.
func GradingLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return gradingLatencySeconds
}

// TotalRecomputes exposes the counter for assignment total recomputations.
func TotalRecomputes() prometheus.Counter {
	RegisterMetrics()
	return totalRecomputesTotal
}

// GradebookCacheRequests exposes the counter for gradebook cache lookups.
func GradebookCacheRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return gradebookCacheRequests
}
