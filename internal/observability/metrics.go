package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	queueJobsTotal        *prometheus.CounterVec
	queueRunDurationSecs  prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors used by the API and
// the queue worker.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_requests_total",
			Help: "Total number of interview API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "interview_latency_seconds",
			Help:    "Latency distribution for interview API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_errors_total",
			Help: "Total number of error responses returned by interview endpoints.",
		}, []string{"method", "route", "status"})

		queueJobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evaluation_queue_jobs_total",
			Help: "Evaluation queue jobs by terminal outcome.",
		}, []string{"outcome"})

		queueRunDurationSecs = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "evaluation_queue_run_duration_seconds",
			Help:    "Duration of queue processor batch runs.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		})

		prometheus.MustRegister(apiRequestsTotal, apiLatencySeconds, apiErrorsTotal, queueJobsTotal, queueRunDurationSecs)
	})
}

// APIRequests exposes the counter for interview API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for interview API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for interview API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// QueueJobs exposes the counter for queue job outcomes.
func QueueJobs() *prometheus.CounterVec {
	RegisterMetrics()
	return queueJobsTotal
}

// QueueRunDuration exposes the histogram for queue batch run durations.
func QueueRunDuration() prometheus.Histogram {
	RegisterMetrics()
	return queueRunDurationSecs
}
