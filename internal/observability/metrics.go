package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	apiRequestsTotal  *prometheus.CounterVec
	apiLatencySeconds *prometheus.HistogramVec
	apiErrorsTotal    *prometheus.CounterVec

	gradebookBuildsTotal        prometheus.Counter
	lateDeductionsTotal         prometheus.Counter
	submissionsGradedTotal      prometheus.Counter
	quizAttemptsSubmittedTotal  prometheus.Counter
	announcementsPublishedTotal *prometheus.CounterVec
	sseClientsActive            prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used for API observability.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "canvas_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "canvas_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "canvas_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		gradebookBuildsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "canvas_gradebook_builds_total",
			Help: "Total number of gradebook matrix assemblies.",
		})

		lateDeductionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "canvas_late_deductions_total",
			Help: "Total number of gradebook cells with a late deduction applied.",
		})

		submissionsGradedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "canvas_submissions_graded_total",
			Help: "Total number of assignment submissions graded by faculty.",
		})

		quizAttemptsSubmittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "canvas_quiz_attempts_submitted_total",
			Help: "Total number of quiz attempts submitted by students.",
		})

		announcementsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "canvas_announcements_published_total",
			Help: "Total number of announcements published, per course.",
		}, []string{"course_id"})

		sseClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "canvas_sse_clients_active",
			Help: "Number of connected announcement stream subscribers.",
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			gradebookBuildsTotal,
			lateDeductionsTotal,
			submissionsGradedTotal,
			quizAttemptsSubmittedTotal,
			announcementsPublishedTotal,
			sseClientsActive,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// GradebookBuilds exposes the counter for gradebook assemblies.
func GradebookBuilds() prometheus.Counter {
	RegisterMetrics()
	return gradebookBuildsTotal
}

// LateDeductions exposes the counter for applied late deductions.
func LateDeductions() prometheus.Counter {
	RegisterMetrics()
	return lateDeductionsTotal
}

// SubmissionsGraded exposes the counter for graded submissions.
func SubmissionsGraded() prometheus.Counter {
	RegisterMetrics()
	return submissionsGradedTotal
}

// QuizAttemptsSubmitted exposes the counter for submitted quiz attempts.
func QuizAttemptsSubmitted() prometheus.Counter {
	RegisterMetrics()
	return quizAttemptsSubmittedTotal
}

// AnnouncementsPublishedTotal exposes the per-course announcement counter.
func AnnouncementsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return announcementsPublishedTotal
}

// SSEClientsActive exposes the gauge of connected stream subscribers.
func SSEClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return sseClientsActive
}
