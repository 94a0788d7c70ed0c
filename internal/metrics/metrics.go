// Package metrics provides Prometheus metrics collection for the reconciliation service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks HTTP request duration by method, path, and status code.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)

	// HTTPRequestTotal tracks total HTTP requests by method, path, and status code.
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	// ReconciliationsTotal tracks reconciliation outcomes by status and error category.
	ReconciliationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciliations_total",
			Help: "Total number of prescription reconciliations",
		},
		[]string{"status", "category"},
	)

	// ReconciliationDuration tracks end-to-end reconciliation duration.
	ReconciliationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reconciliation_duration_seconds",
			Help:    "Reconciliation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		},
	)

	// StageDuration tracks duration of each pipeline stage.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reconciliation_stage_duration_seconds",
			Help:    "Reconciliation stage duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.5},
		},
		[]string{"stage", "result"},
	)

	// AdvisoryOutcomesTotal tracks what happened to advisory overrides.
	AdvisoryOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisory_outcomes_total",
			Help: "Total number of advisory override attempts by outcome",
		},
		[]string{"outcome"},
	)

	// CollaboratorRetriesTotal tracks retries against external collaborators.
	CollaboratorRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collaborator_retries_total",
			Help: "Total number of retried collaborator calls",
		},
		[]string{"collaborator"},
	)

	// RateLimitRejectionsTotal tracks requests rejected by the rate limiter.
	RateLimitRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Total number of requests rejected by rate limiting",
		},
	)

	// HandlerPanicsTotal counts panics recovered by the HTTP layer.
	HandlerPanicsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_handler_panics_total",
			Help: "Total number of handler panics recovered",
		},
	)
)

// PrometheusMiddleware returns a Gin middleware that collects HTTP metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration)
		HTTPRequestTotal.WithLabelValues(method, path, statusCode).Inc()
	}
}

// RecordReconciliation records the outcome of one reconciliation.
// category is empty for successful runs.
func RecordReconciliation(duration time.Duration, status, category string) {
	ReconciliationDuration.Observe(duration.Seconds())
	ReconciliationsTotal.WithLabelValues(status, category).Inc()
}

// ObserveStage records the duration of a pipeline stage.
func ObserveStage(stage string, duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	StageDuration.WithLabelValues(stage, result).Observe(duration.Seconds())
}

// RecordAdvisoryOutcome records an advisory override outcome
// (accepted, rejected, failed, timeout).
func RecordAdvisoryOutcome(outcome string) {
	AdvisoryOutcomesTotal.WithLabelValues(outcome).Inc()
}

// RecordRetry records one retry against a collaborator.
func RecordRetry(collaborator string) {
	CollaboratorRetriesTotal.WithLabelValues(collaborator).Inc()
}

// RecordRateLimitRejection records a request rejected by rate limiting.
func RecordRateLimitRejection() {
	RateLimitRejectionsTotal.Inc()
}

// RecordPanic records a recovered handler panic.
func RecordPanic() {
	HandlerPanicsTotal.Inc()
}
