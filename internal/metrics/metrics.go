// Package metrics exposes Prometheus instrumentation for the proxy.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booksearch_http_requests_total",
			Help: "Total number of inbound HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "booksearch_http_request_duration_seconds",
			Help:    "Inbound HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "booksearch_upstream_request_duration_seconds",
			Help:    "Duration of catalog API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booksearch_validation_failures_total",
			Help: "Search requests rejected by query validation",
		},
		[]string{"field"},
	)

	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "booksearch_upstream_breaker_state",
			Help: "Upstream circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)

// RecordHTTPRequest records one inbound request.
func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordUpstream records one catalog call. outcome is success, error or rejected.
func RecordUpstream(outcome string, d time.Duration) {
	UpstreamRequestDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// RecordValidationFailure counts a rejected query by offending field.
func RecordValidationFailure(field string) {
	ValidationFailures.WithLabelValues(field).Inc()
}

// SetBreakerState publishes the breaker state as a number.
func SetBreakerState(state int) {
	BreakerState.Set(float64(state))
}
