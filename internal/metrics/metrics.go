// Package metrics exposes Prometheus collectors for the catalog service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "catalog",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalog",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "catalog",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalog",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total number of outbound upstream requests.",
		},
		[]string{"upstream", "status"},
	)

	upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "catalog",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Duration of outbound upstream requests.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~10s
		},
		[]string{"upstream"},
	)

	reconcileOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalog",
			Subsystem: "remote_config",
			Name:      "reconcile_total",
			Help:      "Remote config reconcile outcomes.",
		},
		[]string{"outcome"}, // updated, created, invalid, not_found, error
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		upstreamRequests,
		upstreamDuration,
		reconcileOutcomes,
	)
}

// Handler serves the /metrics endpoint from Registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// IncInFlight increments the in-flight request gauge.
func IncInFlight() { httpInFlight.Inc() }

// DecInFlight decrements the in-flight request gauge.
func DecInFlight() { httpInFlight.Dec() }

// ObserveHTTPRequest records one handled request.
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveUpstream records one outbound upstream call.
func ObserveUpstream(upstream, status string, duration time.Duration) {
	upstreamRequests.WithLabelValues(upstream, status).Inc()
	upstreamDuration.WithLabelValues(upstream).Observe(duration.Seconds())
}

// RecordReconcile counts a reconcile outcome.
func RecordReconcile(outcome string) {
	reconcileOutcomes.WithLabelValues(outcome).Inc()
}
