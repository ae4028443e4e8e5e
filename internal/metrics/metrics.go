// Package metrics provides Prometheus metrics for Aetheris.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "aetheris"
)

// HTTP metrics
var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// HTTPRequestsInFlight tracks concurrent HTTP requests.
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)
)

// Stream metrics
var (
	// StreamSessionsActive tracks patient sessions with a running tick loop.
	StreamSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "sessions_active",
			Help:      "Number of active patient monitoring sessions",
		},
	)

	// StreamObserversActive tracks attached observer connections.
	StreamObserversActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "observers_active",
			Help:      "Number of attached stream observers",
		},
	)

	// StreamTicksTotal counts generator ticks across all sessions.
	StreamTicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "ticks_total",
			Help:      "Total vitals generation ticks",
		},
	)

	// StreamReadingsDroppedTotal counts readings evicted from observer queues.
	StreamReadingsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "readings_dropped_total",
			Help:      "Total readings dropped from slow observer queues",
		},
	)

	// StreamObserversForceClosedTotal counts observers disconnected because
	// an alert could not be queued.
	StreamObserversForceClosedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "observers_force_closed_total",
			Help:      "Total observers disconnected on alert delivery failure",
		},
	)
)

// Alerting metrics
var (
	// AlertsFiredTotal counts fired alerts by severity.
	AlertsFiredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "fired_total",
			Help:      "Total alerts fired",
		},
		[]string{"severity"},
	)

	// AlertsAcknowledgedTotal counts acknowledged alerts.
	AlertsAcknowledgedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "acknowledged_total",
			Help:      "Total alerts acknowledged",
		},
	)
)

// Storage metrics
var (
	// StorageErrors counts storage operation errors.
	StorageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "errors_total",
			Help:      "Total storage operation errors",
		},
		[]string{"operation", "backend"},
	)
)

// Report metrics
var (
	// ReportsGeneratedTotal counts generated reports by type.
	ReportsGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reports",
			Name:      "generated_total",
			Help:      "Total reports generated",
		},
		[]string{"type"},
	)
)
