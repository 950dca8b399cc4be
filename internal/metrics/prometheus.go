// Package metrics provides Prometheus metrics for the stokvel engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager holds all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Ledger metrics
	contributionsRecorded prometheus.Counter
	validationRejections  *prometheus.CounterVec
	goalsCompleted        prometheus.Counter

	// Export metrics
	exportRowsAppended prometheus.Counter
	exportErrors       prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry()

func init() {
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "stokvel",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.contributionsRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "contributions_recorded_total",
		Help:      "Total number of contributions successfully recorded",
	})

	m.validationRejections = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "validation_rejections_total",
		Help:      "Total number of contributions rejected by validation, by reason",
	}, []string{"reason"})

	m.goalsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "goals_completed_total",
		Help:      "Total number of goals marked completed",
	})

	m.exportRowsAppended = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "export_rows_appended_total",
		Help:      "Total number of rows appended to the export sink",
	})

	m.exportErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "export_errors_total",
		Help:      "Total number of export sink failures",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by method, path and status",
	}, []string{"method", "path", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "Histogram of HTTP request durations in seconds",
		Buckets:   m.histogramBuckets,
	}, []string{"method", "path"})
}

// Handler returns an HTTP handler that serves the manager's registry.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Manager) RecordContribution() {
	m.contributionsRecorded.Inc()
}

func (m *Manager) RecordValidationRejection(reason string) {
	m.validationRejections.WithLabelValues(reason).Inc()
}

func (m *Manager) RecordGoalCompleted() {
	m.goalsCompleted.Inc()
}

func (m *Manager) RecordExportRow() {
	m.exportRowsAppended.Inc()
}

func (m *Manager) RecordExportError() {
	m.exportErrors.Inc()
}

func (m *Manager) RecordHTTPRequest(method, path, status string) {
	m.httpRequests.WithLabelValues(method, path, status).Inc()
}

func (m *Manager) RecordHTTPDuration(method, path string, d time.Duration) {
	m.httpRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// Package-level helpers recording on the global manager.

func RecordContribution()                      { globalManager.RecordContribution() }
func RecordValidationRejection(reason string)  { globalManager.RecordValidationRejection(reason) }
func RecordGoalCompleted()                     { globalManager.RecordGoalCompleted() }
func RecordExportRow()                         { globalManager.RecordExportRow() }
func RecordExportError()                       { globalManager.RecordExportError() }
func RecordHTTPRequest(method, path, s string) { globalManager.RecordHTTPRequest(method, path, s) }
func RecordHTTPDuration(method, path string, d time.Duration) {
	globalManager.RecordHTTPDuration(method, path, d)
}

// Handler serves the global registry.
func Handler() http.Handler { return globalManager.Handler() }
