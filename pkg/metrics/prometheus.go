// Package metrics provides Prometheus metrics for the onboarding portal client.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upload outcomes used as the "outcome" label.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Manager owns every Prometheus collector the client records into.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Backend API traffic
	apiRequests        *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec
	transportErrors    *prometheus.CounterVec
	sessionTeardowns   prometheus.Counter

	// Uploads
	uploads              *prometheus.CounterVec
	uploadBytes          prometheus.Counter
	validationRejections *prometheus.CounterVec
	uploadsInFlight      prometheus.Gauge

	// Client state
	reconcileRuns     *prometheus.CounterVec
	droppedInstances  *prometheus.CounterVec
	completionPercent *prometheus.GaugeVec
	overdueItems      *prometheus.GaugeVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "onboard",
		subsystem:        "client",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.apiRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("api_requests_total"),
			Help:        "Backend API requests by endpoint template, method and status code",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.apiRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("api_request_duration_milliseconds"),
			Help:        "Backend API round-trip time in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.transportErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("api_transport_errors_total"),
			Help:        "Requests that failed before a response was received (timeouts, refused connections)",
			ConstLabels: labels,
		},
		[]string{"endpoint"},
	)

	m.sessionTeardowns = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("session_teardowns_total"),
		Help:        "Sessions cleared after the backend answered 401",
		ConstLabels: labels,
	})

	m.uploads = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("uploads_total"),
			Help:        "Document uploads by outcome",
			ConstLabels: labels,
		},
		[]string{"outcome"},
	)

	m.uploadBytes = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("upload_bytes_total"),
		Help:        "Bytes sent in accepted document uploads",
		ConstLabels: labels,
	})

	m.validationRejections = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("upload_validation_rejections_total"),
			Help:        "Files rejected locally before any network call",
			ConstLabels: labels,
		},
		[]string{"reason"},
	)

	m.uploadsInFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("uploads_in_flight"),
		Help:        "Uploads currently being sent",
		ConstLabels: labels,
	})

	m.reconcileRuns = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("reconcile_runs_total"),
			Help:        "View-model rebuilds by domain",
			ConstLabels: labels,
		},
		[]string{"domain"},
	)

	m.droppedInstances = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("reconcile_dropped_instances_total"),
			Help:        "Instances dropped because their template is not in the template list",
			ConstLabels: labels,
		},
		[]string{"domain"},
	)

	m.completionPercent = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("completion_percentage"),
			Help:        "Completion percentage of the candidate's onboarding by domain",
			ConstLabels: labels,
		},
		[]string{"domain"},
	)

	m.overdueItems = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("overdue_items"),
			Help:        "Non-completed items past their due date by domain",
			ConstLabels: labels,
		},
		[]string{"domain"},
	)
}

// RecordAPIRequest records one backend round trip.
func (m *Manager) RecordAPIRequest(endpoint, method string, statusCode int, durationMs float64) {
	if !m.enabled {
		return
	}
	code := strconv.Itoa(statusCode)
	m.apiRequests.WithLabelValues(endpoint, method, code).Inc()
	m.apiRequestDuration.WithLabelValues(endpoint, method, code).Observe(durationMs)
}

// RecordTransportError records a request that never produced a response.
func (m *Manager) RecordTransportError(endpoint string) {
	if !m.enabled {
		return
	}
	m.transportErrors.WithLabelValues(endpoint).Inc()
}

// RecordSessionTeardown counts a forced logout.
func (m *Manager) RecordSessionTeardown() {
	if !m.enabled {
		return
	}
	m.sessionTeardowns.Inc()
}

// RecordUpload counts a finished upload and, on success, its size.
func (m *Manager) RecordUpload(outcome string, bytes int64) {
	if !m.enabled {
		return
	}
	m.uploads.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess && bytes > 0 {
		m.uploadBytes.Add(float64(bytes))
	}
}

// RecordValidationRejection counts a file refused before upload.
func (m *Manager) RecordValidationRejection(reason string) {
	if !m.enabled {
		return
	}
	m.validationRejections.WithLabelValues(reason).Inc()
	m.uploads.WithLabelValues(OutcomeRejected).Inc()
}

// AddUploadsInFlight moves the in-flight gauge by delta.
func (m *Manager) AddUploadsInFlight(delta int) {
	if !m.enabled {
		return
	}
	m.uploadsInFlight.Add(float64(delta))
}

// RecordReconcile counts a rebuild and the instances it dropped.
func (m *Manager) RecordReconcile(domain string, dropped int) {
	if !m.enabled {
		return
	}
	m.reconcileRuns.WithLabelValues(domain).Inc()
	if dropped > 0 {
		m.droppedInstances.WithLabelValues(domain).Add(float64(dropped))
	}
}

// UpdateProgress publishes a domain's completion and overdue gauges.
func (m *Manager) UpdateProgress(domain string, completionPercentage, overdue int) {
	if !m.enabled {
		return
	}
	m.completionPercent.WithLabelValues(domain).Set(float64(completionPercentage))
	m.overdueItems.WithLabelValues(domain).Set(float64(overdue))
}

// Global helpers delegate to the package manager.

// RecordAPIRequest records one backend round trip.
func RecordAPIRequest(endpoint, method string, statusCode int, durationMs float64) {
	globalManager.RecordAPIRequest(endpoint, method, statusCode, durationMs)
}

// RecordTransportError records a request that never produced a response.
func RecordTransportError(endpoint string) { globalManager.RecordTransportError(endpoint) }

// RecordSessionTeardown counts a forced logout.
func RecordSessionTeardown() { globalManager.RecordSessionTeardown() }

// RecordUpload counts a finished upload.
func RecordUpload(outcome string, bytes int64) { globalManager.RecordUpload(outcome, bytes) }

// RecordValidationRejection counts a file refused before upload.
func RecordValidationRejection(reason string) { globalManager.RecordValidationRejection(reason) }

// AddUploadsInFlight moves the in-flight gauge by delta.
func AddUploadsInFlight(delta int) { globalManager.AddUploadsInFlight(delta) }

// RecordReconcile counts a rebuild and the instances it dropped.
func RecordReconcile(domain string, dropped int) { globalManager.RecordReconcile(domain, dropped) }

// UpdateProgress publishes a domain's completion and overdue gauges.
func UpdateProgress(domain string, completionPercentage, overdue int) {
	globalManager.UpdateProgress(domain, completionPercentage, overdue)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Handler serves the custom registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}
