// Package metrics provides Prometheus metrics for the pulse training engine.
package metrics

import (
	"fmt"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	durationBuckets  []float64
	registry         prometheus.Registerer

	// Scoring and profiling
	normalizations       *prometheus.CounterVec
	measurementsRejected *prometheus.CounterVec
	profilesBuilt        prometheus.Counter
	profilesInsufficient prometheus.Counter

	// Composition
	sessionsComposed    prometheus.Counter
	compositionFailures *prometheus.CounterVec
	composedDuration    prometheus.Histogram

	// Playback
	playbackTransitions *prometheus.CounterVec
	sessionsCompleted   prometheus.Counter
	sessionsAbandoned   prometheus.Counter

	// Persistence
	recordsSaved       prometheus.Counter
	recordSaveFailures prometheus.Counter
	recordSaveRetries  prometheus.Counter
	recordsPending     prometheus.Gauge

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueue       prometheus.Counter
	queueDequeue       prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
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
		namespace:        "pulse",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		durationBuckets:  []float64{300, 600, 900, 1200, 1800, 2700, 3600, 5400},
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

//nolint:funlen // one place for every metric definition
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.normalizations = m.counterVec("normalizations_total",
		"Raw measurements converted to scores, by test type", "test_type")
	m.measurementsRejected = m.counterVec("measurements_rejected_total",
		"Raw measurements rejected as out of range, by test type", "test_type")
	m.profilesBuilt = m.counter("profiles_built_total", "Weakness profiles built")
	m.profilesInsufficient = m.counter("profiles_insufficient_total",
		"Profile builds that lacked enough distinct test types")

	m.sessionsComposed = m.counter("sessions_composed_total", "Training sessions composed")
	m.compositionFailures = m.counterVec("composition_failures_total",
		"Compositions that failed, by reason", "reason")
	m.composedDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "composed_duration_seconds",
		Help:      "Total duration of composed sessions in seconds",
		Buckets:   m.durationBuckets,
	})

	m.playbackTransitions = m.counterVec("playback_transitions_total",
		"Playback phase transitions, by target phase", "phase")
	m.sessionsCompleted = m.counter("sessions_completed_total", "Sessions played to completion")
	m.sessionsAbandoned = m.counter("sessions_abandoned_total", "Sessions cancelled before completion")

	m.recordsSaved = m.counter("records_saved_total", "Workout records persisted")
	m.recordSaveFailures = m.counter("record_save_failures_total", "Failed workout record saves")
	m.recordSaveRetries = m.counter("record_save_retries_total", "Workout record save retries")
	m.recordsPending = m.gauge("records_pending", "Workout records parked waiting for a successful save")

	m.queueSize = m.gauge("queue_size", "Current size of the record queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum capacity of the record queue")
	m.queueEnqueue = m.counter("queue_enqueue_total", "Records enqueued")
	m.queueDequeue = m.counter("queue_dequeue_total", "Records dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Failed enqueue attempts")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_by_component_total",
		"Errors by component and type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
}

// RecordNormalization increments the normalization counter for a test type.
func RecordNormalization(testType string) {
	globalManager.normalizations.WithLabelValues(testType).Inc()
}

// RecordMeasurementRejected increments the out-of-range counter for a test type.
func RecordMeasurementRejected(testType string) {
	globalManager.measurementsRejected.WithLabelValues(testType).Inc()
}

// RecordProfileBuilt increments the profiles built counter.
func RecordProfileBuilt() {
	globalManager.profilesBuilt.Inc()
}

// RecordProfileInsufficient increments the insufficient data counter.
func RecordProfileInsufficient() {
	globalManager.profilesInsufficient.Inc()
}

// RecordSessionComposed counts a composed session and observes its duration.
func RecordSessionComposed(totalSeconds float64) {
	globalManager.sessionsComposed.Inc()
	globalManager.composedDuration.Observe(totalSeconds)
}

// RecordCompositionFailure increments the composition failure counter.
func RecordCompositionFailure(reason string) {
	globalManager.compositionFailures.WithLabelValues(reason).Inc()
}

// RecordPlaybackTransition increments the transition counter for the entered phase.
func RecordPlaybackTransition(phase string) {
	globalManager.playbackTransitions.WithLabelValues(phase).Inc()
}

// RecordSessionCompleted increments the completed sessions counter.
func RecordSessionCompleted() {
	globalManager.sessionsCompleted.Inc()
}

// RecordSessionAbandoned increments the abandoned sessions counter.
func RecordSessionAbandoned() {
	globalManager.sessionsAbandoned.Inc()
}

// RecordRecordSaved increments the saved records counter.
func RecordRecordSaved() {
	globalManager.recordsSaved.Inc()
}

// RecordSaveFailure increments the save failure counter.
func RecordSaveFailure() {
	globalManager.recordSaveFailures.Inc()
}

// RecordSaveRetry increments the save retry counter.
func RecordSaveRetry() {
	globalManager.recordSaveRetries.Inc()
}

// UpdateRecordsPending sets the number of parked records.
func UpdateRecordsPending(count int) {
	globalManager.recordsPending.Set(float64(count))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueue.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeue.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemStats samples heap usage and goroutine count.
func UpdateSystemStats() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	globalManager.systemMemoryUsage.Set(float64(ms.HeapInuse))
	globalManager.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Families returns the names of every metric family currently gathered.
func Families() ([]string, error) {
	mfs, err := customRegistry.Gather()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGatherFailed, err)
	}
	names := make([]string, 0, len(mfs))
	for _, mf := range mfs {
		names = append(names, mf.GetName())
	}
	return names, nil
}
