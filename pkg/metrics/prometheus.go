// Package metrics provides Prometheus metrics for the court quotation service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Quotation totals are currency amounts, not latencies.
var defaultAmountBuckets = prometheus.ExponentialBuckets(10_000, 2.5, 10) //nolint:gochecknoglobals // immutable bucket layout

// Manager manages all Prometheus metrics for the quotation service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	amountBuckets    []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Core business metrics
	quotationsCreated  prometheus.Counter
	quotationAmount    prometheus.Histogram
	validationFailures *prometheus.CounterVec
	numberingRetries   prometheus.Counter
	idempotentReplays  prometheus.Counter
	estimateLatency    prometheus.Histogram
	storedQuotations   prometheus.Gauge

	// Persistence metrics
	persistenceLatency  *prometheus.HistogramVec
	persistenceFailures *prometheus.CounterVec

	// Rendering metrics
	renderLatency     *prometheus.HistogramVec
	renderErrors      *prometheus.CounterVec
	documentCacheSize prometheus.Gauge

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue metrics
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker metrics
	workerActiveCount       prometheus.Gauge
	workerMessagesPerSecond prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System performance metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "courtquote",
		subsystem:        "quotations",
		histogramBuckets: prometheus.DefBuckets,
		amountBuckets:    defaultAmountBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
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
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	counter := func(name, help string) prometheus.Counter {
		return auto.NewCounter(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: labels,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return auto.NewGauge(prometheus.GaugeOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: labels,
		})
	}
	histogram := func(name, help string, buckets []float64) prometheus.Histogram {
		return auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: labels, Buckets: buckets,
		})
	}
	counterVec := func(name, help string, keys ...string) *prometheus.CounterVec {
		return auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: labels,
		}, keys)
	}
	histogramVec := func(name, help string, buckets []float64, keys ...string) *prometheus.HistogramVec {
		return auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: labels, Buckets: buckets,
		}, keys)
	}

	// Core business metrics
	m.quotationsCreated = counter("created_total", "Total number of quotations persisted")
	m.quotationAmount = histogram("total_cost", "Distribution of quotation total cost", m.amountBuckets)
	m.validationFailures = counterVec("validation_failures_total", "Rejected submissions by validation kind", "kind")
	m.numberingRetries = counter("numbering_retries_total", "Quotation number collisions that triggered a retry")
	m.idempotentReplays = counter("idempotent_replays_total", "Submissions answered from the idempotency cache")
	m.estimateLatency = histogram("estimate_latency_milliseconds", "Histogram of estimation latency in milliseconds", m.histogramBuckets)
	m.storedQuotations = gauge("stored", "Number of quotations held by the store")

	// Persistence metrics
	m.persistenceLatency = histogramVec("persistence_latency_milliseconds", "Store call latency in milliseconds", m.histogramBuckets, "op")
	m.persistenceFailures = counterVec("persistence_failures_total", "Store calls that failed or timed out", "op")

	// Rendering metrics
	m.renderLatency = histogramVec("render_latency_milliseconds", "Document render latency in milliseconds", m.histogramBuckets, "format")
	m.renderErrors = counterVec("render_errors_total", "Document render failures", "format")
	m.documentCacheSize = gauge("document_cache_size", "Rendered documents held in memory")

	// HTTP performance metrics
	m.httpRequests = counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets, "endpoint", "method", "status_code")

	// Queue metrics
	m.queueSize = gauge("queue_size", "Current number of pending render jobs")
	m.queueCapacity = gauge("queue_capacity", "Maximum capacity of the render queue")
	m.queueUtilization = gauge("queue_utilization_ratio", "Render queue utilization ratio (size / capacity)")
	m.queueEnqueueRate = counter("queue_enqueue_total", "Total number of render jobs enqueued")
	m.queueDequeueRate = counter("queue_dequeue_total", "Total number of render jobs dequeued")
	m.queueEnqueueErrors = counter("queue_enqueue_errors_total", "Render jobs dropped on enqueue")
	m.queueProcessingLatency = histogram("queue_processing_latency_milliseconds", "Enqueue latency in milliseconds", m.histogramBuckets)

	// Worker metrics
	m.workerActiveCount = gauge("worker_active_count", "Number of render workers")
	m.workerMessagesPerSecond = gauge("worker_messages_per_second", "Average render jobs processed per second")
	m.workerProcessingLatency = histogram("worker_processing_latency_milliseconds", "Render job processing latency in milliseconds", m.histogramBuckets)
	m.workerErrorRate = counter("worker_errors_total", "Render jobs that failed")

	// Error metrics
	m.errorRateByComponent = counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorRateByType = counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = counterVec("errors_by_endpoint_total", "Errors by endpoint", "endpoint", "method", "error_type")
	m.errorLatency = histogramVec("error_latency_milliseconds", "Latency of operations that failed", m.histogramBuckets, "component", "error_type")

	// System performance metrics
	m.systemMemoryUsage = gauge("system_memory_bytes", "Allocated heap memory in bytes")
	m.systemGoroutineCount = gauge("system_goroutines", "Number of goroutines")
	m.systemGCPauseTime = histogram("system_gc_pause_milliseconds", "Average GC pause in milliseconds", m.histogramBuckets)
}

// Business Metrics Functions.

// RecordQuotationCreated counts a persisted quotation and observes its total.
func RecordQuotationCreated(totalCost float64) {
	globalManager.quotationsCreated.Inc()
	globalManager.quotationAmount.Observe(totalCost)
}

// RecordValidationFailure counts a rejected submission.
func RecordValidationFailure(kind string) {
	globalManager.validationFailures.WithLabelValues(kind).Inc()
}

// RecordNumberingRetry counts a duplicate-number retry.
func RecordNumberingRetry() {
	globalManager.numberingRetries.Inc()
}

// RecordIdempotentReplay counts a submission served from the idempotency cache.
func RecordIdempotentReplay() {
	globalManager.idempotentReplays.Inc()
}

// RecordEstimateLatency records estimation latency.
func RecordEstimateLatency(latencyMs float64) {
	globalManager.estimateLatency.Observe(latencyMs)
}

// UpdateStoredQuotations sets the stored quotation gauge.
func UpdateStoredQuotations(count int) {
	globalManager.storedQuotations.Set(float64(count))
}

// Persistence Metrics Functions.

// RecordPersistenceLatency records the latency of a store call.
func RecordPersistenceLatency(op string, latencyMs float64) {
	globalManager.persistenceLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordPersistenceFailure counts a failed store call.
func RecordPersistenceFailure(op string) {
	globalManager.persistenceFailures.WithLabelValues(op).Inc()
}

// Rendering Metrics Functions.

// RecordRenderLatency records how long a document took to render.
func RecordRenderLatency(format string, latencyMs float64) {
	globalManager.renderLatency.WithLabelValues(format).Observe(latencyMs)
}

// RecordRenderError counts a failed render.
func RecordRenderError(format string) {
	globalManager.renderErrors.WithLabelValues(format).Inc()
}

// UpdateDocumentCacheSize sets the cached document gauge.
func UpdateDocumentCacheSize(size int) {
	globalManager.documentCacheSize.Set(float64(size))
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records queue processing latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker Metrics Functions.

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// UpdateWorkerMessagesPerSecond sets the average jobs processed per second.
func UpdateWorkerMessagesPerSecond(rate float64) {
	globalManager.workerMessagesPerSecond.Set(rate)
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry the global manager writes to.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
