// Package metrics provides Prometheus metrics for the reelrank service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query outcome labels.
const (
	OutcomeOK         = "ok"
	OutcomeEmpty      = "empty"
	OutcomeNoMatch    = "no_preference"
	OutcomeBadRequest = "bad_request"
	OutcomeError      = "error"
)

// Loader record status labels.
const (
	StatusLoaded  = "loaded"
	StatusSkipped = "skipped"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Engine queries
	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	resultSize    *prometheus.HistogramVec

	// Snapshot contents
	snapshotMovies      prometheus.Gauge
	snapshotRatedMovies prometheus.Gauge
	snapshotRatings     prometheus.Gauge
	snapshotRaters      prometheus.Gauge
	snapshotReloads     *prometheus.CounterVec
	snapshotLastUnix    prometheus.Gauge

	// Loader
	loaderRecords  *prometheus.CounterVec
	loaderDuration *prometheus.HistogramVec

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
		namespace:        "reelrank",
		subsystem:        "engine",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000},
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	auto := promauto.With(m.registry)

	m.queries = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queries_total",
		Help:      "Engine queries by operation and outcome",
	}, []string{"operation", "outcome"})

	m.queryDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "query_duration_milliseconds",
		Help:      "Engine query latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"operation"})

	m.resultSize = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "query_result_size",
		Help:      "Number of entries returned per query",
		Buckets:   []float64{0, 1, 3, 5, 10, 25, 50, 100},
	}, []string{"operation"})

	m.snapshotMovies = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_catalog_movies",
		Help:      "Movies in the current catalog",
	})

	m.snapshotRatedMovies = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_rated_movies",
		Help:      "Distinct movies in the current rating log",
	})

	m.snapshotRatings = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_rating_events",
		Help:      "Rating events in the current rating log",
	})

	m.snapshotRaters = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_raters",
		Help:      "Distinct raters in the current rating log",
	})

	m.snapshotReloads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_reloads_total",
		Help:      "Snapshot replacements by result",
	}, []string{"result"})

	m.snapshotLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_last_loaded_unixtime",
		Help:      "Unix time of the last snapshot replacement",
	})

	m.loaderRecords = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "loader_records_total",
		Help:      "Records read by the loader, by kind and status",
	}, []string{"kind", "status"})

	m.loaderDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "loader_duration_milliseconds",
		Help:      "Time to read one record source in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"kind"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_total",
		Help:      "Errors by component and type",
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
}

// RecordQuery records one engine query with its outcome, latency and result size.
func (m *Manager) RecordQuery(operation, outcome string, latencyMs float64, size int) {
	if !m.enabled {
		return
	}
	m.queries.WithLabelValues(operation, outcome).Inc()
	m.queryDuration.WithLabelValues(operation).Observe(latencyMs)
	if outcome == OutcomeOK || outcome == OutcomeEmpty {
		m.resultSize.WithLabelValues(operation).Observe(float64(size))
	}
}

// UpdateSnapshot publishes the size of the current snapshot.
func (m *Manager) UpdateSnapshot(movies, ratedMovies, ratings, raters int, loadedUnix int64) {
	if !m.enabled {
		return
	}
	m.snapshotMovies.Set(float64(movies))
	m.snapshotRatedMovies.Set(float64(ratedMovies))
	m.snapshotRatings.Set(float64(ratings))
	m.snapshotRaters.Set(float64(raters))
	m.snapshotLastUnix.Set(float64(loadedUnix))
}

// RecordReload counts a snapshot replacement attempt.
func (m *Manager) RecordReload(result string) {
	if !m.enabled {
		return
	}
	m.snapshotReloads.WithLabelValues(result).Inc()
}

// RecordLoad records the outcome of reading one record source.
func (m *Manager) RecordLoad(kind string, loaded, skipped int, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.loaderRecords.WithLabelValues(kind, StatusLoaded).Add(float64(loaded))
	m.loaderRecords.WithLabelValues(kind, StatusSkipped).Add(float64(skipped))
	m.loaderDuration.WithLabelValues(kind).Observe(latencyMs)
}

// RecordHTTPRequest records one HTTP request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordError counts an error attributed to component.
func (m *Manager) RecordError(component, errorType string) {
	if !m.enabled {
		return
	}
	m.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystem publishes process memory and goroutine counts.
func (m *Manager) UpdateSystem(memoryBytes uint64, goroutines int) {
	if !m.enabled {
		return
	}
	m.systemMemoryUsage.Set(float64(memoryBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
}

// RecordQuery records a query on the global manager.
func RecordQuery(operation, outcome string, latencyMs float64, size int) {
	globalManager.RecordQuery(operation, outcome, latencyMs, size)
}

// UpdateSnapshot publishes snapshot sizes on the global manager.
func UpdateSnapshot(movies, ratedMovies, ratings, raters int, loadedUnix int64) {
	globalManager.UpdateSnapshot(movies, ratedMovies, ratings, raters, loadedUnix)
}

// RecordReload counts a reload on the global manager.
func RecordReload(result string) {
	globalManager.RecordReload(result)
}

// RecordLoad records a loader pass on the global manager.
func RecordLoad(kind string, loaded, skipped int, latencyMs float64) {
	globalManager.RecordLoad(kind, loaded, skipped, latencyMs)
}

// RecordHTTPRequest records an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordError counts an error on the global manager.
func RecordError(component, errorType string) {
	globalManager.RecordError(component, errorType)
}

// UpdateSystem publishes system metrics on the global manager.
func UpdateSystem(memoryBytes uint64, goroutines int) {
	globalManager.UpdateSystem(memoryBytes, goroutines)
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
