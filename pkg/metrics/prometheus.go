// Package metrics provides Prometheus metrics for the DevX Battle service.
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

// Manager manages all Prometheus metrics for the battle service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Battle flow
	battlesTotal      *prometheus.CounterVec
	battleDuration    *prometheus.HistogramVec
	parseMismatches   *prometheus.CounterVec
	battleScoreSpread prometheus.Histogram

	// Upstream fetchers
	fetchLatency  *prometheus.HistogramVec
	fetchFailures *prometheus.CounterVec

	// Narrative generator
	generationLatency  *prometheus.HistogramVec
	generationFailures *prometheus.CounterVec

	// User store and object storage
	storeOperations *prometheus.CounterVec
	storeErrors     *prometheus.CounterVec
	sbtUploads      prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "devx",
		subsystem:        "battle",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.battlesTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "battles_total",
		Help:        "Battles resolved, by mode and outcome (completed, degraded, failed)",
		ConstLabels: labels,
	}, []string{"mode", "outcome"})

	m.battleDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "battle_duration_ms",
		Help:        "End-to-end battle resolution time in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"mode"})

	m.parseMismatches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "parse_mismatches_total",
		Help:        "Generated narratives whose result line did not match the expected convention",
		ConstLabels: labels,
	}, []string{"mode"})

	m.battleScoreSpread = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "score_spread",
		Help:        "Difference between winner and loser score",
		Buckets:     []float64{0, 5, 10, 20, 30, 50, 75, 100},
		ConstLabels: labels,
	})

	m.fetchLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "upstream",
		Name:        "fetch_latency_ms",
		Help:        "Latency of upstream data fetches in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"source"})

	m.fetchFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "upstream",
		Name:        "fetch_failures_total",
		Help:        "Failed upstream data fetches by source and kind",
		ConstLabels: labels,
	}, []string{"source", "kind"})

	m.generationLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "generator",
		Name:        "latency_ms",
		Help:        "Narrative generation latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"provider"})

	m.generationFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "generator",
		Name:        "failures_total",
		Help:        "Narrative generation failures by provider",
		ConstLabels: labels,
	}, []string{"provider"})

	m.storeOperations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "store",
		Name:        "operations_total",
		Help:        "User store operations by driver and operation",
		ConstLabels: labels,
	}, []string{"driver", "op"})

	m.storeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "store",
		Name:        "errors_total",
		Help:        "User store errors by driver and kind",
		ConstLabels: labels,
	}, []string{"driver", "kind"})

	m.sbtUploads = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "store",
		Name:        "sbt_uploads_total",
		Help:        "SBT metadata documents written to object storage",
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "requests_total",
		Help:        "Total number of HTTP requests",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "request_duration_ms",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "errors",
		Name:        "by_type_total",
		Help:        "Errors by type and severity",
		ConstLabels: labels,
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "errors",
		Name:        "by_endpoint_total",
		Help:        "Errors by endpoint",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "memory_usage_bytes",
		Help:        "Current heap allocation in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "goroutines",
		Help:        "Current number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "gc_pause_ms",
		Help:        "Average GC pause time in milliseconds",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50},
		ConstLabels: labels,
	})
}

// Manager methods. Disabled managers record nothing.

func (m *Manager) RecordBattle(mode, outcome string, duration time.Duration) {
	if !m.enabled {
		return
	}
	m.battlesTotal.WithLabelValues(mode, outcome).Inc()
	m.battleDuration.WithLabelValues(mode).Observe(float64(duration.Milliseconds()))
}

func (m *Manager) RecordParseMismatch(mode string) {
	if m.enabled {
		m.parseMismatches.WithLabelValues(mode).Inc()
	}
}

func (m *Manager) RecordScoreSpread(spread int) {
	if m.enabled {
		m.battleScoreSpread.Observe(float64(spread))
	}
}

func (m *Manager) RecordFetch(source string, latency time.Duration, failureKind string) {
	if !m.enabled {
		return
	}
	m.fetchLatency.WithLabelValues(source).Observe(float64(latency.Milliseconds()))
	if failureKind != "" {
		m.fetchFailures.WithLabelValues(source, failureKind).Inc()
	}
}

func (m *Manager) RecordGeneration(provider string, latency time.Duration, failed bool) {
	if !m.enabled {
		return
	}
	m.generationLatency.WithLabelValues(provider).Observe(float64(latency.Milliseconds()))
	if failed {
		m.generationFailures.WithLabelValues(provider).Inc()
	}
}

func (m *Manager) RecordStoreOperation(driver, op string) {
	if m.enabled {
		m.storeOperations.WithLabelValues(driver, op).Inc()
	}
}

func (m *Manager) RecordStoreError(driver, kind string) {
	if m.enabled {
		m.storeErrors.WithLabelValues(driver, kind).Inc()
	}
}

func (m *Manager) RecordSBTUpload() {
	if m.enabled {
		m.sbtUploads.Inc()
	}
}

func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

func (m *Manager) RecordError(endpoint, method, errorType, severity string) {
	if !m.enabled {
		return
	}
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

func (m *Manager) UpdateSystem(memBytes uint64, goroutines int, gcPauseMs float64) {
	if !m.enabled {
		return
	}
	m.systemMemoryUsage.Set(float64(memBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
	if gcPauseMs > 0 {
		m.systemGCPauseTime.Observe(gcPauseMs)
	}
}

// Package-level helpers over the global manager.

// RecordBattle counts a resolved battle and observes its duration.
func RecordBattle(mode, outcome string, duration time.Duration) {
	globalManager.RecordBattle(mode, outcome, duration)
}

// RecordParseMismatch counts a narrative whose header could not be parsed.
func RecordParseMismatch(mode string) { globalManager.RecordParseMismatch(mode) }

// RecordScoreSpread observes winnerScore - loserScore.
func RecordScoreSpread(spread int) { globalManager.RecordScoreSpread(spread) }

// RecordFetch observes an upstream fetch; failureKind is empty on success.
func RecordFetch(source string, latency time.Duration, failureKind string) {
	globalManager.RecordFetch(source, latency, failureKind)
}

// RecordGeneration observes a narrative generation call.
func RecordGeneration(provider string, latency time.Duration, failed bool) {
	globalManager.RecordGeneration(provider, latency, failed)
}

// RecordStoreOperation counts a user store call.
func RecordStoreOperation(driver, op string) { globalManager.RecordStoreOperation(driver, op) }

// RecordStoreError counts a failed user store call.
func RecordStoreError(driver, kind string) { globalManager.RecordStoreError(driver, kind) }

// RecordSBTUpload counts an SBT metadata upload.
func RecordSBTUpload() { globalManager.RecordSBTUpload() }

// RecordHTTPRequest counts an HTTP request and observes its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordError counts an HTTP error by endpoint and by type.
func RecordError(endpoint, method, errorType, severity string) {
	globalManager.RecordError(endpoint, method, errorType, severity)
}

// UpdateSystem refreshes process-level gauges.
func UpdateSystem(memBytes uint64, goroutines int, gcPauseMs float64) {
	globalManager.UpdateSystem(memBytes, goroutines, gcPauseMs)
}

// GetRegistry returns the registry served on /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RefreshInterval reports how often gauges should be refreshed.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}
