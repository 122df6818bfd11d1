// Package metrics provides Prometheus metrics for dairytrack-go services.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DairyMetrics contains Prometheus metrics for sheet ingestion and
// refresh-cycle operations.
type DairyMetrics struct {
	registry *prometheus.Registry

	// Sheet source fetch metrics
	sheetFetchesTotal     *prometheus.CounterVec
	sheetFetchErrorsTotal *prometheus.CounterVec
	sheetFetchDuration    *prometheus.HistogramVec

	// Snapshot cache metrics
	cacheHitsTotal   *prometheus.CounterVec
	cacheMissesTotal *prometheus.CounterVec

	// Refresh cycle metrics
	refreshTotal    *prometheus.CounterVec
	refreshDuration prometheus.Histogram

	// Completeness audit metrics
	gapsFound *prometheus.GaugeVec
}

// NewDairyMetrics creates and registers new dairy metrics
func NewDairyMetrics(registry *prometheus.Registry) (*DairyMetrics, error) {
	m := &DairyMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *DairyMetrics) initMetrics() {
	m.sheetFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheet_fetches_total",
			Help: "Total number of sheet fetch operations",
		},
		[]string{"source", "status"}, // status: success, error
	)

	m.sheetFetchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheet_fetch_errors_total",
			Help: "Total number of sheet fetch errors",
		},
		[]string{"source", "error_type"},
	)

	m.sheetFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sheet_fetch_duration_seconds",
			Help:    "Duration of sheet fetch operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	m.cacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheet_cache_hits_total",
			Help: "Total number of snapshot cache hits",
		},
		[]string{"source"},
	)

	m.cacheMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheet_cache_misses_total",
			Help: "Total number of snapshot cache misses",
		},
		[]string{"source"},
	)

	m.refreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refresh_cycles_total",
			Help: "Total number of refresh cycles",
		},
		[]string{"status"}, // status: success, degraded
	)

	m.refreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "refresh_cycle_duration_seconds",
			Help:    "Duration of a full refresh cycle",
			Buckets: prometheus.DefBuckets,
		},
	)

	m.gapsFound = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "audit_gaps_found",
			Help: "Number of missing expected records found by the last audit",
		},
		[]string{"kind"},
	)
}

// Describe implements the prometheus.Collector interface
func (m *DairyMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.sheetFetchesTotal.Describe(ch)
	m.sheetFetchErrorsTotal.Describe(ch)
	m.sheetFetchDuration.Describe(ch)
	m.cacheHitsTotal.Describe(ch)
	m.cacheMissesTotal.Describe(ch)
	m.refreshTotal.Describe(ch)
	m.refreshDuration.Describe(ch)
	m.gapsFound.Describe(ch)
}

// Collect implements the prometheus.Collector interface
func (m *DairyMetrics) Collect(ch chan<- prometheus.Metric) {
	m.sheetFetchesTotal.Collect(ch)
	m.sheetFetchErrorsTotal.Collect(ch)
	m.sheetFetchDuration.Collect(ch)
	m.cacheHitsTotal.Collect(ch)
	m.cacheMissesTotal.Collect(ch)
	m.refreshTotal.Collect(ch)
	m.refreshDuration.Collect(ch)
	m.gapsFound.Collect(ch)
}

// RecordSheetFetch records a sheet fetch operation
func (m *DairyMetrics) RecordSheetFetch(source, status string) {
	if m == nil {
		return
	}
	m.sheetFetchesTotal.WithLabelValues(source, status).Inc()
}

// RecordSheetFetchError records a sheet fetch error
func (m *DairyMetrics) RecordSheetFetchError(source, errorType string) {
	if m == nil {
		return
	}
	m.sheetFetchErrorsTotal.WithLabelValues(source, errorType).Inc()
}

// RecordSheetFetchDuration records the duration of a sheet fetch
func (m *DairyMetrics) RecordSheetFetchDuration(source string, d time.Duration) {
	if m == nil {
		return
	}
	m.sheetFetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

// RecordCacheHit records a snapshot cache hit
func (m *DairyMetrics) RecordCacheHit(source string) {
	if m == nil {
		return
	}
	m.cacheHitsTotal.WithLabelValues(source).Inc()
}

// RecordCacheMiss records a snapshot cache miss
func (m *DairyMetrics) RecordCacheMiss(source string) {
	if m == nil {
		return
	}
	m.cacheMissesTotal.WithLabelValues(source).Inc()
}

// RecordRefresh records a completed refresh cycle
func (m *DairyMetrics) RecordRefresh(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.refreshTotal.WithLabelValues(status).Inc()
	m.refreshDuration.Observe(d.Seconds())
}

// RecordGapsFound records the gap counts of the last audit
func (m *DairyMetrics) RecordGapsFound(kind string, count int) {
	if m == nil {
		return
	}
	m.gapsFound.WithLabelValues(kind).Set(float64(count))
}
