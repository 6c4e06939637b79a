package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics records cache effectiveness and spreadsheet round-trips.
type StoreMetrics struct {
	cacheHits    *prometheus.CounterVec
	cacheMisses  *prometheus.CounterVec
	fetchSeconds *prometheus.HistogramVec
	fetchErrors  *prometheus.CounterVec
}

// NewStoreMetrics registers the data-access metrics on the provided registerer.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	hits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sheet_cache_hits_total",
		Help: "Reads served from the in-process cache.",
	}, []string{"key"})
	misses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sheet_cache_misses_total",
		Help: "Reads that fell through to the spreadsheet.",
	}, []string{"key"})
	fetch := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sheet_fetch_duration_seconds",
		Help:    "Duration of spreadsheet round-trips in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"worksheet", "op"})
	fetchErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sheet_fetch_errors_total",
		Help: "Failed spreadsheet round-trips.",
	}, []string{"worksheet", "op"})
	reg.MustRegister(hits, misses, fetch, fetchErrors)
	return &StoreMetrics{
		cacheHits:    hits,
		cacheMisses:  misses,
		fetchSeconds: fetch,
		fetchErrors:  fetchErrors,
	}
}

// IncCacheHit increments the hit counter for the given cache key.
func (m *StoreMetrics) IncCacheHit(key string) {
	if m == nil || m.cacheHits == nil {
		return
	}
	m.cacheHits.WithLabelValues(normalizeLabel(key)).Inc()
}

// IncCacheMiss increments the miss counter for the given cache key.
func (m *StoreMetrics) IncCacheMiss(key string) {
	if m == nil || m.cacheMisses == nil {
		return
	}
	m.cacheMisses.WithLabelValues(normalizeLabel(key)).Inc()
}

// ObserveFetch records the duration of one spreadsheet operation.
func (m *StoreMetrics) ObserveFetch(worksheet, op string, duration time.Duration) {
	if m == nil || m.fetchSeconds == nil {
		return
	}
	m.fetchSeconds.WithLabelValues(normalizeLabel(worksheet), normalizeLabel(op)).Observe(duration.Seconds())
}

// IncFetchError counts one failed spreadsheet operation.
func (m *StoreMetrics) IncFetchError(worksheet, op string) {
	if m == nil || m.fetchErrors == nil {
		return
	}
	m.fetchErrors.WithLabelValues(normalizeLabel(worksheet), normalizeLabel(op)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
