package metrics

import (
	"collectionbuilder/querybuilder/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CacheMetrics tracks cache performance metrics.
//
// Metrics:
//   - querybuilder_cache_hits_total: Total cache hits by cache name
//   - querybuilder_cache_misses_total: Total cache misses by cache name
//   - querybuilder_cache_entries: Current number of entries in cache
//   - querybuilder_cache_invalidations_total: Entries dropped after a write or file change
type CacheMetrics struct {
	hitsTotal          *prometheus.CounterVec
	missesTotal        *prometheus.CounterVec
	entries            *prometheus.GaugeVec
	invalidationsTotal *prometheus.CounterVec
}

// NewCacheMetrics creates and registers cache metrics with the provided registry.
func NewCacheMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CacheMetrics {
	cm := &CacheMetrics{
		hitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "cache",
				Name:      "hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"cache"},
		),

		missesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "cache",
				Name:      "misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"cache"},
		),

		entries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "cache",
				Name:      "entries",
				Help:      "Current number of entries in cache",
			},
			[]string{"cache"},
		),

		invalidationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "cache",
				Name:      "invalidations_total",
				Help:      "Total number of cache invalidations",
			},
			[]string{"cache"},
		),
	}

	registry.MustRegister(
		cm.hitsTotal,
		cm.missesTotal,
		cm.entries,
		cm.invalidationsTotal,
	)

	return cm
}

// RecordHit records a cache hit.
func (cm *CacheMetrics) RecordHit(cacheName string) {
	cm.hitsTotal.WithLabelValues(cacheName).Inc()
}

// RecordMiss records a cache miss.
func (cm *CacheMetrics) RecordMiss(cacheName string) {
	cm.missesTotal.WithLabelValues(cacheName).Inc()
}

// UpdateSize updates the current size of a cache.
func (cm *CacheMetrics) UpdateSize(cacheName string, size int) {
	cm.entries.WithLabelValues(cacheName).Set(float64(size))
}

// RecordInvalidation records an invalidated entry.
func (cm *CacheMetrics) RecordInvalidation(cacheName string) {
	cm.invalidationsTotal.WithLabelValues(cacheName).Inc()
}
