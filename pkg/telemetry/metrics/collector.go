package metrics

import (
	"fmt"
	"time"

	"collectionbuilder/querybuilder/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns every querybuilder metric and the registry they live in.
//
// A nil *Collector, or one built from a disabled config, records nothing, so
// components can hold one unconditionally.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	editorMetrics    *EditorMetrics
	storageMetrics   *StorageMetrics
	cacheMetrics     *CacheMetrics
	retentionMetrics *RetentionMetrics
}

// NewCollector creates a collector registering into registry. If registry is
// nil a fresh one is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true, Namespace: "querybuilder"}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}

	return &Collector{
		config:           cfg,
		registry:         registry,
		editorMetrics:    NewEditorMetrics(cfg, registry),
		storageMetrics:   NewStorageMetrics(cfg, registry),
		cacheMetrics:     NewCacheMetrics(cfg, registry),
		retentionMetrics: NewRetentionMetrics(cfg, registry),
	}
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordOperation records one editor operation applied to a named query.
//
// Parameters:
//   - operation: Operation name (e.g., "add-clause", "deprecate")
//   - result: "success", "rejected" (the edit did not apply) or "error"
//   - duration: Time spent loading, mutating and saving
//   - nodes: Node count of the tree afterwards
func (c *Collector) RecordOperation(operation, result string, duration time.Duration, nodes int) {
	if !c.enabled() {
		return
	}
	c.editorMetrics.RecordOperation(operation, result, duration, nodes)
}

// RecordSerialization records the length of a rendered query string.
func (c *Collector) RecordSerialization(length int) {
	if !c.enabled() {
		return
	}
	c.editorMetrics.RecordSerialization(length)
}

// RecordStorage records one backend call.
//
// Parameters:
//   - backend: Backend name ("memory", "file", "sqlite", "bolt")
//   - operation: "get", "put", "delete" or "list"
//   - result: "success", "not_found" or "error"
//   - duration: Call latency
func (c *Collector) RecordStorage(backend, operation, result string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.storageMetrics.RecordOperation(backend, operation, result, duration)
}

// UpdateStoredQueries sets the number of named queries held by a backend.
func (c *Collector) UpdateStoredQueries(backend string, count int) {
	if !c.enabled() {
		return
	}
	c.storageMetrics.UpdateStored(backend, count)
}

// RecordCacheHit records a cache hit.
func (c *Collector) RecordCacheHit(cacheName string) {
	if !c.enabled() {
		return
	}
	c.cacheMetrics.RecordHit(cacheName)
}

// RecordCacheMiss records a cache miss.
func (c *Collector) RecordCacheMiss(cacheName string) {
	if !c.enabled() {
		return
	}
	c.cacheMetrics.RecordMiss(cacheName)
}

// RecordCacheInvalidation records an entry dropped because its source changed.
func (c *Collector) RecordCacheInvalidation(cacheName string) {
	if !c.enabled() {
		return
	}
	c.cacheMetrics.RecordInvalidation(cacheName)
}

// UpdateCacheSize updates the current size of a cache.
func (c *Collector) UpdateCacheSize(cacheName string, size int) {
	if !c.enabled() {
		return
	}
	c.cacheMetrics.UpdateSize(cacheName, size)
}

// RecordPrune records one retention run.
func (c *Collector) RecordPrune(removed int, err error) {
	if !c.enabled() {
		return
	}
	c.retentionMetrics.RecordRun(removed, err)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// WriteTextfile writes every registered metric to path in the Prometheus text
// format, for the node-exporter textfile collector. Short-lived commands use
// this in place of a scrape endpoint.
func (c *Collector) WriteTextfile(path string) error {
	if !c.enabled() || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
