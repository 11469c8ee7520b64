// Package metrics provides Prometheus metrics collection for querybuilder.
//
// # Metrics Categories
//
//   - Editor Metrics: Operation count and latency, tree size, rendered length
//   - Storage Metrics: Backend call count and latency, stored query count
//   - Cache Metrics: Hits, misses, invalidations and size
//   - Retention Metrics: Pruning runs and removed queries
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordOperation("deprecate", "success", 3*time.Millisecond, 7)
//
//	// Long-running processes expose a scrape endpoint
//	http.Handle("/metrics", collector.Handler())
//
//	// Commands write a textfile before exiting
//	collector.WriteTextfile(cfg.Telemetry.Metrics.TextfilePath)
//
// All names are prefixed with the configured namespace (default
// "querybuilder").
package metrics
