package metrics

import (
	"time"

	"collectionbuilder/querybuilder/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// StorageMetrics tracks named-query backend calls.
//
// Metrics:
//   - querybuilder_storage_operations_total: Calls by backend, operation and result
//   - querybuilder_storage_operation_duration_seconds: Call latency
//   - querybuilder_storage_queries: Named queries held, as of the last list
type StorageMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	stored            *prometheus.GaugeVec
}

// NewStorageMetrics creates and registers storage metrics with the provided registry.
func NewStorageMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *StorageMetrics {
	sm := &StorageMetrics{
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "storage",
				Name:      "operations_total",
				Help:      "Total number of storage backend calls",
			},
			[]string{"backend", "operation", "result"},
		),

		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "storage",
				Name:      "operation_duration_seconds",
				Help:      "Duration of storage backend calls in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 9), // 10µs to 650ms
			},
			[]string{"backend", "operation"},
		),

		stored: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "storage",
				Name:      "queries",
				Help:      "Number of named queries in the backend",
			},
			[]string{"backend"},
		),
	}

	registry.MustRegister(
		sm.operationsTotal,
		sm.operationDuration,
		sm.stored,
	)

	return sm
}

// RecordOperation records one backend call.
func (sm *StorageMetrics) RecordOperation(backend, operation, result string, duration time.Duration) {
	sm.operationsTotal.WithLabelValues(backend, operation, result).Inc()
	sm.operationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// UpdateStored sets the number of stored queries.
func (sm *StorageMetrics) UpdateStored(backend string, count int) {
	sm.stored.WithLabelValues(backend).Set(float64(count))
}
