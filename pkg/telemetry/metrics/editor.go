package metrics

import (
	"time"

	"collectionbuilder/querybuilder/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// EditorMetrics tracks editor operations applied through sessions.
//
// Metrics:
//   - querybuilder_editor_operations_total: Operations by name and result
//   - querybuilder_editor_operation_duration_seconds: Load, mutate and save latency
//   - querybuilder_editor_tree_nodes: Tree size after each operation
//   - querybuilder_editor_serialized_length_bytes: Rendered query length
type EditorMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	treeNodes         prometheus.Histogram
	serializedLength  prometheus.Histogram
}

// NewEditorMetrics creates and registers editor metrics with the provided registry.
func NewEditorMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EditorMetrics {
	em := &EditorMetrics{
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "editor",
				Name:      "operations_total",
				Help:      "Total number of editor operations",
			},
			[]string{"operation", "result"},
		),

		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "editor",
				Name:      "operation_duration_seconds",
				Help:      "Duration of editor operations including storage round trips",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8), // 100µs to 1.6s
			},
			[]string{"operation"},
		),

		treeNodes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "editor",
				Name:      "tree_nodes",
				Help:      "Number of nodes in the tree after an operation",
				Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
			},
		),

		serializedLength: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "editor",
				Name:      "serialized_length_bytes",
				Help:      "Length of rendered query strings",
				Buckets:   prometheus.ExponentialBuckets(8, 4, 7), // 8B to 32KB
			},
		),
	}

	registry.MustRegister(
		em.operationsTotal,
		em.operationDuration,
		em.treeNodes,
		em.serializedLength,
	)

	return em
}

// RecordOperation records one operation.
func (em *EditorMetrics) RecordOperation(operation, result string, duration time.Duration, nodes int) {
	em.operationsTotal.WithLabelValues(operation, result).Inc()
	em.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	em.treeNodes.Observe(float64(nodes))
}

// RecordSerialization records the length of a rendered query.
func (em *EditorMetrics) RecordSerialization(length int) {
	em.serializedLength.Observe(float64(length))
}
