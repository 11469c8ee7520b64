package metrics

import (
	"collectionbuilder/querybuilder/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RetentionMetrics tracks pruning runs.
type RetentionMetrics struct {
	runsTotal   *prometheus.CounterVec
	prunedTotal prometheus.Counter
}

// NewRetentionMetrics creates and registers retention metrics with the provided registry.
func NewRetentionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RetentionMetrics {
	rm := &RetentionMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "retention",
				Name:      "runs_total",
				Help:      "Total number of retention runs",
			},
			[]string{"result"},
		),
		prunedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "retention",
				Name:      "pruned_total",
				Help:      "Total number of named queries pruned",
			},
		),
	}

	registry.MustRegister(rm.runsTotal, rm.prunedTotal)

	return rm
}

// RecordRun records a retention run and the queries it removed. A failed run
// may still have removed some queries.
func (rm *RetentionMetrics) RecordRun(removed int, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	rm.runsTotal.WithLabelValues(result).Inc()
	rm.prunedTotal.Add(float64(removed))
}
