package retention

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"collectionbuilder/querybuilder/pkg/config"
	"collectionbuilder/querybuilder/pkg/store"
	"collectionbuilder/querybuilder/pkg/telemetry/metrics"
)

// Store is the part of store.Store the pruner needs.
type Store interface {
	List(ctx context.Context) ([]store.Entry, error)
	Delete(ctx context.Context, name string) error
}

// Pruner deletes named queries older than a maximum age.
type Pruner struct {
	store   Store
	maxAge  time.Duration
	metrics *metrics.Collector
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Pruner.
type Option func(*Pruner)

// WithMetrics records each pass in collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(p *Pruner) {
		p.metrics = collector
	}
}

// WithClock sets the time source used to compute the cutoff.
func WithClock(now func() time.Time) Option {
	return func(p *Pruner) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPruner creates a pruner over s. A zero MaxAge disables pruning.
func NewPruner(s Store, cfg config.RetentionConfig, opts ...Option) *Pruner {
	p := &Pruner{
		store:  s,
		maxAge: cfg.MaxAge,
		logger: slog.Default().With("component", "store.retention"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Cutoff returns the time before which queries are pruned.
func (p *Pruner) Cutoff() time.Time {
	return p.now().Add(-p.maxAge)
}

// Prune deletes every query whose last save is before the cutoff and returns
// the names it removed.
func (p *Pruner) Prune(ctx context.Context) ([]string, error) {
	if p.maxAge <= 0 {
		p.logger.Debug("retention disabled, nothing pruned")
		return nil, nil
	}

	removed, err := p.prune(ctx)
	p.metrics.RecordPrune(len(removed), err)
	if err != nil {
		return removed, err
	}

	if len(removed) == 0 {
		p.logger.Debug("no queries pruned", "max_age", p.maxAge)
	} else {
		p.logger.Info("query pruning completed",
			"deleted_count", len(removed),
			"max_age", p.maxAge,
		)
	}
	return removed, nil
}

func (p *Pruner) prune(ctx context.Context) ([]string, error) {
	cutoff := p.Cutoff()
	p.logger.Debug("pruning by age", "cutoff_time", cutoff)

	entries, err := p.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list queries: %w", err)
	}

	var removed []string
	for _, e := range entries {
		if !e.UpdatedAt.Before(cutoff) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		err := p.store.Delete(ctx, e.Name)
		switch {
		case err == nil:
			removed = append(removed, e.Name)
			p.logger.Debug("query pruned", "name", e.Name, "updated_at", e.UpdatedAt)
		case errors.Is(err, store.ErrNotFound):
			// Deleted concurrently
		default:
			return removed, fmt.Errorf("failed to prune query %q: %w", e.Name, err)
		}
	}
	return removed, nil
}
