package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"collectionbuilder/querybuilder/pkg/query"
	"collectionbuilder/querybuilder/pkg/query/codec"
	"collectionbuilder/querybuilder/pkg/store"
	"collectionbuilder/querybuilder/pkg/telemetry/logging"
	"collectionbuilder/querybuilder/pkg/telemetry/metrics"
	"collectionbuilder/querybuilder/pkg/telemetry/tracing"

	"go.opentelemetry.io/otel/trace"
)

// Result describes a named query after an operation.
type Result struct {
	Name    string
	Query   string // Solr rendering of the whole tree
	Nodes   int    // Nodes in the tree, root excluded
	Created bool   // The query did not exist before this call
}

// Manager runs editor operations against stored queries.
type Manager struct {
	store      *store.Store
	editorOpts []query.Option
	metrics    *metrics.Collector
	tracer     *tracing.Tracer
	logger     *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithEditorOptions sets the options used for freshly seeded trees.
func WithEditorOptions(opts ...query.Option) Option {
	return func(m *Manager) {
		m.editorOpts = append(m.editorOpts, opts...)
	}
}

// WithMetrics records operations in collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(m *Manager) {
		m.metrics = collector
	}
}

// WithTracer wraps operations in spans.
func WithTracer(tracer *tracing.Tracer) Option {
	return func(m *Manager) {
		m.tracer = tracer
	}
}

// WithLogger sets the manager's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a manager over s.
func NewManager(s *store.Store, opts ...Option) *Manager {
	m := &Manager{
		store:  s,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "session")
	return m
}

// Open loads the named query. When none is stored, a seeded tree (one blank
// group holding one blank clause) is returned with created set.
func (m *Manager) Open(ctx context.Context, name string) (ed *query.Editor, created bool, err error) {
	ed, err = m.store.Load(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return query.NewSeededEditor(m.editorOpts...), true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return ed, false, nil
}

// Create stores a new seeded tree under name. Unless overwrite is set, an
// existing query is left alone and ErrExists is returned.
func (m *Manager) Create(ctx context.Context, name string, overwrite bool) (Result, error) {
	return m.run(ctx, name, "new", func(ctx context.Context) (*query.Editor, bool, error) {
		if !overwrite {
			if _, err := m.store.Load(ctx, name); err == nil {
				return nil, false, fmt.Errorf("%w: %q", ErrExists, name)
			} else if !errors.Is(err, store.ErrNotFound) {
				return nil, false, err
			}
		}
		ed := query.NewSeededEditor(m.editorOpts...)
		return ed, true, m.store.Save(ctx, name, ed)
	})
}

// Apply opens the named query, runs fn on it and saves the tree when fn
// succeeds. The query string of the saved tree is returned.
func (m *Manager) Apply(ctx context.Context, name, operation string, fn func(*query.Editor) error) (Result, error) {
	return m.run(ctx, name, operation, func(ctx context.Context) (*query.Editor, bool, error) {
		ed, created, err := m.Open(ctx, name)
		if err != nil {
			return nil, false, err
		}
		if err := fn(ed); err != nil {
			return nil, created, err
		}
		return ed, created, m.store.Save(ctx, name, ed)
	})
}

// Show returns the named query without modifying it.
func (m *Manager) Show(ctx context.Context, name string) (*query.Editor, error) {
	return m.store.Load(ctx, name)
}

// Export renders the named query in format f.
func (m *Manager) Export(ctx context.Context, name string, f codec.Format) ([]byte, error) {
	ed, err := m.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	return codec.Encode(ed, f)
}

// Import decodes data in format f and stores the tree under name, replacing
// any previous version.
func (m *Manager) Import(ctx context.Context, name string, data []byte, f codec.Format) (Result, error) {
	return m.run(ctx, name, "import", func(ctx context.Context) (*query.Editor, bool, error) {
		ed, err := codec.Decode(data, f, m.editorOpts...)
		if err != nil {
			return nil, false, err
		}
		return ed, false, m.store.Save(ctx, name, ed)
	})
}

// run wraps one operation with tracing, logging and metrics.
func (m *Manager) run(ctx context.Context, name, operation string, fn func(context.Context) (*query.Editor, bool, error)) (Result, error) {
	ctx = logging.WithQuery(ctx, name)
	ctx = logging.WithOperation(ctx, operation)
	ctx, span := m.tracer.Start(ctx, "session."+operation,
		trace.WithAttributes(tracing.QueryAttributes(name, operation)...))
	defer span.End()

	start := time.Now()
	ed, created, err := fn(ctx)
	duration := time.Since(start)

	if err != nil {
		result := outcome(err)
		m.metrics.RecordOperation(operation, result, duration, 0)
		tracing.SetStatus(span, err)
		if result == "rejected" {
			m.logger.InfoContext(ctx, "operation rejected", "error", err)
		} else {
			m.logger.ErrorContext(ctx, "operation failed", "error", err)
		}
		return Result{Name: name}, err
	}

	res := Result{
		Name:    name,
		Query:   ed.Serialize(),
		Nodes:   ed.Len(),
		Created: created,
	}
	m.metrics.RecordOperation(operation, "success", duration, res.Nodes)
	m.metrics.RecordSerialization(len(res.Query))
	span.SetAttributes(tracing.AttrNodeCount.Int(res.Nodes))
	tracing.SetStatus(span, nil)

	m.logger.DebugContext(ctx, "operation applied",
		"nodes", res.Nodes,
		"created", created,
		"duration", duration,
	)
	return res, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrRejected), errors.Is(err, ErrExists),
		errors.Is(err, query.ErrInconsistentOperator), errors.Is(err, query.ErrInvalidOperator):
		return "rejected"
	default:
		return "error"
	}
}
