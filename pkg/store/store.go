package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"collectionbuilder/querybuilder/pkg/config"
	"collectionbuilder/querybuilder/pkg/query"
	"collectionbuilder/querybuilder/pkg/query/codec"
	"collectionbuilder/querybuilder/pkg/telemetry/metrics"
	"collectionbuilder/querybuilder/pkg/telemetry/tracing"

	"go.opentelemetry.io/otel/trace"
)

// Store loads and saves query trees by name on top of a Backend. Trees are
// encoded with the store's format; documents already stored in another
// format are still readable and are rewritten in the store's format on the
// next save.
type Store struct {
	backend    Backend
	format     codec.Format
	editorOpts []query.Option
	closers    []io.Closer

	metrics *metrics.Collector
	tracer  *tracing.Tracer
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithFormat sets the encoding used when saving. The default is YAML.
func WithFormat(f codec.Format) Option {
	return func(s *Store) {
		s.format = f
	}
}

// WithEditorOptions sets the options passed to editors created by Load.
func WithEditorOptions(opts ...query.Option) Option {
	return func(s *Store) {
		s.editorOpts = append(s.editorOpts, opts...)
	}
}

// WithMetrics records backend calls in collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(s *Store) {
		s.metrics = collector
	}
}

// WithTracer wraps backend calls in spans.
func WithTracer(tracer *tracing.Tracer) Option {
	return func(s *Store) {
		s.tracer = tracer
	}
}

// WithLogger sets the store's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the time source for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// withCloser registers a resource closed before the backend.
func withCloser(c io.Closer) Option {
	return func(s *Store) {
		s.closers = append(s.closers, c)
	}
}

// New returns a store using backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		format:  codec.FormatYAML,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "store", "backend", backend.Name())
	return s
}

// Open builds the store described by cfg: the configured backend, the
// document cache when enabled and, for the file backend with watching
// enabled, a Watcher invalidating cache entries.
func Open(ctx context.Context, cfg config.StorageConfig, opts ...Option) (*Store, error) {
	format, err := codec.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	var backend Backend
	switch cfg.Backend {
	case "memory":
		backend = NewMemoryBackend()
	case "file":
		backend, err = NewFileBackend(cfg.File.Directory)
	case "sqlite":
		backend, err = NewSQLiteBackend(cfg.SQLite)
	case "bolt":
		backend, err = NewBoltBackend(cfg.Bolt)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	opts = append([]Option{WithFormat(format)}, opts...)
	s := New(backend, opts...)
	if !cfg.Cache.Enabled {
		return s, nil
	}

	cached := NewCachedBackend(backend, cfg.Cache.TTL, cfg.Cache.CleanupInterval, s.metrics)
	s.backend = cached

	if fb, ok := backend.(*FileBackend); ok && cfg.File.Watch {
		w, err := NewWatcher(fb.Dir(), cached, cfg.File.DebounceInterval)
		if err != nil {
			backend.Close()
			return nil, err
		}
		if err := w.Start(ctx); err != nil {
			w.Close()
			backend.Close()
			return nil, err
		}
		withCloser(w)(s)
	}
	return s, nil
}

// Backend returns the backend the store writes to.
func (s *Store) Backend() Backend {
	return s.backend
}

// Format returns the encoding used when saving.
func (s *Store) Format() codec.Format {
	return s.format
}

// Load decodes the query stored under name into a new editor.
func (s *Store) Load(ctx context.Context, name string) (*query.Editor, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	var rec Record
	err := s.observe(ctx, "get", name, func(ctx context.Context) error {
		var err error
		rec, err = s.backend.Get(ctx, name)
		return err
	})
	if err != nil {
		return nil, err
	}

	format := rec.Format
	if format == "" {
		format = s.format
	}
	ed, err := codec.Decode(rec.Document, format, s.editorOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load query %q: %w", name, err)
	}
	return ed, nil
}

// Save encodes the editor's tree and stores it under name, replacing any
// previous version.
func (s *Store) Save(ctx context.Context, name string, ed *query.Editor) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if ed == nil {
		return errors.New("store: nil editor")
	}

	doc, err := codec.Encode(ed, s.format)
	if err != nil {
		return fmt.Errorf("failed to encode query %q: %w", name, err)
	}

	rec := Record{
		Name:      name,
		Format:    s.format,
		Document:  doc,
		UpdatedAt: s.now(),
	}
	err = s.observe(ctx, "put", name, func(ctx context.Context) error {
		return s.backend.Put(ctx, rec)
	})
	if err != nil {
		return err
	}

	s.logger.DebugContext(ctx, "query saved", "name", name, "bytes", len(doc))
	return nil
}

// Delete removes the query stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	err := s.observe(ctx, "delete", name, func(ctx context.Context) error {
		return s.backend.Delete(ctx, name)
	})
	if err != nil {
		return err
	}

	s.logger.DebugContext(ctx, "query deleted", "name", name)
	return nil
}

// List returns every stored query ordered by name.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	err := s.observe(ctx, "list", "", func(ctx context.Context) error {
		var err error
		entries, err = s.backend.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.UpdateStoredQueries(s.backend.Name(), len(entries))
	return entries, nil
}

// Ping checks that the backend answers a listing.
func (s *Store) Ping(ctx context.Context) error {
	return s.observe(ctx, "ping", "", func(ctx context.Context) error {
		_, err := s.backend.List(ctx)
		return err
	})
}

// Close releases the watcher, if any, and the backend.
func (s *Store) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	errs = append(errs, s.backend.Close())
	return errors.Join(errs...)
}

// observe runs one backend call inside a span and records its outcome.
func (s *Store) observe(ctx context.Context, operation, name string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "store."+operation,
		trace.WithAttributes(
			tracing.AttrBackend.String(s.backend.Name()),
			tracing.AttrQueryName.String(name),
		))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	s.metrics.RecordStorage(s.backend.Name(), operation, result(err), time.Since(start))

	if err != nil && !errors.Is(err, ErrNotFound) {
		tracing.SetStatus(span, err)
		s.logger.ErrorContext(ctx, "storage operation failed",
			"operation", operation,
			"name", name,
			"error", err,
		)
	}
	return err
}

func result(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
