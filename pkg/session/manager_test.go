package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"collectionbuilder/querybuilder/pkg/config"
	"collectionbuilder/querybuilder/pkg/query"
	"collectionbuilder/querybuilder/pkg/query/codec"
	"collectionbuilder/querybuilder/pkg/store"
	"collectionbuilder/querybuilder/pkg/telemetry/metrics"
	"collectionbuilder/querybuilder/pkg/telemetry/tracing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// newTestManager returns a manager over an in-memory store. Seeded trees get
// ids "1" (root), "2" (group) and "3" (clause).
func newTestManager(t *testing.T, opts ...Option) (*Manager, *store.Store) {
	t.Helper()
	ids := query.WithIDGenerator(query.NewSequenceGenerator(1))
	s := store.New(store.NewMemoryBackend(), store.WithEditorOptions(ids))
	opts = append([]Option{WithEditorOptions(ids)}, opts...)
	return NewManager(s, opts...), s
}

// TestManager_Open tests the open-or-seed behaviour.
func TestManager_Open(t *testing.T) {
	ctx := context.Background()
	m, s := newTestManager(t)

	ed, created, err := m.Open(ctx, "books")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if !created {
		t.Error("expected a new query to be created")
	}
	if ed.Len() != 2 {
		t.Errorf("seeded tree has %d nodes, want 2", ed.Len())
	}
	if got := ed.Serialize(); got != query.MatchAll {
		t.Errorf("Serialize() = %q, want %q", got, query.MatchAll)
	}

	// Open alone does not store anything.
	if _, err := s.Load(ctx, "books"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Load() = %v, want ErrNotFound", err)
	}

	if _, _, err := m.Open(ctx, "../books"); !errors.Is(err, store.ErrInvalidName) {
		t.Errorf("Open(../books) = %v, want ErrInvalidName", err)
	}
}

// TestManager_Apply tests that operations are saved and rendered.
func TestManager_Apply(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	res, err := m.Apply(ctx, "books", "set-field", func(ed *query.Editor) error {
		return Require(ed.SetField("3", "title"), "set-field", "3")
	})
	if err != nil {
		t.Fatalf("Apply(set-field) failed: %v", err)
	}
	if !res.Created || res.Query != query.MatchAll {
		t.Errorf("unexpected result %+v", res)
	}

	res, err = m.Apply(ctx, "books", "set-value", func(ed *query.Editor) error {
		return Require(ed.SetValue("3", "dante"), "set-value", "3")
	})
	if err != nil {
		t.Fatalf("Apply(set-value) failed: %v", err)
	}
	if res.Created {
		t.Error("second operation should load the stored query")
	}
	if want := `(title:"dante")`; res.Query != want {
		t.Errorf("Query = %q, want %q", res.Query, want)
	}

	res, err = m.Apply(ctx, "books", "negate", func(ed *query.Editor) error {
		return Require(ed.Negate("2"), "negate", "2")
	})
	if err != nil {
		t.Fatalf("Apply(negate) failed: %v", err)
	}
	if want := `-(title:"dante")`; res.Query != want {
		t.Errorf("Query = %q, want %q", res.Query, want)
	}

	ed, err := m.Show(ctx, "books")
	if err != nil {
		t.Fatalf("Show() failed: %v", err)
	}
	if got := ed.Serialize(); got != res.Query {
		t.Errorf("stored query = %q, want %q", got, res.Query)
	}
}

// TestManager_ApplyRejected tests that failed operations are not saved.
func TestManager_ApplyRejected(t *testing.T) {
	ctx := context.Background()
	m, s := newTestManager(t)

	_, err := m.Apply(ctx, "books", "remove", func(ed *query.Editor) error {
		return Require(ed.Remove("missing"), "remove", "missing")
	})
	var rejected *RejectedError
	if !errors.As(err, &rejected) || !errors.Is(err, ErrRejected) {
		t.Fatalf("Apply() = %v, want *RejectedError", err)
	}
	if rejected.NodeID != "missing" || rejected.Operation != "remove" {
		t.Errorf("unexpected error fields %+v", rejected)
	}
	if _, err := s.Load(ctx, "books"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("rejected operation stored a query: %v", err)
	}

	_, err = m.Apply(ctx, "books", "set-operator", func(ed *query.Editor) error {
		return ed.SetOperator("3", query.Operator("XOR"))
	})
	if !errors.Is(err, query.ErrInvalidOperator) {
		t.Errorf("Apply(set-operator) = %v, want ErrInvalidOperator", err)
	}
}

// TestManager_Create tests creating and overwriting queries.
func TestManager_Create(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	res, err := m.Create(ctx, "books", false)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if !res.Created || res.Nodes != 2 {
		t.Errorf("unexpected result %+v", res)
	}

	if _, err := m.Create(ctx, "books", false); !errors.Is(err, ErrExists) {
		t.Errorf("Create() on existing query = %v, want ErrExists", err)
	}
	if _, err := m.Create(ctx, "books", true); err != nil {
		t.Errorf("Create() with overwrite failed: %v", err)
	}
}

// TestManager_ExportImport tests moving a tree between names and formats.
func TestManager_ExportImport(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	m.Apply(ctx, "books", "set-field", func(ed *query.Editor) error {
		ed.SetField("3", "title")
		ed.SetValue("3", "*")
		return nil
	})

	data, err := m.Export(ctx, "books", codec.FormatXML)
	if err != nil {
		t.Fatalf("Export() failed: %v", err)
	}
	res, err := m.Import(ctx, "copy", data, codec.FormatXML)
	if err != nil {
		t.Fatalf("Import() failed: %v", err)
	}
	if want := `(title:*)`; res.Query != want {
		t.Errorf("Query = %q, want %q", res.Query, want)
	}

	if _, err := m.Import(ctx, "broken", []byte("<nope/>"), codec.FormatXML); err == nil {
		t.Error("Import() of a malformed document should fail")
	}
	if _, err := m.Export(ctx, "missing", codec.FormatYAML); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Export(missing) = %v, want ErrNotFound", err)
	}
}

// TestManager_Telemetry tests that operations are traced and counted.
func TestManager_Telemetry(t *testing.T) {
	ctx := context.Background()
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true, Namespace: "test"}, registry)
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := tracing.NewWithExporter("test", exporter)
	if err != nil {
		t.Fatalf("NewWithExporter() failed: %v", err)
	}
	defer tracer.Shutdown(ctx)

	m, _ := newTestManager(t, WithMetrics(collector), WithTracer(tracer))
	m.Apply(ctx, "books", "deprecate", func(ed *query.Editor) error {
		return Require(ed.Deprecate("3"), "deprecate", "3")
	})
	m.Apply(ctx, "books", "deprecate", func(ed *query.Editor) error {
		return Require(ed.Deprecate("missing"), "deprecate", "missing")
	})

	// success and rejected
	count, err := testutil.GatherAndCount(registry, "test_editor_operations_total")
	if err != nil {
		t.Fatalf("GatherAndCount() failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 operation series, got %d", count)
	}

	want := `
# HELP test_editor_operations_total Total number of editor operations
# TYPE test_editor_operations_total counter
test_editor_operations_total{operation="deprecate",result="rejected"} 1
test_editor_operations_total{operation="deprecate",result="success"} 1
`
	if err := testutil.GatherAndCompare(registry, strings.NewReader(want), "test_editor_operations_total"); err != nil {
		t.Errorf("unexpected operation results: %v", err)
	}

	var names []string
	for _, span := range exporter.GetSpans() {
		names = append(names, span.Name)
	}
	if len(names) != 2 || names[0] != "session.deprecate" || names[1] != "session.deprecate" {
		t.Errorf("spans = %v, want two session.deprecate spans", names)
	}
}
