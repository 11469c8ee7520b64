package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"collectionbuilder/querybuilder/pkg/config"
	"collectionbuilder/querybuilder/pkg/query/codec"
	"collectionbuilder/querybuilder/pkg/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// countingBackend counts Get calls reaching the wrapped backend.
type countingBackend struct {
	*MemoryBackend
	gets int
}

func (b *countingBackend) Get(ctx context.Context, name string) (Record, error) {
	b.gets++
	return b.MemoryBackend.Get(ctx, name)
}

func newCachedTestBackend(t *testing.T) (*CachedBackend, *countingBackend, *prometheus.Registry) {
	t.Helper()
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true, Namespace: "test"}, registry)
	next := &countingBackend{MemoryBackend: NewMemoryBackend()}
	return NewCachedBackend(next, time.Minute, time.Minute, collector), next, registry
}

// TestCachedBackend_ReadThrough tests that repeated reads are served from the
// cache.
func TestCachedBackend_ReadThrough(t *testing.T) {
	ctx := context.Background()
	cached, next, registry := newCachedTestBackend(t)
	next.Put(ctx, Record{Name: "q", Format: codec.FormatYAML, Document: []byte("v1")})

	for i := 0; i < 3; i++ {
		rec, err := cached.Get(ctx, "q")
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if string(rec.Document) != "v1" {
			t.Errorf("Document = %q, want v1", rec.Document)
		}
	}

	if next.gets != 1 {
		t.Errorf("expected 1 backend read, got %d", next.gets)
	}
	if cached.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cached.Len())
	}
	if cached.Name() != "memory" {
		t.Errorf("Name() = %q, want memory", cached.Name())
	}

	hits, err := testutil.GatherAndCount(registry, "test_cache_hits_total")
	if err != nil || hits != 1 {
		t.Errorf("expected one hit series, got %d (%v)", hits, err)
	}
}

// TestCachedBackend_Writes tests that writes refresh or drop cached records.
func TestCachedBackend_Writes(t *testing.T) {
	ctx := context.Background()
	cached, next, _ := newCachedTestBackend(t)

	if err := cached.Put(ctx, Record{Name: "q", Document: []byte("v1")}); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	if err := cached.Put(ctx, Record{Name: "q", Document: []byte("v2")}); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	rec, _ := cached.Get(ctx, "q")
	if string(rec.Document) != "v2" {
		t.Errorf("Document = %q, want v2", rec.Document)
	}
	if next.gets != 0 {
		t.Errorf("expected Put to populate the cache, got %d backend reads", next.gets)
	}

	// A change behind the cache is only seen after invalidation.
	next.Put(ctx, Record{Name: "q", Document: []byte("v3")})
	rec, _ = cached.Get(ctx, "q")
	if string(rec.Document) != "v2" {
		t.Errorf("Document = %q, want cached v2", rec.Document)
	}
	cached.Invalidate("q")
	rec, _ = cached.Get(ctx, "q")
	if string(rec.Document) != "v3" {
		t.Errorf("Document = %q, want v3", rec.Document)
	}

	if err := cached.Delete(ctx, "q"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := cached.Get(ctx, "q"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete = %v, want ErrNotFound", err)
	}
	if cached.Len() != 0 {
		t.Errorf("Len() = %d, want 0", cached.Len())
	}
}

// TestCachedBackend_CopiesDocuments tests that cached bytes cannot be changed
// through a returned record.
func TestCachedBackend_CopiesDocuments(t *testing.T) {
	ctx := context.Background()
	cached, _, _ := newCachedTestBackend(t)
	cached.Put(ctx, Record{Name: "q", Document: []byte("v1")})

	rec, _ := cached.Get(ctx, "q")
	rec.Document[0] = 'x'

	again, _ := cached.Get(ctx, "q")
	if string(again.Document) != "v1" {
		t.Errorf("Document = %q, want v1", again.Document)
	}

	cached.Flush()
	if cached.Len() != 0 {
		t.Errorf("Len() after Flush = %d, want 0", cached.Len())
	}
}
