package retention

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"collectionbuilder/querybuilder/pkg/config"
	"collectionbuilder/querybuilder/pkg/query"
	"collectionbuilder/querybuilder/pkg/store"
	"collectionbuilder/querybuilder/pkg/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var now = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

// seedStore saves one query per name, each age before now.
func seedStore(t *testing.T, ages map[string]time.Duration) *store.Store {
	t.Helper()
	backend := store.NewMemoryBackend()
	for name, age := range ages {
		saved := now.Add(-age)
		s := store.New(backend, store.WithClock(func() time.Time { return saved }))
		if err := s.Save(context.Background(), name, query.NewSeededEditor()); err != nil {
			t.Fatalf("Save(%s) failed: %v", name, err)
		}
	}
	return store.New(backend)
}

func TestPruner_Prune(t *testing.T) {
	tests := []struct {
		name        string
		maxAge      time.Duration
		ages        map[string]time.Duration
		wantRemoved []string
		wantKept    []string
	}{
		{
			name:   "old queries removed",
			maxAge: 24 * time.Hour,
			ages: map[string]time.Duration{
				"fresh":   time.Hour,
				"stale":   48 * time.Hour,
				"ancient": 400 * 24 * time.Hour,
			},
			wantRemoved: []string{"ancient", "stale"},
			wantKept:    []string{"fresh"},
		},
		{
			name:   "query exactly at cutoff kept",
			maxAge: 24 * time.Hour,
			ages: map[string]time.Duration{
				"edge": 24 * time.Hour,
			},
			wantKept: []string{"edge"},
		},
		{
			name:   "zero max age disables pruning",
			maxAge: 0,
			ages: map[string]time.Duration{
				"ancient": 400 * 24 * time.Hour,
			},
			wantKept: []string{"ancient"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := seedStore(t, tt.ages)
			p := NewPruner(s, config.RetentionConfig{MaxAge: tt.maxAge}, WithClock(func() time.Time { return now }))

			removed, err := p.Prune(ctx)
			if err != nil {
				t.Fatalf("Prune() failed: %v", err)
			}
			if !slices.Equal(removed, tt.wantRemoved) {
				t.Errorf("Prune() removed %v, want %v", removed, tt.wantRemoved)
			}

			entries, err := s.List(ctx)
			if err != nil {
				t.Fatalf("List() failed: %v", err)
			}
			var kept []string
			for _, e := range entries {
				kept = append(kept, e.Name)
			}
			if !slices.Equal(kept, tt.wantKept) {
				t.Errorf("remaining queries %v, want %v", kept, tt.wantKept)
			}
		})
	}
}

// flakyStore lists one query but fails to delete it.
type flakyStore struct {
	deleteErr error
}

func (f *flakyStore) List(ctx context.Context) ([]store.Entry, error) {
	return []store.Entry{{Name: "q", UpdatedAt: now.Add(-48 * time.Hour)}}, nil
}

func (f *flakyStore) Delete(ctx context.Context, name string) error {
	return f.deleteErr
}

func TestPruner_DeleteErrors(t *testing.T) {
	ctx := context.Background()
	clock := WithClock(func() time.Time { return now })
	cfg := config.RetentionConfig{MaxAge: time.Hour}

	t.Run("concurrently deleted", func(t *testing.T) {
		p := NewPruner(&flakyStore{deleteErr: store.NewStorageError("memory", "delete", "q", store.ErrNotFound)}, cfg, clock)
		removed, err := p.Prune(ctx)
		if err != nil || len(removed) != 0 {
			t.Errorf("Prune() = %v, %v; want nothing removed and no error", removed, err)
		}
	})

	t.Run("backend failure", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true, Namespace: "test"}, registry)
		p := NewPruner(&flakyStore{deleteErr: store.ErrUnavailable}, cfg, clock, WithMetrics(collector))

		_, err := p.Prune(ctx)
		if !errors.Is(err, store.ErrUnavailable) {
			t.Errorf("Prune() error = %v, want ErrUnavailable", err)
		}

		count, err := testutil.GatherAndCount(registry, "test_retention_runs_total")
		if err != nil || count != 1 {
			t.Errorf("expected one retention run series, got %d (%v)", count, err)
		}
	})
}

func TestPruner_Cutoff(t *testing.T) {
	p := NewPruner(store.New(store.NewMemoryBackend()), config.RetentionConfig{MaxAge: 24 * time.Hour},
		WithClock(func() time.Time { return now }))
	if want := now.Add(-24 * time.Hour); !p.Cutoff().Equal(want) {
		t.Errorf("Cutoff() = %v, want %v", p.Cutoff(), want)
	}
}
