package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// recordingInvalidator forwards invalidated names to a channel.
type recordingInvalidator struct {
	names chan string
}

func (r *recordingInvalidator) Invalidate(name string) {
	r.names <- name
}

func waitForName(t *testing.T, names <-chan string, want string) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case got := <-names:
			if got == want {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for invalidation of %q", want)
		}
	}
}

// TestWatcher_InvalidatesOnWrite tests that external writes invalidate the
// matching query.
func TestWatcher_InvalidatesOnWrite(t *testing.T) {
	dir := t.TempDir()
	target := &recordingInvalidator{names: make(chan string, 16)}

	w, err := NewWatcher(dir, target, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if err := w.Start(ctx); err == nil {
		t.Error("second Start() should fail")
	}

	if err := os.WriteFile(filepath.Join(dir, "books.yaml"), []byte("version: 1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	waitForName(t, target.names, "books")

	if err := os.Remove(filepath.Join(dir, "books.yaml")); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	waitForName(t, target.names, "books")
}

// TestWatcher_CachedStore tests a file store whose cache is invalidated by
// another writer.
func TestWatcher_CachedStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	backend, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("NewFileBackend() failed: %v", err)
	}
	cached := NewCachedBackend(backend, time.Minute, time.Minute, nil)
	target := &recordingInvalidator{names: make(chan string, 16)}
	w, err := NewWatcher(dir, invalidators{cached, target}, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	defer w.Close()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	cached.Put(ctx, Record{Name: "q", Format: "yaml", Document: []byte("v1")})
	waitForName(t, target.names, "q")
	if _, err := cached.Get(ctx, "q"); err != nil {
		t.Fatalf("Get() failed: %v", err)
	}

	other, _ := NewFileBackend(dir)
	other.Put(ctx, Record{Name: "q", Format: "yaml", Document: []byte("v2")})
	waitForName(t, target.names, "q")

	rec, err := cached.Get(ctx, "q")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if string(rec.Document) != "v2" {
		t.Errorf("Document = %q, want v2", rec.Document)
	}
}

// invalidators fans one invalidation out to several targets in order.
type invalidators []Invalidator

func (in invalidators) Invalidate(name string) {
	for _, target := range in {
		target.Invalidate(name)
	}
}

// TestDebouncer tests that a burst of triggers runs the callback once.
func TestDebouncer(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var mu sync.Mutex
	calls := 0
	done := make(chan struct{}, 1)
	for i := 0; i < 5; i++ {
		d.Trigger("q", func() {
			mu.Lock()
			calls++
			mu.Unlock()
			done <- struct{}{}
		})
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("callback never ran")
	}
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}
