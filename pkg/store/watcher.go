package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Invalidator drops cached state for a named query.
type Invalidator interface {
	Invalidate(name string)
}

// Watcher watches a FileBackend directory and invalidates cached entries when
// their files change on disk, for example when another process saves the
// same query. Bursts of events for one name are debounced.
type Watcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	target   Invalidator
	debounce *debouncer
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher for dir. Nothing is watched until Start.
func NewWatcher(dir string, target Invalidator, debounceInterval time.Duration) (*Watcher, error) {
	if target == nil {
		return nil, errors.New("watcher: nil invalidator")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher:  fsw,
		dir:      dir,
		target:   target,
		debounce: newDebouncer(debounceInterval),
		logger:   slog.Default().With("component", "store.watcher"),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine, which runs until ctx is
// cancelled or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return errors.New("watcher already running")
	}
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch directory %q: %w", w.dir, err)
	}
	w.running = true

	w.logger.Info("File watcher started", "path", w.dir)
	go w.loop(ctx)
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("File watcher stopped (context cancelled)")
			return

		case <-w.stopCh:
			w.logger.Debug("File watcher stopped")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			name, ok := w.queryName(event)
			if !ok {
				continue
			}
			w.logger.Debug("File event detected", "path", event.Name, "op", event.Op.String())
			w.debounce.Trigger(name, func() {
				w.target.Invalidate(name)
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Continue watching despite errors
			w.logger.Error("File watcher error", "error", err)
		}
	}
}

// queryName maps an event to the query whose file changed.
func (w *Watcher) queryName(event fsnotify.Event) (string, bool) {
	if event.Op == fsnotify.Chmod {
		return "", false
	}
	return nameFromFile(filepath.Base(event.Name))
}

// Close stops the watcher and cancels pending invalidations.
func (w *Watcher) Close() error {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	w.debounce.Stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// debouncer runs a callback per key once no new trigger has arrived for the
// interval.
type debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timers   map[string]*time.Timer
	stopped  bool
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{
		interval: interval,
		timers:   make(map[string]*time.Timer),
	}
}

// Trigger (re)starts the timer for key.
func (d *debouncer) Trigger(key string, callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	d.timers[key] = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		if d.stopped {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		d.mu.Unlock()

		callback()
	})
}

// Stop cancels every pending callback.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}
