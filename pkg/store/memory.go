package store

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// MemoryBackend keeps documents in a map. It is intended for tests and for
// throwaway sessions.
type MemoryBackend struct {
	records map[string]Record
	mu      sync.RWMutex
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		records: make(map[string]Record),
	}
}

// Name implements Backend.
func (b *MemoryBackend) Name() string {
	return "memory"
}

// Get implements Backend.
func (b *MemoryBackend) Get(ctx context.Context, name string) (Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.records[name]
	if !ok {
		return Record{}, notFound(b.Name(), "get", name)
	}
	// Copy so callers cannot mutate the stored bytes
	return cloneRecord(rec), nil
}

// Put implements Backend.
func (b *MemoryBackend) Put(ctx context.Context, rec Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.records[rec.Name] = cloneRecord(rec)
	return nil
}

// Delete implements Backend.
func (b *MemoryBackend) Delete(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.records[name]; !ok {
		return notFound(b.Name(), "delete", name)
	}
	delete(b.records, name)
	return nil
}

// List implements Backend.
func (b *MemoryBackend) List(ctx context.Context) ([]Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entries := make([]Entry, 0, len(b.records))
	for _, rec := range b.records {
		entries = append(entries, Entry{Name: rec.Name, UpdatedAt: rec.UpdatedAt})
	}
	sortEntries(entries)
	return entries, nil
}

// Close implements Backend.
func (b *MemoryBackend) Close() error {
	return nil
}

func sortEntries(entries []Entry) {
	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(a.Name, b.Name)
	})
}
