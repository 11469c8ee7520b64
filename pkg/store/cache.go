package store

import (
	"context"
	"log/slog"
	"time"

	"collectionbuilder/querybuilder/pkg/telemetry/metrics"

	"github.com/patrickmn/go-cache"
)

// documentCache names the cache in metrics.
const documentCache = "documents"

// CachedBackend is a read-through cache in front of another backend. Writes
// go to the backend first and then refresh the cached record.
//
// Changes made to the backend by other processes are only seen once the
// cached entry expires or is invalidated, for example by a Watcher.
type CachedBackend struct {
	next    Backend
	cache   *cache.Cache
	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewCachedBackend wraps next with a cache whose entries live for ttl.
// Expired entries are evicted every cleanupInterval.
func NewCachedBackend(next Backend, ttl, cleanupInterval time.Duration, collector *metrics.Collector) *CachedBackend {
	return &CachedBackend{
		next:    next,
		cache:   cache.New(ttl, cleanupInterval),
		metrics: collector,
		logger:  slog.Default().With("component", "store.cache", "backend", next.Name()),
	}
}

// Name implements Backend. The wrapped backend's name is reported.
func (b *CachedBackend) Name() string {
	return b.next.Name()
}

// Get implements Backend.
func (b *CachedBackend) Get(ctx context.Context, name string) (Record, error) {
	if v, found := b.cache.Get(name); found {
		b.metrics.RecordCacheHit(documentCache)
		return cloneRecord(v.(Record)), nil
	}
	b.metrics.RecordCacheMiss(documentCache)

	rec, err := b.next.Get(ctx, name)
	if err != nil {
		return Record{}, err
	}
	b.set(rec)
	return rec, nil
}

// Put implements Backend.
func (b *CachedBackend) Put(ctx context.Context, rec Record) error {
	if err := b.next.Put(ctx, rec); err != nil {
		// The backend may hold either version now
		b.Invalidate(rec.Name)
		return err
	}
	b.set(rec)
	return nil
}

// Delete implements Backend.
func (b *CachedBackend) Delete(ctx context.Context, name string) error {
	b.Invalidate(name)
	return b.next.Delete(ctx, name)
}

// List implements Backend. Listings are not cached.
func (b *CachedBackend) List(ctx context.Context) ([]Entry, error) {
	return b.next.List(ctx)
}

// Close implements Backend.
func (b *CachedBackend) Close() error {
	b.cache.Flush()
	return b.next.Close()
}

// Invalidate drops the cached record for name, if any.
func (b *CachedBackend) Invalidate(name string) {
	if _, found := b.cache.Get(name); !found {
		return
	}
	b.cache.Delete(name)
	b.metrics.RecordCacheInvalidation(documentCache)
	b.metrics.UpdateCacheSize(documentCache, b.cache.ItemCount())
	b.logger.Debug("cache entry invalidated", "name", name)
}

// Flush drops every cached record.
func (b *CachedBackend) Flush() {
	b.cache.Flush()
	b.metrics.UpdateCacheSize(documentCache, 0)
}

// Len returns the number of cached records, expired ones included until the
// next cleanup.
func (b *CachedBackend) Len() int {
	return b.cache.ItemCount()
}

func (b *CachedBackend) set(rec Record) {
	b.cache.Set(rec.Name, cloneRecord(rec), cache.DefaultExpiration)
	b.metrics.UpdateCacheSize(documentCache, b.cache.ItemCount())
}
