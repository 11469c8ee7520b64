// Package store persists query trees under names.
//
// A Store encodes trees with the query codec and hands the documents to a
// Backend:
//
//   - MemoryBackend: map-backed, for tests and throwaway sessions
//   - FileBackend: one file per query; the extension records the format
//   - SQLiteBackend: a named_queries table, using the modernc ("sqlite") or
//     mattn ("sqlite3") driver
//   - BoltBackend: one nested bucket per query in a BoltDB file
//
// CachedBackend adds a read-through go-cache layer in front of any backend,
// and Watcher invalidates it when files in a FileBackend directory change.
//
// # Errors
//
// Unknown names return an error matching ErrNotFound. Every other backend
// failure is a *StorageError matching ErrUnavailable:
//
//	ed, err := s.Load(ctx, "dante")
//	switch {
//	case errors.Is(err, store.ErrNotFound):
//	    ed = query.NewSeededEditor()
//	case err != nil:
//	    return err
//	}
//
// # Usage
//
//	s, err := store.Open(ctx, cfg.Storage, store.WithMetrics(collector))
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
package store
