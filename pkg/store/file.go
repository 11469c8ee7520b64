package store

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"collectionbuilder/querybuilder/pkg/query/codec"
)

// documentExtensions are the file extensions read by FileBackend, in lookup
// order.
var documentExtensions = []string{".yaml", ".yml", ".json", ".xml"}

// FileBackend stores one document per file in a directory. The file
// extension records the format, so a directory of collection-builder .xml
// documents can be read alongside .yaml ones. File modification times are the
// entries' UpdatedAt.
type FileBackend struct {
	dir    string
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewFileBackend creates the directory if needed and returns a backend for it.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, NewStorageError("file", "open", "", err)
	}
	return &FileBackend{
		dir:    dir,
		logger: slog.Default().With("component", "store.file"),
	}, nil
}

// Dir returns the backend's directory.
func (b *FileBackend) Dir() string {
	return b.dir
}

// Name implements Backend.
func (b *FileBackend) Name() string {
	return "file"
}

// Get implements Backend.
func (b *FileBackend) Get(ctx context.Context, name string) (Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	path, ok := b.find(name)
	if !ok {
		return Record{}, notFound(b.Name(), "get", name)
	}
	format, err := codec.FormatFromPath(path)
	if err != nil {
		return Record{}, NewStorageError(b.Name(), "get", name, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return Record{}, NewStorageError(b.Name(), "get", name, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, NewStorageError(b.Name(), "get", name, err)
	}

	return Record{
		Name:      name,
		Format:    format,
		Document:  data,
		UpdatedAt: info.ModTime(),
	}, nil
}

// Put implements Backend. The document is written to a temporary file and
// renamed into place; files holding the same name in another format are
// removed.
func (b *FileBackend) Put(ctx context.Context, rec Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	target := filepath.Join(b.dir, rec.Name+rec.Format.Extension())

	tmp, err := os.CreateTemp(b.dir, ".tmp-*")
	if err != nil {
		return NewStorageError(b.Name(), "put", rec.Name, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := tmp.Write(rec.Document); err != nil {
		tmp.Close()
		return NewStorageError(b.Name(), "put", rec.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return NewStorageError(b.Name(), "put", rec.Name, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return NewStorageError(b.Name(), "put", rec.Name, err)
	}
	if !rec.UpdatedAt.IsZero() {
		if err := os.Chtimes(tmpPath, rec.UpdatedAt, rec.UpdatedAt); err != nil {
			return NewStorageError(b.Name(), "put", rec.Name, err)
		}
	}
	if err := os.Rename(tmpPath, target); err != nil {
		return NewStorageError(b.Name(), "put", rec.Name, err)
	}

	for _, ext := range documentExtensions {
		other := filepath.Join(b.dir, rec.Name+ext)
		if other == target {
			continue
		}
		if err := os.Remove(other); err != nil && !errors.Is(err, fs.ErrNotExist) {
			b.logger.Warn("failed to remove stale document", "path", other, "error", err)
		}
	}
	return nil
}

// Delete implements Backend. Every file stored under name is removed.
func (b *FileBackend) Delete(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	removed := false
	for _, ext := range documentExtensions {
		err := os.Remove(filepath.Join(b.dir, name+ext))
		switch {
		case err == nil:
			removed = true
		case !errors.Is(err, fs.ErrNotExist):
			return NewStorageError(b.Name(), "delete", name, err)
		}
	}
	if !removed {
		return notFound(b.Name(), "delete", name)
	}
	return nil
}

// List implements Backend. Hidden files, directories and files with other
// extensions are skipped.
func (b *FileBackend) List(ctx context.Context) ([]Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	dirEntries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, NewStorageError(b.Name(), "list", "", err)
	}

	byName := make(map[string]Entry)
	for _, de := range dirEntries {
		name, ok := nameFromFile(de.Name())
		if !ok || de.IsDir() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// Removed since ReadDir
			continue
		}
		if prev, seen := byName[name]; seen && !info.ModTime().After(prev.UpdatedAt) {
			continue
		}
		byName[name] = Entry{Name: name, UpdatedAt: info.ModTime()}
	}

	entries := make([]Entry, 0, len(byName))
	for _, e := range byName {
		entries = append(entries, e)
	}
	sortEntries(entries)
	return entries, nil
}

// Close implements Backend.
func (b *FileBackend) Close() error {
	return nil
}

// find returns the path of the first existing document for name.
func (b *FileBackend) find(name string) (string, bool) {
	for _, ext := range documentExtensions {
		path := filepath.Join(b.dir, name+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// nameFromFile maps a file name to the query name it stores.
func nameFromFile(file string) (string, bool) {
	if strings.HasPrefix(file, ".") {
		return "", false
	}
	ext := strings.ToLower(filepath.Ext(file))
	for _, known := range documentExtensions {
		if ext == known {
			return strings.TrimSuffix(file, filepath.Ext(file)), true
		}
	}
	return "", false
}
