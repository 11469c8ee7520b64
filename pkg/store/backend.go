package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"collectionbuilder/querybuilder/pkg/query/codec"
)

// Record is one stored document.
type Record struct {
	Name      string
	Format    codec.Format
	Document  []byte
	UpdatedAt time.Time
}

// Entry describes a stored query without its document.
type Entry struct {
	Name      string
	UpdatedAt time.Time
}

// Backend persists encoded documents by name. Implementations are safe for
// concurrent use. Get and Delete return an error matching ErrNotFound for
// unknown names.
type Backend interface {
	// Name identifies the backend in errors, logs and metrics.
	Name() string

	Get(ctx context.Context, name string) (Record, error)
	Put(ctx context.Context, rec Record) error
	Delete(ctx context.Context, name string) error

	// List returns every stored entry ordered by name.
	List(ctx context.Context) ([]Entry, error)

	Close() error
}

// ValidateName checks that name can be used as a storage key on every
// backend: non-empty, no path separators, no leading dot.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidName, name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidName, name)
	}
	return nil
}

func cloneRecord(rec Record) Record {
	rec.Document = append([]byte(nil), rec.Document...)
	return rec
}
