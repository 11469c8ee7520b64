package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no query is stored under a name.
	ErrNotFound = errors.New("query not found")

	// ErrUnavailable matches every backend failure other than ErrNotFound.
	ErrUnavailable = errors.New("storage unavailable")

	// ErrInvalidName is returned for names that cannot be stored.
	ErrInvalidName = errors.New("invalid query name")
)

// StorageError represents an error from a storage backend.
type StorageError struct {
	Backend   string // Storage backend type ("memory", "file", "sqlite", "bolt")
	Operation string // Operation that failed ("get", "put", "delete", "list", ...)
	Name      string // Query name, empty for operations spanning all queries
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
	}
	return fmt.Sprintf("storage error [backend=%s, operation=%s, name=%s]: %v", e.Backend, e.Operation, e.Name, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// Is reports ErrUnavailable for every failure except a missing query.
func (e *StorageError) Is(target error) bool {
	return target == ErrUnavailable && !errors.Is(e.Cause, ErrNotFound)
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation, name string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Name:      name,
		Cause:     cause,
	}
}

// notFound returns the not-found error for name.
func notFound(backend, operation, name string) *StorageError {
	return NewStorageError(backend, operation, name, ErrNotFound)
}
