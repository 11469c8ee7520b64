package session

import (
	"errors"
	"fmt"
)

var (
	// ErrRejected is returned when the editor leaves the tree unchanged.
	ErrRejected = errors.New("operation rejected")

	// ErrExists is returned by Create when the name is already taken.
	ErrExists = errors.New("query already exists")
)

// RejectedError names the operation and node the editor refused.
type RejectedError struct {
	Operation string
	NodeID    string
}

// Error implements the error interface.
func (e *RejectedError) Error() string {
	if e.NodeID == "" {
		return fmt.Sprintf("%s: %v", e.Operation, ErrRejected)
	}
	return fmt.Sprintf("%s node %q: %v", e.Operation, e.NodeID, ErrRejected)
}

// Unwrap returns ErrRejected.
func (e *RejectedError) Unwrap() error {
	return ErrRejected
}

// Require turns an editor's boolean result into an error.
func Require(ok bool, operation, nodeID string) error {
	if ok {
		return nil
	}
	return &RejectedError{Operation: operation, NodeID: nodeID}
}
