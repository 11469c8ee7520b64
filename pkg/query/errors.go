package query

import (
	"errors"
	"fmt"
)

var (
	// ErrInconsistentOperator is returned when an operator change would make
	// active siblings disagree.
	ErrInconsistentOperator = errors.New("operators should all be the same")

	// ErrInvalidOperator is returned for operators other than AND and OR.
	ErrInvalidOperator = errors.New("invalid operator")

	// ErrDuplicateID is returned when a tree contains the same node id twice.
	ErrDuplicateID = errors.New("duplicate node id")
)

// InconsistentOperatorError describes a rejected SetOperator call.
type InconsistentOperatorError struct {
	NodeID      string   // Node whose operator was being changed
	Wanted      Operator // Operator that was requested
	Conflicting string   // Sibling holding a different operator
	Existing    Operator // Operator held by the conflicting sibling
}

// Error implements the error interface.
func (e *InconsistentOperatorError) Error() string {
	return fmt.Sprintf("cannot set operator %s on node %q: sibling %q uses %s: %v",
		e.Wanted, e.NodeID, e.Conflicting, e.Existing, ErrInconsistentOperator)
}

// Unwrap returns ErrInconsistentOperator so callers can use errors.Is.
func (e *InconsistentOperatorError) Unwrap() error {
	return ErrInconsistentOperator
}
