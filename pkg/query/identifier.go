package query

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces node identifiers. Implementations must never return the
// same value twice for the lifetime of the process.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator generates random (version 4) UUID identifiers.
type UUIDGenerator struct{}

// NewID returns a new random UUID string.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// SequenceGenerator hands out decimal identifiers "1", "2", ... in order.
// It is safe for concurrent use.
type SequenceGenerator struct {
	next atomic.Int64
}

// NewSequenceGenerator returns a generator whose first identifier is start.
func NewSequenceGenerator(start int64) *SequenceGenerator {
	g := &SequenceGenerator{}
	g.next.Store(start - 1)
	return g
}

// NewID returns the next identifier in the sequence.
func (g *SequenceGenerator) NewID() string {
	return strconv.FormatInt(g.next.Add(1), 10)
}
