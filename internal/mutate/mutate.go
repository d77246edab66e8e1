// Package mutate computes position-accurate edit batches from block
// level intents. Each public operation resolves and validates every
// target against the current document before any step is built, then
// returns a Plan whose steps apply as one atomic batch: the runner
// yields either a fully transformed document or the untouched input.
package mutate

import (
	"github.com/cozy/prosemirror-go/transform"

	"github.com/quillon/masonry/internal/convert"
	"github.com/quillon/masonry/internal/schema"
)

// Placement selects where inserted blocks land relative to the
// reference block.
type Placement int

const (
	// Before inserts at the reference frame's start.
	Before Placement = iota

	// After inserts past the reference frame's end.
	After

	// Nested inserts as the reference block's first child, creating
	// the children group when absent.
	Nested
)

// String returns the placement's name.
func (p Placement) String() string {
	switch p {
	case Before:
		return "before"
	case After:
		return "after"
	case Nested:
		return "nested"
	default:
		return "unknown"
	}
}

// Mutator translates block intents into engine steps. It holds no
// document state; every operation takes the current document value.
type Mutator struct {
	cv *convert.Converter
}

// New creates a mutator over the given converter.
func New(cv *convert.Converter) *Mutator {
	return &Mutator{cv: cv}
}

func (m *Mutator) reg() *schema.Registry { return m.cv.Registry() }

// Plan is one computed edit batch. InsertedIDs lists the ids of the
// top-level frames the plan adds, in insertion order.
type Plan struct {
	Steps       []transform.Step
	InsertedIDs []string
}
