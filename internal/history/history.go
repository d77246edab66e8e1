// Package history tracks applied edit batches for undo and redo. Each
// entry pairs a batch's forward steps with their inverses; undo and
// redo hand the right step list to an applier supplied by the caller,
// so the history never touches the document itself.
package history

import (
	"errors"
	"sync"
	"time"

	"github.com/cozy/prosemirror-go/transform"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Entry is one undoable edit batch.
type Entry struct {
	// Label names the operation for tooling, like "insert" or
	// "remove".
	Label string

	// Applied are the forward steps, in application order.
	Applied []transform.Step

	// Inverted are the inverse steps, ordered so applying them undoes
	// the batch.
	Inverted []transform.Step

	timestamp time.Time
}

// History manages undo/redo state for one document.
type History struct {
	mu sync.Mutex

	undoStack []*Entry
	redoStack []*Entry

	// Grouping state
	grouping   bool
	groupLabel string
	groupEntry *Entry

	maxEntries int
}

// New creates a history keeping at most maxEntries undo entries.
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = 100
	}
	return &History{maxEntries: maxEntries}
}

// Record adds an applied batch to the undo stack and clears the redo
// stack. While a group is open, batches accumulate into one entry.
func (h *History) Record(label string, applied, inverted []transform.Step) {
	if len(applied) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.redoStack = nil

	if h.grouping {
		if h.groupEntry == nil {
			h.groupEntry = &Entry{Label: h.groupLabel, timestamp: time.Now()}
		}
		h.groupEntry.Applied = append(h.groupEntry.Applied, applied...)
		// Undoing a group replays the inverses newest first.
		h.groupEntry.Inverted = append(append([]transform.Step{}, inverted...), h.groupEntry.Inverted...)
		return
	}

	h.pushLocked(&Entry{
		Label:     label,
		Applied:   applied,
		Inverted:  inverted,
		timestamp: time.Now(),
	})
}

// pushLocked adds an entry without acquiring the lock.
func (h *History) pushLocked(e *Entry) {
	h.undoStack = append(h.undoStack, e)
	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo pops the newest entry and applies its inverse steps through
// apply. The lock is released during application; on failure the entry
// is restored and the error returned.
func (h *History) Undo(apply func(steps []transform.Step) error) (*Entry, error) {
	h.mu.Lock()
	if h.grouping {
		h.mu.Unlock()
		return nil, ErrNothingToUndo
	}
	if len(h.undoStack) == 0 {
		h.mu.Unlock()
		return nil, ErrNothingToUndo
	}
	entry := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.mu.Unlock()

	if err := apply(entry.Inverted); err != nil {
		h.mu.Lock()
		h.undoStack = append(h.undoStack, entry)
		h.mu.Unlock()
		return nil, err
	}

	h.mu.Lock()
	h.redoStack = append(h.redoStack, entry)
	h.mu.Unlock()
	return entry, nil
}

// Redo reapplies the newest undone entry through apply. On failure the
// entry stays on the redo stack.
func (h *History) Redo(apply func(steps []transform.Step) error) (*Entry, error) {
	h.mu.Lock()
	if h.grouping || len(h.redoStack) == 0 {
		h.mu.Unlock()
		return nil, ErrNothingToRedo
	}
	entry := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.mu.Unlock()

	if err := apply(entry.Applied); err != nil {
		h.mu.Lock()
		h.redoStack = append(h.redoStack, entry)
		h.mu.Unlock()
		return nil, err
	}

	h.mu.Lock()
	h.undoStack = append(h.undoStack, entry)
	h.mu.Unlock()
	return entry, nil
}

// BeginGroup starts an undo group. Batches recorded until EndGroup
// combine into a single undo unit. Nested calls are ignored.
func (h *History) BeginGroup(label string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		return
	}
	h.grouping = true
	h.groupLabel = label
	h.groupEntry = nil
}

// EndGroup closes the open group and pushes its combined entry.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return
	}
	h.grouping = false
	if h.groupEntry != nil {
		h.pushLocked(h.groupEntry)
		h.groupEntry = nil
	}
}

// CancelGroup closes the open group and discards its combined entry.
// The applied batches stay in the document; they just stop being
// undoable as a unit.
func (h *History) CancelGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return
	}
	h.grouping = false
	h.groupEntry = nil
}

// CanUndo reports whether an undo entry is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.grouping && len(h.undoStack) > 0
}

// CanRedo reports whether a redo entry is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.grouping && len(h.redoStack) > 0
}

// UndoCount returns the number of undo entries.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo entries.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// Clear drops all history state.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undoStack = nil
	h.redoStack = nil
	h.grouping = false
	h.groupEntry = nil
}
