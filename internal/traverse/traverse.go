// Package traverse walks block trees depth first without recursion.
// The walker is pull-based: callers draw one block at a time, may skip
// the current block's children, and may abandon the walk at any point.
package traverse

import "github.com/quillon/masonry/internal/block"

// Item is one step of a walk.
type Item struct {
	// Block points into the walked tree; treat it as read-only.
	Block *block.Block

	// Depth is the nesting depth, 0 for top-level blocks.
	Depth int
}

// Signal steers a visitor-driven walk.
type Signal int

const (
	// Continue proceeds into the block's children, then siblings.
	Continue Signal = iota

	// SkipChildren proceeds to the next sibling without descending.
	SkipChildren

	// Stop ends the walk.
	Stop
)

type frame struct {
	blocks []block.Block
	next   int
}

// Walker yields the blocks of a tree in document order, parents before
// children. The zero value is an exhausted walker; use New.
type Walker struct {
	stack   []frame
	reverse bool

	// pending are the children of the last yielded block, queued for
	// descent unless SkipChildren intervenes.
	pending []block.Block
	depth   int
}

// New returns a walker over blocks. With reverse set, siblings are
// visited last to first at every level; parents still precede their
// children.
func New(blocks []block.Block, reverse bool) *Walker {
	w := &Walker{reverse: reverse}
	if len(blocks) > 0 {
		w.stack = append(w.stack, w.newFrame(blocks))
	}
	return w
}

func (w *Walker) newFrame(blocks []block.Block) frame {
	if w.reverse {
		return frame{blocks: blocks, next: len(blocks) - 1}
	}
	return frame{blocks: blocks, next: 0}
}

// Next yields the next block in the walk. It returns false when the
// walk is exhausted.
func (w *Walker) Next() (Item, bool) {
	if len(w.pending) > 0 {
		w.stack = append(w.stack, w.newFrame(w.pending))
		w.pending = nil
	}
	for len(w.stack) > 0 {
		top := &w.stack[len(w.stack)-1]
		if top.next < 0 || top.next >= len(top.blocks) {
			w.stack = w.stack[:len(w.stack)-1]
			continue
		}
		b := &top.blocks[top.next]
		if w.reverse {
			top.next--
		} else {
			top.next++
		}
		w.pending = b.Children
		w.depth = len(w.stack) - 1
		return Item{Block: b, Depth: w.depth}, true
	}
	return Item{}, false
}

// SkipChildren prevents descent into the children of the block most
// recently yielded by Next.
func (w *Walker) SkipChildren() {
	w.pending = nil
}

// Each walks blocks with fn, honoring the returned signal. It reports
// whether the walk ran to completion (false when fn returned Stop).
func Each(blocks []block.Block, reverse bool, fn func(Item) Signal) bool {
	w := New(blocks, reverse)
	for it, ok := w.Next(); ok; it, ok = w.Next() {
		switch fn(it) {
		case Stop:
			return false
		case SkipChildren:
			w.SkipChildren()
		}
	}
	return true
}

// Find locates the block with the given id, searching depth first.
func Find(blocks []block.Block, id string) (*block.Block, bool) {
	w := New(blocks, false)
	for it, ok := w.Next(); ok; it, ok = w.Next() {
		if it.Block.ID == id {
			return it.Block, true
		}
	}
	return nil, false
}

// Count returns the number of blocks in the tree, nested included.
func Count(blocks []block.Block) int {
	n := 0
	w := New(blocks, false)
	for _, ok := w.Next(); ok; _, ok = w.Next() {
		n++
	}
	return n
}
