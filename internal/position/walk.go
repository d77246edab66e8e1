package position

import (
	"github.com/cozy/prosemirror-go/model"

	"github.com/quillon/masonry/internal/schema"
)

// Action steers a frame walk.
type Action int

const (
	// Descend continues into the frame's nested frames.
	Descend Action = iota

	// SkipChildren continues with the next frame at the same or a
	// shallower level.
	SkipChildren

	// Halt ends the walk.
	Halt
)

type walkLevel struct {
	group *model.Node
	pos   int
	idx   int
	depth int
}

// Walk visits every block frame in document order, parents before
// children, reporting each frame's start position and nesting depth.
// The walk is iterative; frame depth never grows the call stack.
func Walk(doc *model.Node, fn func(frame *model.Node, start, depth int) Action) {
	group := doc.MaybeChild(0)
	if group == nil {
		return
	}
	stack := []walkLevel{{group: group, pos: 1}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.idx >= top.group.ChildCount() {
			stack = stack[:len(stack)-1]
			continue
		}
		frame := top.group.MaybeChild(top.idx)
		start := top.pos
		depth := top.depth
		top.idx++
		if frame == nil {
			continue
		}
		top.pos += frame.NodeSize()

		switch fn(frame, start, depth) {
		case Halt:
			return
		case SkipChildren:
			continue
		}
		content := frame.MaybeChild(0)
		if sub := frame.MaybeChild(1); sub != nil && content != nil {
			stack = append(stack, walkLevel{
				group: sub,
				pos:   start + 1 + content.NodeSize() + 1,
				depth: depth + 1,
			})
		}
	}
}

func infoForFrame(frame *model.Node, start, depth int) Info {
	info := Info{
		Frame:       frame,
		ContentNode: frame.MaybeChild(0),
		StartPos:    start,
		EndPos:      start + frame.NodeSize(),
		Depth:       depth,
	}
	info.ID, _ = frame.Attrs[schema.AttrID].(string)
	return info
}

// InfoOfID locates the frame carrying the given block id. The first
// match in document order wins.
func InfoOfID(doc *model.Node, id string) (Info, bool) {
	var found Info
	ok := false
	Walk(doc, func(frame *model.Node, start, depth int) Action {
		if fid, _ := frame.Attrs[schema.AttrID].(string); fid == id {
			found = infoForFrame(frame, start, depth)
			ok = true
			return Halt
		}
		return Descend
	})
	return found, ok
}

// InfoOfIDs resolves several ids in one document pass. It returns the
// resolved frames plus the ids that did not resolve, in input order.
func InfoOfIDs(doc *model.Node, ids []string) (map[string]Info, []string) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	found := make(map[string]Info, len(ids))
	Walk(doc, func(frame *model.Node, start, depth int) Action {
		id, _ := frame.Attrs[schema.AttrID].(string)
		if want[id] {
			if _, dup := found[id]; !dup {
				found[id] = infoForFrame(frame, start, depth)
			}
			if len(found) == len(want) {
				return Halt
			}
		}
		return Descend
	})
	var missing []string
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := found[id]; !ok && !seen[id] {
			missing = append(missing, id)
			seen[id] = true
		}
	}
	return found, missing
}

// chain holds the container ancestors of a position, outermost first.
type chainEntry struct {
	Info
	group *model.Node
	index int
}

func chainAt(doc *model.Node, pos int) ([]chainEntry, bool) {
	rp, err := doc.Resolve(pos)
	if err != nil {
		return nil, false
	}
	var chain []chainEntry
	depth := 0
	for d := 1; d <= rp.Depth; d++ {
		node := rp.Node(d)
		if node.Type.Name != schema.NodeContainer {
			continue
		}
		start := rp.Start(d) - 1
		entry := chainEntry{
			Info: Info{
				Frame:       node,
				ContentNode: node.MaybeChild(0),
				StartPos:    start,
				EndPos:      start + node.NodeSize(),
				Depth:       depth,
			},
			group: rp.Node(d - 1),
			index: rp.Index(d - 1),
		}
		entry.ID, _ = node.Attrs[schema.AttrID].(string)
		chain = append(chain, entry)
		depth++
	}
	return chain, len(chain) > 0
}

// SelectionFrames returns the frames spanned by the range from..to:
// the sibling run at the deepest level containing both endpoints. A
// collapsed range yields the single enclosing frame. Endpoints outside
// every frame fall back to the topmost frames overlapping the range.
func SelectionFrames(doc *model.Node, from, to int) []Info {
	lo, hi := from, to
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi {
		if info, ok := InfoAt(doc, lo); ok {
			return []Info{info}
		}
		return nil
	}

	ca, okA := chainAt(doc, lo)
	cb, okB := chainAt(doc, hi)
	if !okA || !okB {
		return overlapFrames(doc, lo, hi)
	}

	// Length of the shared ancestor prefix.
	k := 0
	for k < len(ca) && k < len(cb) && ca[k].Frame == cb[k].Frame {
		k++
	}
	if k == len(ca) || k == len(cb) {
		// One endpoint's deepest frame encloses the other endpoint.
		return []Info{ca[k-1].Info}
	}

	// Divergent siblings: collect the run between them in their shared
	// group.
	a, b := ca[k], cb[k]
	run := make([]Info, 0, b.index-a.index+1)
	pos := a.StartPos
	depth := a.Info.Depth
	for idx := a.index; idx <= b.index; idx++ {
		frame := a.group.MaybeChild(idx)
		if frame == nil {
			break
		}
		run = append(run, infoForFrame(frame, pos, depth))
		pos += frame.NodeSize()
	}
	return run
}

// overlapFrames collects the topmost frames whose ranges overlap
// [lo, hi), used when a selection endpoint sits outside every frame.
func overlapFrames(doc *model.Node, lo, hi int) []Info {
	var out []Info
	Walk(doc, func(frame *model.Node, start, depth int) Action {
		if start >= hi {
			return Halt
		}
		if start+frame.NodeSize() <= lo {
			return SkipChildren
		}
		out = append(out, infoForFrame(frame, start, depth))
		return SkipChildren
	})
	return out
}
