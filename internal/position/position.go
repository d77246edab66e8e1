// Package position resolves linear document offsets to block frames.
// Every frame occupies a contiguous range [StartPos, EndPos); the open
// and close boundary tokens each cost one position unit, so content
// arithmetic uses small fixed offsets from the frame boundaries.
package position

import (
	"github.com/cozy/prosemirror-go/model"

	"github.com/quillon/masonry/internal/schema"
)

// Info describes one resolved block frame.
type Info struct {
	// Frame is the container node for the block.
	Frame *model.Node

	// ContentNode is the frame's first child, carrying type and props.
	ContentNode *model.Node

	// ID is the block id stored on the frame.
	ID string

	// StartPos and EndPos bound the frame: StartPos is the position of
	// its open token, EndPos the position just past its close token.
	// StartPos+1 is the first position inside the content node.
	StartPos int
	EndPos   int

	// Depth is the number of enclosing block frames; 0 for top-level.
	Depth int
}

// Context extends Info with sibling and parent identity inside the
// parent group.
type Context struct {
	Info

	// Index is the frame's index within its parent group; Count the
	// group's frame count.
	Index int
	Count int

	// PrevID and NextID are the adjacent sibling ids, empty at the
	// group edges. ParentID is the enclosing block's id, empty for
	// top-level frames.
	PrevID   string
	NextID   string
	ParentID string
}

// InfoAt resolves pos to its deepest enclosing block frame. The
// second return is false when pos lies outside every frame, such as
// between two sibling frames or outside the document; callers treat
// that as no context, not an error.
func InfoAt(doc *model.Node, pos int) (Info, bool) {
	rp, err := doc.Resolve(pos)
	if err != nil {
		return Info{}, false
	}
	info, _, ok := infoFromResolved(rp)
	return info, ok
}

// ContextAt is InfoAt plus sibling and parent lookups.
func ContextAt(doc *model.Node, pos int) (Context, bool) {
	rp, err := doc.Resolve(pos)
	if err != nil {
		return Context{}, false
	}
	info, d, ok := infoFromResolved(rp)
	if !ok {
		return Context{}, false
	}

	group := rp.Node(d - 1)
	index := rp.Index(d - 1)
	ctx := Context{
		Info:  info,
		Index: index,
		Count: group.ChildCount(),
	}
	if prev := group.MaybeChild(index - 1); prev != nil {
		ctx.PrevID, _ = prev.Attrs[schema.AttrID].(string)
	}
	if next := group.MaybeChild(index + 1); next != nil {
		ctx.NextID, _ = next.Attrs[schema.AttrID].(string)
	}
	for dd := d - 1; dd >= 1; dd-- {
		if rp.Node(dd).Type.Name == schema.NodeContainer {
			ctx.ParentID, _ = rp.Node(dd).Attrs[schema.AttrID].(string)
			break
		}
	}
	return ctx, true
}

// infoFromResolved finds the deepest container ancestor of rp. It
// returns the frame info, the container's resolved depth, and whether
// a container encloses the position at all.
func infoFromResolved(rp *model.ResolvedPos) (Info, int, bool) {
	for d := rp.Depth; d >= 1; d-- {
		node := rp.Node(d)
		if node.Type.Name != schema.NodeContainer {
			continue
		}
		start := rp.Start(d) - 1
		info := Info{
			Frame:       node,
			ContentNode: node.MaybeChild(0),
			StartPos:    start,
			EndPos:      start + node.NodeSize(),
		}
		info.ID, _ = node.Attrs[schema.AttrID].(string)
		for dd := d - 1; dd >= 1; dd-- {
			if rp.Node(dd).Type.Name == schema.NodeContainer {
				info.Depth++
			}
		}
		return info, d, true
	}
	return Info{}, 0, false
}

// StartCursor returns the position a cursor should take at the start
// of the block: just inside the content node for text-bearing kinds,
// on the content node itself for contentless kinds.
func StartCursor(info Info, kind schema.ContentKind) int {
	if kind == schema.ContentNone {
		return info.StartPos + 1
	}
	return info.StartPos + 2
}

// EndCursor returns the position a cursor should take at the end of
// the block's own content, before any nested children.
func EndCursor(info Info, kind schema.ContentKind) int {
	if kind == schema.ContentNone || info.ContentNode == nil {
		return info.StartPos + 1
	}
	return info.StartPos + info.ContentNode.NodeSize()
}

// GroupStart returns the first position inside the frame's children
// group, reported only when the group exists. New nested blocks land
// here.
func GroupStart(info Info) (int, bool) {
	content := info.ContentNode
	if content == nil || info.Frame.MaybeChild(1) == nil {
		return 0, false
	}
	return info.StartPos + 1 + content.NodeSize() + 1, true
}
