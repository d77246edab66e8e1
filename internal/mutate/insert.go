package mutate

import (
	"fmt"

	"github.com/cozy/prosemirror-go/model"
	"github.com/cozy/prosemirror-go/transform"

	"github.com/quillon/masonry/internal/block"
	"github.com/quillon/masonry/internal/position"
)

// InsertBlocks plans inserting partials relative to the block with the
// given reference id. All validation happens before any step exists:
// an error means the document is untouched.
func (m *Mutator) InsertBlocks(doc *model.Node, ref string, partials []block.PartialBlock, place Placement) (*Plan, error) {
	if len(partials) == 0 {
		return nil, fmt.Errorf("%w: nothing to insert", block.ErrNoBlocks)
	}
	info, ok := position.InfoOfID(doc, ref)
	if !ok {
		return nil, fmt.Errorf("%w: %q", block.ErrBlockNotFound, ref)
	}
	frames, err := m.cv.FramesFromPartials(partials)
	if err != nil {
		return nil, err
	}

	var step transform.Step
	switch place {
	case Before:
		step = insertStep(info.StartPos, frames)
	case After:
		step = insertStep(info.EndPos, frames)
	case Nested:
		step, err = m.nestedInsertStep(info, frames)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: placement %d", block.ErrInvalidPlacement, int(place))
	}

	return &Plan{
		Steps:       []transform.Step{step},
		InsertedIDs: frameIDs(frames),
	}, nil
}

// nestedInsertStep prepends frames inside the reference block's
// children group, wrapping them in a fresh group when the block has no
// children yet.
func (m *Mutator) nestedInsertStep(info position.Info, frames []*model.Node) (transform.Step, error) {
	if info.ContentNode == nil {
		return nil, fmt.Errorf("%w: block %q has no content node", block.ErrInvalidContent, info.ID)
	}
	typ := info.ContentNode.Type.Name
	if !m.reg().AllowsChildren(typ) {
		return nil, fmt.Errorf("%w: %q cannot hold nested blocks", block.ErrInvalidPlacement, typ)
	}
	if gs, ok := position.GroupStart(info); ok {
		return insertStep(gs, frames), nil
	}
	group, err := m.cv.Group(frames)
	if err != nil {
		return nil, err
	}
	return insertStep(info.EndPos-1, []*model.Node{group}), nil
}
