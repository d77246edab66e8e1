package mutate

import (
	"github.com/cozy/prosemirror-go/model"
	"github.com/cozy/prosemirror-go/transform"

	"github.com/quillon/masonry/internal/block"
	"github.com/quillon/masonry/internal/position"
)

// ReplaceBlocks plans swapping the target blocks for the given
// partials. Targets forming a contiguous same-depth run are replaced
// in place with one step. Otherwise the partials are inserted at the
// first target's original position and every target is deleted; for
// `[A, B, C]` with targets `[A, C]` and insertion `[X]` this yields
// `[X, B]`, not `[B, X]`. An empty partial list degrades to removal.
func (m *Mutator) ReplaceBlocks(doc *model.Node, ids []string, partials []block.PartialBlock) (*Plan, error) {
	survivors, err := m.resolveTargets(doc, ids)
	if err != nil {
		return nil, err
	}
	if len(partials) == 0 {
		edits, err := m.planRemovalEdits(doc, survivors, nil)
		if err != nil {
			return nil, err
		}
		return &Plan{Steps: editsToSteps(edits)}, nil
	}

	frames, err := m.cv.FramesFromPartials(partials)
	if err != nil {
		return nil, err
	}

	if isContiguousRun(survivors, len(dedupe(ids))) {
		first, last := survivors[0], survivors[len(survivors)-1]
		return &Plan{
			Steps:       []transform.Step{replaceRangeStep(first.StartPos, last.EndPos, frames)},
			InsertedIDs: frameIDs(frames),
		}, nil
	}

	// Insertion lands at the first target's position: the first id
	// given, not the first in document order.
	first, _ := position.InfoOfID(doc, ids[0])
	insertAt := first.StartPos

	// An insertion point inside another target's range is deleted
	// along with it; the net effect is plain removal.
	for _, s := range survivors {
		if s.StartPos < insertAt && insertAt < s.EndPos {
			edits, err := m.planRemovalEdits(doc, survivors, nil)
			if err != nil {
				return nil, err
			}
			return &Plan{Steps: editsToSteps(edits)}, nil
		}
	}

	// The group receiving the insertion cannot be emptied by the
	// deletes.
	occupied := map[string]bool{}
	if ctx, ok := position.ContextAt(doc, insertAt+1); ok {
		occupied[ctx.ParentID] = true
	}
	edits, err := m.planRemovalEdits(doc, survivors, occupied)
	if err != nil {
		return nil, err
	}

	// Shift the delete ranges past the inserted size, expanding any
	// range that spans the insertion point.
	insSize := 0
	for _, f := range frames {
		insSize += f.NodeSize()
	}
	for i := range edits {
		if edits[i].from >= insertAt {
			edits[i].from += insSize
		}
		if edits[i].to > insertAt {
			edits[i].to += insSize
		}
	}

	steps := append([]transform.Step{insertStep(insertAt, frames)}, editsToSteps(edits)...)
	return &Plan{Steps: steps, InsertedIDs: frameIDs(frames)}, nil
}

// isContiguousRun reports whether the survivors are every target,
// sit at one depth, and abut each other in document order.
func isContiguousRun(survivors []position.Info, targetCount int) bool {
	if len(survivors) != targetCount {
		return false
	}
	for i := 1; i < len(survivors); i++ {
		if survivors[i].Depth != survivors[0].Depth {
			return false
		}
		if survivors[i].StartPos != survivors[i-1].EndPos {
			return false
		}
	}
	return true
}
