package mutate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cozy/prosemirror-go/model"
	"github.com/cozy/prosemirror-go/transform"

	"github.com/quillon/masonry/internal/block"
	"github.com/quillon/masonry/internal/position"
)

// rangeEdit is one planned range replacement; nil nodes delete.
type rangeEdit struct {
	from, to int
	nodes    []*model.Node
}

// RemoveBlocks plans deleting the targets. Every id must resolve or
// the whole call fails naming the missing ids; nothing is removed on
// failure. Targets nested inside other targets are dropped, since the
// ancestor's range subsumes them.
func (m *Mutator) RemoveBlocks(doc *model.Node, ids []string) (*Plan, error) {
	survivors, err := m.resolveTargets(doc, ids)
	if err != nil {
		return nil, err
	}
	edits, err := m.planRemovalEdits(doc, survivors, nil)
	if err != nil {
		return nil, err
	}
	return &Plan{Steps: editsToSteps(edits)}, nil
}

// resolveTargets dedupes ids, resolves each frame, and returns the
// subsumption survivors ordered by document position.
func (m *Mutator) resolveTargets(doc *model.Node, ids []string) ([]position.Info, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no target blocks", block.ErrNoBlocks)
	}
	deduped := dedupe(ids)
	found, missing := position.InfoOfIDs(doc, deduped)
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", block.ErrBlockNotFound, strings.Join(missing, ", "))
	}

	infos := make([]position.Info, 0, len(found))
	for _, id := range deduped {
		infos = append(infos, found[id])
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].StartPos < infos[j].StartPos })

	// Frame ranges either nest or are disjoint, so a target starting
	// inside the covering range is contained in it.
	survivors := infos[:0]
	coverEnd := -1
	for _, info := range infos {
		if info.StartPos >= coverEnd {
			survivors = append(survivors, info)
			coverEnd = info.EndPos
		}
	}
	return survivors, nil
}

// planRemovalEdits turns the surviving targets into range edits. When
// the targets cover every frame of a children group, the whole group
// is removed in one step so no intermediate document is left with an
// empty group; an emptied top level is refilled with one empty default
// block. Groups named in occupied are exempt, since the caller is
// inserting into them.
func (m *Mutator) planRemovalEdits(doc *model.Node, survivors []position.Info, occupied map[string]bool) ([]rangeEdit, error) {
	perParent := make(map[string][]position.Info)
	groupSize := make(map[string]int)
	for _, s := range survivors {
		ctx, ok := position.ContextAt(doc, s.StartPos+1)
		if !ok {
			return nil, fmt.Errorf("%w: block %q", block.ErrBlockNotFound, s.ID)
		}
		perParent[ctx.ParentID] = append(perParent[ctx.ParentID], s)
		groupSize[ctx.ParentID] = ctx.Count
	}

	var edits []rangeEdit
	for parentID, members := range perParent {
		if !occupied[parentID] && len(members) == groupSize[parentID] {
			edit, err := m.emptiedGroupEdit(doc, parentID)
			if err != nil {
				return nil, err
			}
			edits = append(edits, edit)
			continue
		}
		for _, member := range members {
			edits = append(edits, rangeEdit{from: member.StartPos, to: member.EndPos})
		}
	}
	return edits, nil
}

// emptiedGroupEdit removes a fully targeted children group in one
// step. The top-level group must keep at least one block, so it is
// refilled instead.
func (m *Mutator) emptiedGroupEdit(doc *model.Node, parentID string) (rangeEdit, error) {
	if parentID == "" {
		top := doc.MaybeChild(0)
		if top == nil {
			return rangeEdit{}, fmt.Errorf("%w: document has no block group", block.ErrInvalidContent)
		}
		frame, err := m.cv.EmptyFrame()
		if err != nil {
			return rangeEdit{}, err
		}
		return rangeEdit{from: 1, to: top.NodeSize() - 1, nodes: []*model.Node{frame}}, nil
	}

	pInfo, ok := position.InfoOfID(doc, parentID)
	if !ok || pInfo.ContentNode == nil {
		return rangeEdit{}, fmt.Errorf("%w: %q", block.ErrBlockNotFound, parentID)
	}
	contentEnd := pInfo.StartPos + 1 + pInfo.ContentNode.NodeSize()
	return rangeEdit{from: contentEnd, to: pInfo.EndPos - 1}, nil
}

// editsToSteps orders edits by descending position, so applying them
// in sequence never shifts a later edit's range.
func editsToSteps(edits []rangeEdit) []transform.Step {
	sort.Slice(edits, func(i, j int) bool { return edits[i].from > edits[j].from })
	steps := make([]transform.Step, 0, len(edits))
	for _, e := range edits {
		if len(e.nodes) == 0 {
			steps = append(steps, deleteStep(e.from, e.to))
		} else {
			steps = append(steps, replaceRangeStep(e.from, e.to, e.nodes))
		}
	}
	return steps
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
