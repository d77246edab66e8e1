package mutate

import (
	"fmt"

	"github.com/cozy/prosemirror-go/model"
	"github.com/cozy/prosemirror-go/transform"

	"github.com/quillon/masonry/internal/block"
	"github.com/quillon/masonry/internal/position"
)

// UpdateBlock plans a patch of the target block. Fields absent from
// the patch keep their current value: props merge per key (a nil value
// resets the prop to its default), content and children are replaced
// only when provided, and a type change rewrites the content node
// wrapper while carrying over props the new type declares. The block
// id is immutable; an id on the patch is ignored.
func (m *Mutator) UpdateBlock(doc *model.Node, target string, patch block.PartialBlock) (*Plan, error) {
	info, ok := position.InfoOfID(doc, target)
	if !ok {
		return nil, fmt.Errorf("%w: %q", block.ErrBlockNotFound, target)
	}
	content := info.ContentNode
	if content == nil {
		return nil, fmt.Errorf("%w: block %q has no content node", block.ErrInvalidContent, target)
	}

	curType := content.Type.Name
	newType := curType
	if patch.Type != "" {
		newType = patch.Type
	}
	spec, ok := m.reg().Spec(newType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", block.ErrUnknownBlockType, newType)
	}

	// Current props, restricted to what the new type declares, then
	// patched per key.
	merged := make(block.Props)
	for k, v := range m.reg().PropsFromAttrs(curType, content.Attrs) {
		if _, declared := spec.Props[k]; declared {
			merged[k] = v
		}
	}
	for k, v := range patch.Props {
		if v == nil {
			delete(merged, k)
		} else {
			merged[k] = v
		}
	}
	attrs, err := m.reg().AttrsFor(newType, merged)
	if err != nil {
		return nil, err
	}

	inline := patch.Content
	if !patch.HasContent() {
		inline = m.cv.InlineContentOf(content, curType)
	}
	newContent, err := m.cv.BuildContentNode(newType, attrs, inline)
	if err != nil {
		return nil, err
	}

	// The children step targets higher positions than the content
	// step, so it goes first; both are computed against the original
	// document.
	var steps []transform.Step
	if patch.Children != nil {
		childStep, err := m.childrenStep(info, newType, spec.AllowsChildren, patch.Children)
		if err != nil {
			return nil, err
		}
		if childStep != nil {
			steps = append(steps, childStep)
		}
	}
	contentStart := info.StartPos + 1
	steps = append(steps, replaceRangeStep(contentStart, contentStart+content.NodeSize(), []*model.Node{newContent}))

	return &Plan{Steps: steps}, nil
}

// childrenStep rewrites the target's children group. An empty child
// list drops the group; a non-empty list replaces it, or creates it
// when the block had no children.
func (m *Mutator) childrenStep(info position.Info, typ string, allowsChildren bool, children []block.PartialBlock) (transform.Step, error) {
	groupNode := info.Frame.MaybeChild(1)
	contentEnd := info.StartPos + 1 + info.ContentNode.NodeSize()

	if len(children) == 0 {
		if groupNode == nil {
			return nil, nil
		}
		return deleteStep(contentEnd, info.EndPos-1), nil
	}
	if !allowsChildren {
		return nil, fmt.Errorf("%w: %q cannot hold nested blocks", block.ErrInvalidPlacement, typ)
	}
	frames, err := m.cv.FramesFromPartials(children)
	if err != nil {
		return nil, err
	}
	group, err := m.cv.Group(frames)
	if err != nil {
		return nil, err
	}
	return replaceRangeStep(contentEnd, info.EndPos-1, []*model.Node{group}), nil
}
