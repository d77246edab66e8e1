package convert

import (
	"fmt"
	"strings"

	"github.com/cozy/prosemirror-go/model"

	"github.com/quillon/masonry/internal/block"
	"github.com/quillon/masonry/internal/schema"
)

// FrameFromPartial serializes one partial block into a block frame
// node. Type is required; a missing id is filled from the generator;
// unset props take the schema defaults; missing content serializes
// empty. Children on a type that forbids them fail with
// ErrInvalidPlacement.
func (cv *Converter) FrameFromPartial(p block.PartialBlock) (*model.Node, error) {
	if p.Type == "" {
		return nil, fmt.Errorf("%w: partial block needs a type to create content", block.ErrMissingType)
	}
	spec, ok := cv.reg.Spec(p.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", block.ErrUnknownBlockType, p.Type)
	}

	attrs, err := cv.reg.AttrsFor(p.Type, p.Props)
	if err != nil {
		return nil, err
	}
	contentNode, err := cv.contentNode(p.Type, spec, attrs, p.Content)
	if err != nil {
		return nil, err
	}

	frameChildren := []*model.Node{contentNode}
	if len(p.Children) > 0 {
		if !spec.AllowsChildren {
			return nil, fmt.Errorf("%w: %q cannot hold nested blocks", block.ErrInvalidPlacement, p.Type)
		}
		frames, err := cv.FramesFromPartials(p.Children)
		if err != nil {
			return nil, err
		}
		group, err := cv.Group(frames)
		if err != nil {
			return nil, err
		}
		frameChildren = append(frameChildren, group)
	}

	id := p.ID
	if id == "" {
		id = cv.newID()
	}
	frame, err := cv.reg.Engine().Node(schema.NodeContainer,
		map[string]interface{}{schema.AttrID: id},
		model.FragmentFromArray(frameChildren))
	if err != nil {
		return nil, fmt.Errorf("build block frame: %w", err)
	}
	return frame, nil
}

// FramesFromPartials serializes partials in order.
func (cv *Converter) FramesFromPartials(partials []block.PartialBlock) ([]*model.Node, error) {
	frames := make([]*model.Node, 0, len(partials))
	for i, p := range partials {
		frame, err := cv.FrameFromPartial(p)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// BuildContentNode builds a content node for typ from already
// validated attrs, used when rewriting an existing frame's content in
// place.
func (cv *Converter) BuildContentNode(typ string, attrs map[string]interface{}, content []block.InlineContent) (*model.Node, error) {
	spec, ok := cv.reg.Spec(typ)
	if !ok {
		return nil, fmt.Errorf("%w: %q", block.ErrUnknownBlockType, typ)
	}
	return cv.contentNode(typ, spec, attrs, content)
}

// InlineContentOf reads a content node's inline content back out,
// interpreted under typ's content kind.
func (cv *Converter) InlineContentOf(contentNode *model.Node, typ string) []block.InlineContent {
	switch cv.reg.ContentKindOf(typ) {
	case schema.ContentCode:
		return codeFromContent(contentNode)
	case schema.ContentNone:
		return nil
	default:
		return cv.inlineFromContent(contentNode)
	}
}

// contentNode builds the frame's first child: the node carrying the
// block's type, props, and inline content.
func (cv *Converter) contentNode(typ string, spec schema.BlockSpec, attrs map[string]interface{}, content []block.InlineContent) (*model.Node, error) {
	var inline []*model.Node
	switch spec.Content {
	case schema.ContentInline:
		inline = cv.inlineNodes(content)
	case schema.ContentCode:
		if text := block.PlainText(content); text != "" {
			inline = []*model.Node{cv.reg.Engine().Text(text, nil)}
		}
	case schema.ContentNone:
		// Props-only block; any provided content is dropped.
	}

	node, err := cv.reg.Engine().Node(typ, attrs, model.FragmentFromArray(inline))
	if err != nil {
		return nil, fmt.Errorf("build %s content node: %w", typ, err)
	}
	return node, nil
}

// inlineNodes serializes runs into engine text nodes. Empty runs are
// skipped: the engine forbids empty text nodes.
func (cv *Converter) inlineNodes(content []block.InlineContent) []*model.Node {
	var nodes []*model.Node
	for _, ic := range content {
		switch run := ic.(type) {
		case block.StyledText:
			if run.Text == "" {
				continue
			}
			nodes = append(nodes, cv.reg.Engine().Text(run.Text, cv.reg.MarksFor(run.Styles)))
		case block.Link:
			for _, inner := range run.Content {
				if inner.Text == "" {
					continue
				}
				nodes = append(nodes, cv.reg.Engine().Text(inner.Text, cv.reg.MarksForRun(inner.Styles, run.Href)))
			}
		}
	}
	return nodes
}

// Group wraps frames in a children-group node. The group content model
// requires at least one frame.
func (cv *Converter) Group(frames []*model.Node) (*model.Node, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: children group needs at least one block", block.ErrNoBlocks)
	}
	group, err := cv.reg.Engine().Node(schema.NodeGroup, nil, model.FragmentFromArray(frames))
	if err != nil {
		return nil, fmt.Errorf("build children group: %w", err)
	}
	return group, nil
}

// EmptyFrame builds a frame of the default block type with no content,
// used when a document or group must not end up empty.
func (cv *Converter) EmptyFrame() (*model.Node, error) {
	return cv.FrameFromPartial(block.PartialBlock{Type: schema.DefaultBlockType})
}

// DocFromPartials builds a whole document node. An empty partial list
// produces a document holding one empty default block, keeping the
// document's group non-empty.
func (cv *Converter) DocFromPartials(partials []block.PartialBlock) (*model.Node, error) {
	frames, err := cv.FramesFromPartials(partials)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		frame, err := cv.EmptyFrame()
		if err != nil {
			return nil, err
		}
		frames = []*model.Node{frame}
	}
	group, err := cv.Group(frames)
	if err != nil {
		return nil, err
	}
	doc, err := cv.reg.Engine().Node(schema.NodeDoc, nil, model.FragmentFromArray([]*model.Node{group}))
	if err != nil {
		return nil, fmt.Errorf("build document: %w", err)
	}
	return doc, nil
}

// PartialsFromBlocks converts snapshot blocks back into partials, used
// when re-inserting existing blocks elsewhere.
func PartialsFromBlocks(blocks []block.Block) []block.PartialBlock {
	out := make([]block.PartialBlock, len(blocks))
	for i := range blocks {
		out[i] = blocks[i].ToPartial()
	}
	return out
}

// Describe returns a short human-readable form of a partial for log
// and error text, like "paragraph(id=abc)".
func Describe(p block.PartialBlock) string {
	var sb strings.Builder
	if p.Type == "" {
		sb.WriteString("untyped")
	} else {
		sb.WriteString(p.Type)
	}
	if p.ID != "" {
		sb.WriteString("(id=")
		sb.WriteString(p.ID)
		sb.WriteString(")")
	}
	return sb.String()
}
