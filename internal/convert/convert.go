// Package convert projects between the engine's flat node tree and
// the public block tree. The read side turns block frames into Block
// values, memoized by node identity; the write side serializes partial
// blocks into frame nodes for insertion.
package convert

import (
	"fmt"
	"strings"

	"github.com/cozy/prosemirror-go/model"

	"github.com/quillon/masonry/internal/block"
	"github.com/quillon/masonry/internal/blockcache"
	"github.com/quillon/masonry/internal/schema"
)

// Converter holds the schema registry, the identity cache, and the id
// generator shared by both projection directions.
type Converter struct {
	reg   *schema.Registry
	cache *blockcache.Cache
	newID func() string
}

// New creates a converter. newID is called once per serialized block
// that lacks an explicit id.
func New(reg *schema.Registry, cache *blockcache.Cache, newID func() string) *Converter {
	return &Converter{reg: reg, cache: cache, newID: newID}
}

// Registry returns the schema registry the converter validates against.
func (cv *Converter) Registry() *schema.Registry { return cv.reg }

// ToBlock converts one block frame into a Block, consulting the
// identity cache first. rev is the current document revision, used to
// age cache entries. The returned value is a shared snapshot; callers
// must not mutate it.
func (cv *Converter) ToBlock(frame *model.Node, rev uint64) (*block.Block, error) {
	if b, ok := cv.cache.Get(frame, rev); ok {
		return b, nil
	}

	content := frame.MaybeChild(0)
	if content == nil {
		return nil, fmt.Errorf("%w: block frame has no content node", block.ErrInvalidContent)
	}
	typ := content.Type.Name
	spec, ok := cv.reg.Spec(typ)
	if !ok {
		return nil, fmt.Errorf("%w: %q", block.ErrUnknownBlockType, typ)
	}

	id, _ := frame.Attrs[schema.AttrID].(string)

	var inline []block.InlineContent
	switch spec.Content {
	case schema.ContentInline:
		inline = cv.inlineFromContent(content)
	case schema.ContentCode:
		inline = codeFromContent(content)
	case schema.ContentNone:
		inline = nil
	}

	children := []block.Block{}
	if group := frame.MaybeChild(1); group != nil {
		var err error
		children, err = cv.blocksFromGroup(group, rev)
		if err != nil {
			return nil, err
		}
	}

	b := &block.Block{
		ID:       id,
		Type:     typ,
		Props:    cv.reg.PropsFromAttrs(typ, content.Attrs),
		Content:  inline,
		Children: children,
	}
	cv.cache.Put(frame, b, rev)
	return b, nil
}

// BlocksFromDoc converts the document's visible top-level frames in
// order. Unchanged subtrees resolve through the cache.
func (cv *Converter) BlocksFromDoc(doc *model.Node, rev uint64) ([]block.Block, error) {
	group := doc.MaybeChild(0)
	if group == nil {
		return []block.Block{}, nil
	}
	return cv.blocksFromGroup(group, rev)
}

func (cv *Converter) blocksFromGroup(group *model.Node, rev uint64) ([]block.Block, error) {
	out := make([]block.Block, 0, group.ChildCount())
	for i := 0; i < group.ChildCount(); i++ {
		frame := group.MaybeChild(i)
		if frame == nil {
			continue
		}
		b, err := cv.ToBlock(frame, rev)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, nil
}

// inlineFromContent reads the content node's text children into runs.
// A run boundary occurs at any change in the active style set; runs
// sharing a link href group into one Link.
func (cv *Converter) inlineFromContent(content *model.Node) []block.InlineContent {
	out := []block.InlineContent{}
	for i := 0; i < content.ChildCount(); i++ {
		child := content.MaybeChild(i)
		if child == nil || child.Text == nil || *child.Text == "" {
			continue
		}
		text := *child.Text
		st, href := cv.reg.StylesFor(child.Marks)

		if href != "" {
			if n := len(out); n > 0 {
				if ln, ok := out[n-1].(block.Link); ok && ln.Href == href {
					ln.Content = appendRun(ln.Content, text, st)
					out[n-1] = ln
					continue
				}
			}
			out = append(out, block.Link{
				Href:    href,
				Content: []block.StyledText{{Text: text, Styles: st}},
			})
			continue
		}

		if n := len(out); n > 0 {
			if prev, ok := out[n-1].(block.StyledText); ok && prev.Styles == st {
				prev.Text += text
				out[n-1] = prev
				continue
			}
		}
		out = append(out, block.StyledText{Text: text, Styles: st})
	}
	return out
}

// codeFromContent reads code content as one unstyled run, ignoring any
// marks the engine allowed in.
func codeFromContent(content *model.Node) []block.InlineContent {
	var sb strings.Builder
	for i := 0; i < content.ChildCount(); i++ {
		if child := content.MaybeChild(i); child != nil && child.Text != nil {
			sb.WriteString(*child.Text)
		}
	}
	if sb.Len() == 0 {
		return []block.InlineContent{}
	}
	return []block.InlineContent{block.StyledText{Text: sb.String()}}
}

func appendRun(runs []block.StyledText, text string, st block.Styles) []block.StyledText {
	if n := len(runs); n > 0 && runs[n-1].Styles == st {
		runs[n-1].Text += text
		return runs
	}
	return append(runs, block.StyledText{Text: text, Styles: st})
}
