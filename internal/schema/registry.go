package schema

import (
	"fmt"
	"sort"

	"github.com/cozy/prosemirror-go/model"

	"github.com/quillon/masonry/internal/block"
)

// Registry holds a validated set of block specs and the engine schema
// generated from them. A registry is immutable after construction and
// safe for concurrent use.
type Registry struct {
	specs  map[string]BlockSpec
	order  []string
	engine *model.Schema

	// marks caches the attribute-free mark instances so repeated
	// serialization of the same styles reuses one value per mark.
	marks map[string]*model.Mark
}

// NewRegistry validates specs, generates the engine schema, and
// returns the registry. Spec order is preserved; the first inline-kind
// type becomes the engine's fill-in type for required content.
func NewRegistry(specs []BlockSpec) (*Registry, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("schema: no block specs")
	}
	r := &Registry{
		specs: make(map[string]BlockSpec, len(specs)),
		order: make([]string, 0, len(specs)),
		marks: make(map[string]*model.Mark, 5),
	}
	for _, spec := range specs {
		if err := checkSpec(spec); err != nil {
			return nil, err
		}
		if _, dup := r.specs[spec.Type]; dup {
			return nil, fmt.Errorf("schema: duplicate block type %q", spec.Type)
		}
		r.specs[spec.Type] = spec
		r.order = append(r.order, spec.Type)
	}

	engine, err := buildEngine(specs)
	if err != nil {
		return nil, fmt.Errorf("schema: engine schema: %w", err)
	}
	r.engine = engine

	for _, name := range []string{MarkBold, MarkItalic, MarkUnderline, MarkStrike, MarkCode} {
		mt, ok := engine.Marks[name]
		if !ok {
			return nil, fmt.Errorf("schema: engine schema missing mark %q", name)
		}
		r.marks[name] = mt.Create(nil)
	}
	return r, nil
}

// MustRegistry is NewRegistry for known-good spec sets, panicking on
// error. Intended for the built-in Default set.
func MustRegistry(specs []BlockSpec) *Registry {
	r, err := NewRegistry(specs)
	if err != nil {
		panic(err)
	}
	return r
}

func checkSpec(spec BlockSpec) error {
	if spec.Type == "" {
		return fmt.Errorf("schema: block spec with empty type")
	}
	switch spec.Type {
	case NodeDoc, NodeGroup, NodeContainer, NodeText:
		return fmt.Errorf("schema: block type %q collides with a structural node", spec.Type)
	}
	for name, ps := range spec.Props {
		if name == "" {
			return fmt.Errorf("schema: %s: prop with empty name", spec.Type)
		}
		if ps.Default == nil {
			return fmt.Errorf("schema: %s.%s: missing default", spec.Type, name)
		}
		if _, err := normalizeProp(name, ps, ps.Default); err != nil {
			return fmt.Errorf("schema: %s: bad default: %w", spec.Type, err)
		}
	}
	return nil
}

func buildEngine(specs []BlockSpec) (*model.Schema, error) {
	nodes := []*model.NodeSpec{
		{Key: NodeDoc, Content: NodeGroup},
		{
			Key:     NodeContainer,
			Content: "blockContent blockGroup?",
			Attrs: map[string]*model.AttributeSpec{
				AttrID: {Default: ""},
			},
		},
		{Key: NodeGroup, Content: "blockContainer+"},
	}
	for _, spec := range specs {
		ns := &model.NodeSpec{
			Key:   spec.Type,
			Group: "blockContent",
		}
		switch spec.Content {
		case ContentInline, ContentCode:
			ns.Content = "inline*"
		case ContentNone:
			ns.Content = ""
		default:
			return nil, fmt.Errorf("block type %q: unknown content kind", spec.Type)
		}
		if len(spec.Props) > 0 {
			attrs := make(map[string]*model.AttributeSpec, len(spec.Props))
			names := make([]string, 0, len(spec.Props))
			for name := range spec.Props {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				def, err := normalizeProp(name, spec.Props[name], spec.Props[name].Default)
				if err != nil {
					return nil, err
				}
				attrs[name] = &model.AttributeSpec{Default: def}
			}
			ns.Attrs = attrs
		}
		nodes = append(nodes, ns)
	}
	nodes = append(nodes, &model.NodeSpec{Key: NodeText, Group: "inline"})

	marks := []*model.MarkSpec{
		{Key: MarkBold},
		{Key: MarkItalic},
		{Key: MarkUnderline},
		{Key: MarkStrike},
		{Key: MarkCode},
		{Key: MarkLink, Attrs: map[string]*model.AttributeSpec{
			"href": {Default: ""},
		}},
		{Key: MarkTextColor, Attrs: map[string]*model.AttributeSpec{
			"color": {Default: ""},
		}},
		{Key: MarkBackgroundColor, Attrs: map[string]*model.AttributeSpec{
			"color": {Default: ""},
		}},
	}

	return model.NewSchema(&model.SchemaSpec{
		Nodes:   nodes,
		Marks:   marks,
		TopNode: NodeDoc,
	})
}

// Engine returns the generated engine schema.
func (r *Registry) Engine() *model.Schema { return r.engine }

// Spec returns the spec registered for typ.
func (r *Registry) Spec(typ string) (BlockSpec, bool) {
	s, ok := r.specs[typ]
	return s, ok
}

// Has reports whether typ is registered.
func (r *Registry) Has(typ string) bool {
	_, ok := r.specs[typ]
	return ok
}

// Types returns the registered type names in registration order.
func (r *Registry) Types() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// ContentKindOf returns the content kind of typ, or ContentInline when
// typ is unknown.
func (r *Registry) ContentKindOf(typ string) ContentKind {
	if s, ok := r.specs[typ]; ok {
		return s.Content
	}
	return ContentInline
}

// AllowsChildren reports whether typ permits nested blocks. Unknown
// types report false.
func (r *Registry) AllowsChildren(typ string) bool {
	s, ok := r.specs[typ]
	return ok && s.AllowsChildren
}

// AttrsFor validates props against typ's spec and returns the full
// engine attribute map: every declared prop, defaults overlaid with
// the given values. Unknown prop names and kind mismatches fail with
// ErrInvalidProp; unknown types fail with ErrUnknownBlockType.
func (r *Registry) AttrsFor(typ string, props block.Props) (map[string]interface{}, error) {
	spec, ok := r.specs[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %q", block.ErrUnknownBlockType, typ)
	}
	attrs := make(map[string]interface{}, len(spec.Props))
	for name, ps := range spec.Props {
		def, err := normalizeProp(name, ps, ps.Default)
		if err != nil {
			return nil, err
		}
		attrs[name] = def
	}
	for name, v := range props {
		ps, ok := spec.Props[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q has no prop %s", block.ErrInvalidProp, typ, name)
		}
		if v == nil {
			continue
		}
		norm, err := normalizeProp(name, ps, v)
		if err != nil {
			return nil, err
		}
		attrs[name] = norm
	}
	return attrs, nil
}

// DefaultProps returns typ's props with every value at its default.
func (r *Registry) DefaultProps(typ string) (block.Props, error) {
	attrs, err := r.AttrsFor(typ, nil)
	if err != nil {
		return nil, err
	}
	return block.Props(attrs), nil
}

// PropsFromAttrs converts an engine attribute map back into props.
// Every declared prop appears; attrs outside the spec are dropped.
func (r *Registry) PropsFromAttrs(typ string, attrs map[string]interface{}) block.Props {
	spec, ok := r.specs[typ]
	if !ok {
		return block.Props{}
	}
	props := make(block.Props, len(spec.Props))
	for name, ps := range spec.Props {
		if v, ok := attrs[name]; ok {
			if norm, err := normalizeProp(name, ps, v); err == nil {
				props[name] = norm
				continue
			}
		}
		if def, err := normalizeProp(name, ps, ps.Default); err == nil {
			props[name] = def
		}
	}
	return props
}

// Mark returns the shared instance of an attribute-free mark.
func (r *Registry) Mark(name string) (*model.Mark, bool) {
	m, ok := r.marks[name]
	return m, ok
}

// LinkMark creates a link mark carrying href.
func (r *Registry) LinkMark(href string) *model.Mark {
	return r.engine.Marks[MarkLink].Create(map[string]interface{}{"href": href})
}

// ColorMark creates a textColor or backgroundColor mark.
func (r *Registry) ColorMark(name, color string) *model.Mark {
	return r.engine.Marks[name].Create(map[string]interface{}{"color": color})
}

// MarksFor builds the engine mark set for one styled text run outside
// a link. Mark order follows schema rank order so serialized documents
// compare equal after a JSON round trip.
func (r *Registry) MarksFor(st block.Styles) []*model.Mark {
	return r.MarksForRun(st, "")
}

// MarksForRun builds the engine mark set for a styled run, adding a
// link mark when href is non-empty. Code content ignores styles, so
// callers serializing ContentCode pass the zero Styles instead.
func (r *Registry) MarksForRun(st block.Styles, href string) []*model.Mark {
	if st.IsZero() && href == "" {
		return nil
	}
	marks := make([]*model.Mark, 0, 4)
	if st.Bold {
		marks = append(marks, r.marks[MarkBold])
	}
	if st.Italic {
		marks = append(marks, r.marks[MarkItalic])
	}
	if st.Underline {
		marks = append(marks, r.marks[MarkUnderline])
	}
	if st.Strikethrough {
		marks = append(marks, r.marks[MarkStrike])
	}
	if st.Code {
		marks = append(marks, r.marks[MarkCode])
	}
	if href != "" {
		marks = append(marks, r.LinkMark(href))
	}
	if st.TextColor != "" {
		marks = append(marks, r.ColorMark(MarkTextColor, st.TextColor))
	}
	if st.BackgroundColor != "" {
		marks = append(marks, r.ColorMark(MarkBackgroundColor, st.BackgroundColor))
	}
	return marks
}

// StylesFor reads a mark set back into Styles and, when a link mark is
// present, its href. The engine guarantees at most one mark per type
// on a text node.
func (r *Registry) StylesFor(marks []*model.Mark) (block.Styles, string) {
	var st block.Styles
	href := ""
	for _, m := range marks {
		switch m.Type.Name {
		case MarkBold:
			st.Bold = true
		case MarkItalic:
			st.Italic = true
		case MarkUnderline:
			st.Underline = true
		case MarkStrike:
			st.Strikethrough = true
		case MarkCode:
			st.Code = true
		case MarkLink:
			if v, ok := m.Attrs["href"].(string); ok {
				href = v
			}
		case MarkTextColor:
			if v, ok := m.Attrs["color"].(string); ok {
				st.TextColor = v
			}
		case MarkBackgroundColor:
			if v, ok := m.Attrs["color"].(string); ok {
				st.BackgroundColor = v
			}
		}
	}
	return st, href
}
