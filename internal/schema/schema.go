// Package schema defines block type specifications and generates the
// document engine schema from them. A registry maps each block type
// name to its prop specs, content kind, and children policy; the
// converter and mutator consult it for defaulting and validation.
package schema

import (
	"fmt"

	"github.com/quillon/masonry/internal/block"
)

// Structural node names in the engine schema. Every logical block is a
// container node holding one content node and, when the block has
// nested blocks, one group node wrapping the child containers.
const (
	NodeDoc       = "doc"
	NodeGroup     = "blockGroup"
	NodeContainer = "blockContainer"
	NodeText      = "text"

	// AttrID is the container attribute carrying the block id.
	AttrID = "id"
)

// Mark names in the engine schema.
const (
	MarkBold            = "bold"
	MarkItalic          = "italic"
	MarkUnderline       = "underline"
	MarkStrike          = "strike"
	MarkCode            = "code"
	MarkLink            = "link"
	MarkTextColor       = "textColor"
	MarkBackgroundColor = "backgroundColor"
)

// ContentKind describes what a block type's content node holds.
type ContentKind int

const (
	// ContentInline holds styled text runs and links.
	ContentInline ContentKind = iota

	// ContentCode holds plain text; styles are stripped on write.
	ContentCode

	// ContentNone holds nothing; the block is defined by its props.
	ContentNone
)

// String returns the kind's name.
func (k ContentKind) String() string {
	switch k {
	case ContentInline:
		return "inline"
	case ContentCode:
		return "code"
	case ContentNone:
		return "none"
	default:
		return fmt.Sprintf("ContentKind(%d)", int(k))
	}
}

// PropKind is the scalar kind of a prop value.
type PropKind int

const (
	PropString PropKind = iota
	PropBool
	PropInt
	PropFloat
)

// String returns the kind's name.
func (k PropKind) String() string {
	switch k {
	case PropString:
		return "string"
	case PropBool:
		return "bool"
	case PropInt:
		return "int"
	case PropFloat:
		return "float"
	default:
		return fmt.Sprintf("PropKind(%d)", int(k))
	}
}

// PropSpec declares one typed prop: its kind, the default applied when
// a block omits it, and an optional extra validator run after the kind
// check. Numeric values are normalized to float64 so documents compare
// equal across a JSON round trip.
type PropSpec struct {
	Kind     PropKind
	Default  any
	Validate func(v any) error
}

// BlockSpec declares one block type.
type BlockSpec struct {
	// Type is the block type name, unique within a registry.
	Type string

	// Props declares the type's props by name.
	Props map[string]PropSpec

	// Content is the kind of inline content the type carries.
	Content ContentKind

	// AllowsChildren reports whether blocks of this type may hold
	// nested blocks. Nested insertion into a type that forbids them
	// fails with ErrInvalidPlacement.
	AllowsChildren bool
}

// styleProps are the presentation props shared by most built-in types.
func styleProps() map[string]PropSpec {
	return map[string]PropSpec{
		"textColor":       {Kind: PropString, Default: "default"},
		"backgroundColor": {Kind: PropString, Default: "default"},
		"textAlignment": {Kind: PropString, Default: "left", Validate: func(v any) error {
			switch v {
			case "left", "center", "right", "justify":
				return nil
			}
			return fmt.Errorf("textAlignment must be left, center, right, or justify, got %v", v)
		}},
	}
}

func withStyleProps(extra map[string]PropSpec) map[string]PropSpec {
	props := styleProps()
	for k, v := range extra {
		props[k] = v
	}
	return props
}

// Default returns the built-in block type set: paragraph, heading,
// quote, the three list item types, codeBlock, and image. Paragraph is
// first; it is the fallback type used when an empty document needs a
// block.
func Default() []BlockSpec {
	return []BlockSpec{
		{
			Type:           "paragraph",
			Props:          styleProps(),
			Content:        ContentInline,
			AllowsChildren: true,
		},
		{
			Type: "heading",
			Props: withStyleProps(map[string]PropSpec{
				"level": {Kind: PropInt, Default: 1, Validate: func(v any) error {
					if n := v.(float64); n < 1 || n > 3 {
						return fmt.Errorf("heading level must be 1-3, got %v", n)
					}
					return nil
				}},
			}),
			Content:        ContentInline,
			AllowsChildren: true,
		},
		{
			Type:           "quote",
			Props:          styleProps(),
			Content:        ContentInline,
			AllowsChildren: true,
		},
		{
			Type:           "bulletListItem",
			Props:          styleProps(),
			Content:        ContentInline,
			AllowsChildren: true,
		},
		{
			Type:           "numberedListItem",
			Props:          styleProps(),
			Content:        ContentInline,
			AllowsChildren: true,
		},
		{
			Type: "checkListItem",
			Props: withStyleProps(map[string]PropSpec{
				"checked": {Kind: PropBool, Default: false},
			}),
			Content:        ContentInline,
			AllowsChildren: true,
		},
		{
			Type: "codeBlock",
			Props: map[string]PropSpec{
				"language": {Kind: PropString, Default: ""},
			},
			Content:        ContentCode,
			AllowsChildren: false,
		},
		{
			Type: "image",
			Props: map[string]PropSpec{
				"url":     {Kind: PropString, Default: ""},
				"caption": {Kind: PropString, Default: ""},
			},
			Content:        ContentNone,
			AllowsChildren: false,
		},
	}
}

// DefaultBlockType is the type used when a document must not be empty
// and no type was given.
const DefaultBlockType = "paragraph"

// normalizeProp checks v against the spec and returns its normalized
// form (numbers become float64).
func normalizeProp(name string, spec PropSpec, v any) (any, error) {
	var norm any
	switch spec.Kind {
	case PropString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s wants string, got %T", block.ErrInvalidProp, name, v)
		}
		norm = s
	case PropBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %s wants bool, got %T", block.ErrInvalidProp, name, v)
		}
		norm = b
	case PropInt:
		f, ok := toFloat(v)
		if !ok || f != float64(int64(f)) {
			return nil, fmt.Errorf("%w: %s wants integer, got %v", block.ErrInvalidProp, name, v)
		}
		norm = f
	case PropFloat:
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("%w: %s wants number, got %T", block.ErrInvalidProp, name, v)
		}
		norm = f
	default:
		return nil, fmt.Errorf("%w: %s has unknown kind", block.ErrInvalidProp, name)
	}
	if spec.Validate != nil {
		if err := spec.Validate(norm); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", block.ErrInvalidProp, name, err)
		}
	}
	return norm, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
