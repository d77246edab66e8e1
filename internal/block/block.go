// Package block defines the public document values: nested Block
// snapshots, inline content runs, typed properties, and the partial
// form used to describe insertions and patches.
package block

import "strings"

// Block is a snapshot of one logical block: its identity, semantic
// type, typed properties, inline content, and nested child blocks.
//
// A Block is a plain value derived from the live document. It does not
// track later edits, and callers must treat the slices it carries as
// read-only; blocks returned from cached conversions may share them.
type Block struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Props    Props           `json:"props,omitempty"`
	Content  []InlineContent `json:"content,omitempty"`
	Children []Block         `json:"children,omitempty"`
}

// BlockID returns the block's identifier, satisfying Identifier.
func (b Block) BlockID() string { return b.ID }

// Text returns the concatenated plain text of the block's inline
// content, without descending into children.
func (b Block) Text() string {
	var sb strings.Builder
	for _, ic := range b.Content {
		sb.WriteString(ic.PlainText())
	}
	return sb.String()
}

// ToPartial converts the block into an equivalent PartialBlock with
// every field populated. Useful for re-inserting a removed block.
func (b Block) ToPartial() PartialBlock {
	p := PartialBlock{
		ID:      b.ID,
		Type:    b.Type,
		Props:   b.Props.Clone(),
		Content: append([]InlineContent(nil), b.Content...),
	}
	if b.Content == nil {
		p.Content = []InlineContent{}
	}
	p.Children = make([]PartialBlock, len(b.Children))
	for i, c := range b.Children {
		p.Children[i] = c.ToPartial()
	}
	return p
}

// Identifier names a block: either a bare ID value or any block-like
// value that carries its own id. All public operations normalize an
// Identifier to its string id via BlockID.
type Identifier interface {
	BlockID() string
}

// ID is a bare block identifier.
type ID string

// BlockID returns the identifier as a string.
func (id ID) BlockID() string { return string(id) }

// IDOf normalizes any Identifier to its string id. A nil Identifier
// normalizes to the empty string.
func IDOf(ref Identifier) string {
	if ref == nil {
		return ""
	}
	return ref.BlockID()
}
