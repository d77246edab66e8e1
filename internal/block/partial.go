package block

// PartialBlock describes a block for insertion or patching. Every
// field is optional; nil slices and maps mean "not provided", which on
// insertion falls back to defaults and on update inherits the target's
// current value. An empty non-nil Content or Children explicitly
// clears the corresponding field.
//
// Type is required when the partial creates new content (insertion, or
// an update that introduces content where none can be inherited).
type PartialBlock struct {
	ID       string          `json:"id,omitempty"`
	Type     string          `json:"type,omitempty"`
	Props    Props           `json:"props,omitempty"`
	Content  []InlineContent `json:"content,omitempty"`
	Children []PartialBlock  `json:"children,omitempty"`
}

// BlockID returns the partial's id (possibly empty), satisfying
// Identifier so freshly described blocks can reference themselves.
func (p PartialBlock) BlockID() string { return p.ID }

// HasContent reports whether the partial provides inline content,
// including an explicit empty sequence.
func (p PartialBlock) HasContent() bool { return p.Content != nil }

// HasChildren reports whether the partial provides children, including
// an explicit empty list.
func (p PartialBlock) HasChildren() bool { return p.Children != nil }
