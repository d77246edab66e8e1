package block

import "errors"

// Errors shared across the conversion, resolution, and mutation
// layers. Callers match them with errors.Is; wrapped forms carry the
// offending id, type, or prop name.
var (
	// ErrBlockNotFound indicates a referenced id does not resolve to a
	// live block in the document.
	ErrBlockNotFound = errors.New("block not found")

	// ErrUnknownBlockType indicates a type name with no registered spec.
	ErrUnknownBlockType = errors.New("unknown block type")

	// ErrInvalidPlacement indicates a nested insertion into a block
	// whose type forbids children.
	ErrInvalidPlacement = errors.New("invalid placement")

	// ErrInvalidProp indicates a prop value that fails its spec.
	ErrInvalidProp = errors.New("invalid prop")

	// ErrInvalidContent indicates inline content supplied to a block
	// type that takes none, or content of the wrong shape.
	ErrInvalidContent = errors.New("invalid content")

	// ErrMissingType indicates a partial that creates new content
	// without naming a block type.
	ErrMissingType = errors.New("missing block type")

	// ErrNoBlocks indicates an insertion or replacement with an empty
	// block list where at least one block is required.
	ErrNoBlocks = errors.New("no blocks given")

	// ErrStepFailed indicates the document engine rejected a computed
	// edit batch. The document is left untouched.
	ErrStepFailed = errors.New("edit step rejected by document engine")
)
