package masonry

import (
	"github.com/quillon/masonry/internal/block"
	"github.com/quillon/masonry/internal/history"
)

// Errors returned by editor operations. Match with errors.Is; wrapped
// forms carry the offending id, type, or prop name.
var (
	// ErrBlockNotFound indicates a referenced id does not resolve to a
	// live block in the document.
	ErrBlockNotFound = block.ErrBlockNotFound

	// ErrUnknownBlockType indicates a type name with no registered spec.
	ErrUnknownBlockType = block.ErrUnknownBlockType

	// ErrInvalidPlacement indicates a nested insertion into a block
	// whose type forbids children.
	ErrInvalidPlacement = block.ErrInvalidPlacement

	// ErrInvalidProp indicates a prop value that fails its spec.
	ErrInvalidProp = block.ErrInvalidProp

	// ErrInvalidContent indicates inline content supplied to a block
	// type that takes none, or content of the wrong shape.
	ErrInvalidContent = block.ErrInvalidContent

	// ErrMissingType indicates a partial that creates new content
	// without naming a block type.
	ErrMissingType = block.ErrMissingType

	// ErrNoBlocks indicates an insertion or replacement with an empty
	// block list where at least one block is required.
	ErrNoBlocks = block.ErrNoBlocks

	// ErrStepFailed indicates the document engine rejected a computed
	// edit batch. The document is left untouched.
	ErrStepFailed = block.ErrStepFailed

	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = history.ErrNothingToUndo

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = history.ErrNothingToRedo
)
