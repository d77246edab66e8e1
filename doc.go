// Package masonry projects a flat, position-addressed document engine
// as a nested block tree and exposes block-level editing on top of it.
//
// The editor owns an engine document in which every logical block is a
// container node holding a content node (type, props, inline text) and
// an optional group of child containers. Public operations speak in
// Block values and block ids; the editor translates them into
// position-range edit batches, applies each batch atomically, and
// converts result nodes back to Block snapshots through an
// identity-keyed cache so unchanged subtrees convert once.
//
// # Architecture
//
// The package is a facade over several internal layers:
//
//   - schema: block type specs, prop validation, engine schema generation
//   - convert: node-to-Block projection and PartialBlock serialization
//   - blockcache: identity-keyed snapshot cache with generation sweeping
//   - position: offset-to-block resolution and cursor targets
//   - mutate: block commands compiled to atomic step batches
//   - history: undo/redo stacks over inverted step batches
//   - codec: HTML and Markdown import/export
//
// # Thread Safety
//
// All Editor operations are safe for concurrent use. Reads share a
// lock and mutations serialize; each mutation commits exactly one
// batch, so a read observes either the document before a batch or
// after it, never between steps.
//
// # Basic Usage
//
// Create an editor and edit blocks:
//
//	ed, err := masonry.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	first := ed.Blocks()[0]
//	inserted, err := ed.InsertBlocks(first, []masonry.PartialBlock{{
//		Type:    "heading",
//		Props:   masonry.Props{"level": 1},
//		Content: masonry.InlineText("Title"),
//	}}, masonry.Before)
//
//	_, err = ed.UpdateBlock(inserted[0], masonry.PartialBlock{
//		Props: masonry.Props{"level": 2},
//	})
//
//	_, err = ed.RemoveBlocks([]masonry.Identifier{inserted[0]})
//
// # Position Queries
//
// Resolve engine positions, such as cursor or selection offsets, to
// blocks:
//
//	if b, ok := ed.BlockAt(pos); ok {
//		fmt.Println(b.Type, b.Text())
//	}
//
//	if ctx, ok := ed.CursorContextAt(pos); ok {
//		// ctx.Prev, ctx.Next, ctx.Parent
//	}
//
//	covered := ed.SelectionBlocks(from, to)
//
// Positions between blocks resolve to nothing; the boolean return
// distinguishes that from an error.
//
// # Undo/Redo
//
// Every mutation is one undo unit; groups combine several:
//
//	ed.BeginUndoGroup("reformat")
//	ed.UpdateBlock(a, patchA)
//	ed.UpdateBlock(b, patchB)
//	ed.EndUndoGroup()
//
//	ed.Undo() // reverts both updates
//
// # Format Conversion
//
// Blocks convert to and from HTML and Markdown:
//
//	htmlOut, _ := ed.ExportHTML(ctx)
//	mdOut, _ := ed.ExportMarkdown(ctx)
//	_, err = ed.ImportMarkdown(ctx, "# Title\n\nBody with **bold**.")
//
// Imports replace the whole document in one undoable batch. DocJSON
// round-trips the underlying engine document, so a document survives a
// save/load cycle byte-for-byte semantically:
//
//	data, _ := ed.DocJSON()
//	ed2, _ := masonry.New(masonry.WithDocumentJSON(data))
//
// # Custom Block Types
//
// The built-in types (paragraph, heading, quote, list items,
// codeBlock, image) can be replaced wholesale:
//
//	specs := append(masonry.DefaultSpecs(), masonry.BlockSpec{
//		Type:           "callout",
//		Props:          map[string]masonry.PropSpec{"icon": {Kind: masonry.PropString, Default: "info"}},
//		Content:        masonry.ContentInline,
//		AllowsChildren: true,
//	})
//	ed, err := masonry.New(masonry.WithSchema(specs))
//
// # Change Notification
//
// Listeners observe committed batches:
//
//	cancel := ed.OnChange(func(c masonry.Change) {
//		fmt.Println(c.Kind, c.Revision, c.BlockIDs)
//	})
//	defer cancel()
//
// # Error Handling
//
// Operations validate fully before computing any edit; a failing call
// leaves the document untouched. Sentinels:
//
//   - ErrBlockNotFound: a referenced id does not resolve
//   - ErrUnknownBlockType: a type name with no registered spec
//   - ErrInvalidPlacement: nested insertion under a type without children
//   - ErrInvalidProp: a prop value failing its spec
//   - ErrMissingType: a partial creating content without a type
//   - ErrNoBlocks: an empty insertion list
//   - ErrNothingToUndo, ErrNothingToRedo: empty history stacks
package masonry
