package masonry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/cozy/prosemirror-go/model"
	"github.com/cozy/prosemirror-go/transform"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quillon/masonry/internal/block"
	"github.com/quillon/masonry/internal/blockcache"
	"github.com/quillon/masonry/internal/codec"
	"github.com/quillon/masonry/internal/convert"
	"github.com/quillon/masonry/internal/history"
	"github.com/quillon/masonry/internal/mutate"
	"github.com/quillon/masonry/internal/position"
	"github.com/quillon/masonry/internal/schema"
	"github.com/quillon/masonry/internal/traverse"
)

// Re-export commonly used types for convenience.
type (
	// Block is a snapshot of one logical block.
	Block = block.Block

	// PartialBlock describes a block for insertion or patching.
	PartialBlock = block.PartialBlock

	// Props holds a block's typed properties.
	Props = block.Props

	// Styles is the fixed style set of an inline run.
	Styles = block.Styles

	// StyledText is one styled text run.
	StyledText = block.StyledText

	// Link is a hyperlink wrapping styled runs.
	Link = block.Link

	// InlineContent is a styled run or a link.
	InlineContent = block.InlineContent

	// ID is a bare block identifier.
	ID = block.ID

	// Identifier names a block by id.
	Identifier = block.Identifier

	// BlockSpec declares one block type for the schema registry.
	BlockSpec = schema.BlockSpec

	// PropSpec declares one typed prop.
	PropSpec = schema.PropSpec

	// PropKind is the scalar kind of a prop value.
	PropKind = schema.PropKind

	// ContentKind describes what a block type's content node holds.
	ContentKind = schema.ContentKind

	// Placement selects where inserted blocks land.
	Placement = mutate.Placement

	// CacheConfig bounds the identity cache.
	CacheConfig = blockcache.Config

	// CacheStats reports identity cache behavior.
	CacheStats = blockcache.Stats
)

// Re-export constants.
const (
	Before = mutate.Before
	After  = mutate.After
	Nested = mutate.Nested

	ContentInline = schema.ContentInline
	ContentCode   = schema.ContentCode
	ContentNone   = schema.ContentNone

	PropString = schema.PropString
	PropBool   = schema.PropBool
	PropInt    = schema.PropInt
	PropFloat  = schema.PropFloat
)

// InlineText wraps plain text as a single unstyled run.
func InlineText(s string) []InlineContent { return block.InlineText(s) }

// PlainText concatenates the plain text of inline runs.
func PlainText(content []InlineContent) string { return block.PlainText(content) }

// CursorContext describes the block enclosing a document position,
// with its neighbors resolved to snapshots.
type CursorContext struct {
	// Block is the deepest block enclosing the position.
	Block Block

	// Index is the block's index in its sibling list; Count the
	// sibling count.
	Index int
	Count int

	// Prev and Next are the adjacent siblings, nil at the edges.
	// Parent is the enclosing block, nil at top level.
	Prev   *Block
	Next   *Block
	Parent *Block
}

// Editor is the main facade over the document engine. It projects the
// engine's flat node tree as a nested block tree and turns block-level
// commands into atomic position-range edit batches.
//
// All operations are safe for concurrent use. Reads share a lock;
// mutations serialize, and each commits exactly one batch, so a read
// never observes a half-applied edit.
type Editor struct {
	mu sync.RWMutex

	// Document state
	doc *model.Node
	rev uint64

	// Core components
	reg   *schema.Registry
	cache *blockcache.Cache
	cv    *convert.Converter
	mut   *mutate.Mutator
	hist  *history.History

	logger *zap.Logger
	newID  func() string

	// Change listeners
	listenerMu  sync.Mutex
	listeners   map[int]func(Change)
	listenerSeq int

	// Construction-time configuration
	specs          []BlockSpec
	cacheConfig    CacheConfig
	maxUndoEntries int
	initBlocks     []PartialBlock
	initJSON       []byte
}

// New creates an editor with the given options. Without options the
// document holds one empty paragraph under the built-in block types.
func New(opts ...Option) (*Editor, error) {
	e := &Editor{
		logger:         zap.NewNop(),
		newID:          uuid.NewString,
		cacheConfig:    blockcache.DefaultConfig(),
		maxUndoEntries: DefaultMaxUndoEntries,
		listeners:      make(map[int]func(Change)),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.specs == nil {
		e.specs = schema.Default()
	}
	reg, err := schema.NewRegistry(e.specs)
	if err != nil {
		return nil, err
	}
	e.reg = reg
	e.cache = blockcache.New(e.cacheConfig)
	e.cv = convert.New(reg, e.cache, e.newID)
	e.mut = mutate.New(e.cv)
	e.hist = history.New(e.maxUndoEntries)

	if e.initJSON != nil {
		var raw map[string]interface{}
		if err := json.Unmarshal(e.initJSON, &raw); err != nil {
			return nil, fmt.Errorf("document json: %w", err)
		}
		doc, err := model.NodeFromJSON(reg.Engine(), raw)
		if err != nil {
			return nil, fmt.Errorf("document json: %w", err)
		}
		e.doc = doc
	} else {
		doc, err := e.cv.DocFromPartials(e.initBlocks)
		if err != nil {
			return nil, err
		}
		e.doc = doc
	}
	return e, nil
}

// ============================================================================
// Read Operations
// ============================================================================

// Blocks returns the document's top-level blocks in order, children
// nested. The returned values are shared snapshots; callers must not
// mutate them.
func (e *Editor) Blocks() []Block {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.blocksLocked()
}

// blocksLocked converts the document without acquiring the lock.
func (e *Editor) blocksLocked() []Block {
	blocks, err := e.cv.BlocksFromDoc(e.doc, e.rev)
	if err != nil {
		// Unreachable for documents built through the registry.
		e.logger.Error("document conversion failed", zap.Error(err))
		return nil
	}
	return blocks
}

// Block returns the block with the given id, at any nesting depth.
func (e *Editor) Block(ref Identifier) (Block, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	info, err := e.infoOfLocked(ref)
	if err != nil {
		return Block{}, err
	}
	b, err := e.cv.ToBlock(info.Frame, e.rev)
	if err != nil {
		return Block{}, err
	}
	return *b, nil
}

// ForEachBlock walks every block depth-first, parents before children,
// in document order or reversed. The walk stops when fn returns false;
// the return reports whether the walk ran to completion.
func (e *Editor) ForEachBlock(reverse bool, fn func(b Block, depth int) bool) bool {
	blocks := e.Blocks()
	return traverse.Each(blocks, reverse, func(it traverse.Item) traverse.Signal {
		if !fn(*it.Block, it.Depth) {
			return traverse.Stop
		}
		return traverse.Continue
	})
}

// BlockCount returns the number of blocks at every depth.
func (e *Editor) BlockCount() int {
	return traverse.Count(e.Blocks())
}

// BlockTypes returns the registered block type names in registration
// order.
func (e *Editor) BlockTypes() []string {
	return e.reg.Types()
}

// Revision returns the current document revision. It starts at zero
// and increments once per committed batch.
func (e *Editor) Revision() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rev
}

// Text returns the concatenated plain text of every block, one line
// per block in walk order.
func (e *Editor) Text() string {
	var lines []string
	e.ForEachBlock(false, func(b Block, depth int) bool {
		lines = append(lines, b.Text())
		return true
	})
	return strings.Join(lines, "\n")
}

// String implements fmt.Stringer as the document's plain text.
func (e *Editor) String() string { return e.Text() }

// DocJSON returns the document in the engine's JSON format. The same
// bytes seed a new editor via WithDocumentJSON.
func (e *Editor) DocJSON() ([]byte, error) {
	e.mu.RLock()
	raw := e.doc.ToJSON()
	e.mu.RUnlock()
	return json.Marshal(raw)
}

// CacheStats reports identity cache hits, misses, and evictions.
func (e *Editor) CacheStats() CacheStats {
	return e.cache.Stats()
}

// ============================================================================
// Position Queries
// ============================================================================

// BlockAt returns the deepest block enclosing the given document
// position. The second return is false when the position lies outside
// every block, such as between two siblings or past the document end.
func (e *Editor) BlockAt(pos int) (Block, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	info, ok := position.InfoAt(e.doc, pos)
	if !ok {
		return Block{}, false
	}
	b, err := e.cv.ToBlock(info.Frame, e.rev)
	if err != nil {
		e.logger.Error("block conversion failed", zap.String("blockID", info.ID), zap.Error(err))
		return Block{}, false
	}
	return *b, true
}

// CursorContextAt resolves a position to its enclosing block plus the
// adjacent siblings and parent. The second return is false when the
// position has no enclosing block.
func (e *Editor) CursorContextAt(pos int) (CursorContext, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ctx, ok := position.ContextAt(e.doc, pos)
	if !ok {
		return CursorContext{}, false
	}
	b, err := e.cv.ToBlock(ctx.Frame, e.rev)
	if err != nil {
		e.logger.Error("block conversion failed", zap.String("blockID", ctx.ID), zap.Error(err))
		return CursorContext{}, false
	}

	out := CursorContext{Block: *b, Index: ctx.Index, Count: ctx.Count}
	out.Prev = e.blockByIDLocked(ctx.PrevID)
	out.Next = e.blockByIDLocked(ctx.NextID)
	out.Parent = e.blockByIDLocked(ctx.ParentID)
	return out, true
}

// SelectionBlocks returns the blocks a selection from one position to
// another covers: the deepest run of siblings spanning both endpoints,
// or the single enclosing block for a collapsed selection. Positions
// outside any block fall back to the topmost overlapped blocks.
func (e *Editor) SelectionBlocks(from, to int) []Block {
	e.mu.RLock()
	defer e.mu.RUnlock()

	infos := position.SelectionFrames(e.doc, from, to)
	out := make([]Block, 0, len(infos))
	for _, info := range infos {
		b, err := e.cv.ToBlock(info.Frame, e.rev)
		if err != nil {
			e.logger.Error("block conversion failed", zap.String("blockID", info.ID), zap.Error(err))
			continue
		}
		out = append(out, *b)
	}
	return out
}

// StartOfBlock returns the cursor position at the start of the block's
// content.
func (e *Editor) StartOfBlock(ref Identifier) (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	info, err := e.infoOfLocked(ref)
	if err != nil {
		return 0, err
	}
	return position.StartCursor(info, e.kindOf(info)), nil
}

// EndOfBlock returns the cursor position at the end of the block's own
// content, before any nested children.
func (e *Editor) EndOfBlock(ref Identifier) (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	info, err := e.infoOfLocked(ref)
	if err != nil {
		return 0, err
	}
	return position.EndCursor(info, e.kindOf(info)), nil
}

// ============================================================================
// Mutations
// ============================================================================

// InsertBlocks inserts the given blocks before, after, or nested under
// the referenced block, and returns snapshots of the inserted blocks.
// Blocks without an id get a generated one. A failing call leaves the
// document untouched.
func (e *Editor) InsertBlocks(ref Identifier, partials []PartialBlock, place Placement) ([]Block, error) {
	e.mu.Lock()
	plan, err := e.mut.InsertBlocks(e.doc, block.IDOf(ref), partials, place)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	change, err := e.commitLocked("insert", ChangeInsert, plan.Steps, plan.InsertedIDs)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	inserted := e.blocksByIDLocked(plan.InsertedIDs)
	e.mu.Unlock()

	e.notify(change)
	return inserted, nil
}

// UpdateBlock patches the referenced block and returns its new
// snapshot. Omitted fields keep their values; a type change keeps the
// children; props merge per key, with explicit nils resetting to the
// schema default. The id is immutable.
func (e *Editor) UpdateBlock(ref Identifier, patch PartialBlock) (Block, error) {
	id := block.IDOf(ref)

	e.mu.Lock()
	plan, err := e.mut.UpdateBlock(e.doc, id, patch)
	if err != nil {
		e.mu.Unlock()
		return Block{}, err
	}
	change, err := e.commitLocked("update", ChangeUpdate, plan.Steps, []string{id})
	if err != nil {
		e.mu.Unlock()
		return Block{}, err
	}
	updated := e.blocksByIDLocked([]string{id})
	e.mu.Unlock()

	e.notify(change)
	if len(updated) == 0 {
		return Block{}, fmt.Errorf("%w: %q", ErrBlockNotFound, id)
	}
	return updated[0], nil
}

// RemoveBlocks deletes the referenced blocks and returns their final
// snapshots. Every id must resolve or the call fails with
// ErrBlockNotFound naming the missing ids and the document unchanged.
// A target nested inside another target is removed with it. Removing
// every top-level block leaves one empty paragraph.
func (e *Editor) RemoveBlocks(refs []Identifier) ([]Block, error) {
	ids := idsOf(refs)

	e.mu.Lock()
	plan, err := e.mut.RemoveBlocks(e.doc, ids)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	removed := e.blocksByIDLocked(ids)
	change, err := e.commitLocked("remove", ChangeRemove, plan.Steps, ids)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.mu.Unlock()

	e.notify(change)
	return removed, nil
}

// ReplaceBlocks swaps the referenced blocks for the given blocks and
// returns snapshots of the inserted ones. A contiguous run of targets
// is replaced in place; otherwise the new blocks land at the first
// target's original position and every target is deleted. An empty
// replacement list removes the targets.
func (e *Editor) ReplaceBlocks(refs []Identifier, partials []PartialBlock) ([]Block, error) {
	ids := idsOf(refs)

	e.mu.Lock()
	plan, err := e.mut.ReplaceBlocks(e.doc, ids, partials)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	change, err := e.commitLocked("replace", ChangeReplace, plan.Steps, append(ids, plan.InsertedIDs...))
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	inserted := e.blocksByIDLocked(plan.InsertedIDs)
	e.mu.Unlock()

	e.notify(change)
	return inserted, nil
}

// InsertFragment inserts blocks at a document position: after the
// enclosing block when the position falls inside one, otherwise after
// the last top-level block. Returns snapshots of the inserted blocks.
func (e *Editor) InsertFragment(pos int, partials []PartialBlock) ([]Block, error) {
	e.mu.Lock()
	ref := ""
	if info, ok := position.InfoAt(e.doc, pos); ok {
		ref = info.ID
	} else if ids := topLevelIDs(e.doc); len(ids) > 0 {
		ref = ids[len(ids)-1]
	}
	plan, err := e.mut.InsertBlocks(e.doc, ref, partials, After)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	change, err := e.commitLocked("fragment", ChangeFragment, plan.Steps, plan.InsertedIDs)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	inserted := e.blocksByIDLocked(plan.InsertedIDs)
	e.mu.Unlock()

	e.notify(change)
	return inserted, nil
}

// ============================================================================
// Undo/Redo
// ============================================================================

// Undo reverts the most recent batch, or group of batches recorded
// between BeginUndoGroup and EndUndoGroup.
func (e *Editor) Undo() error {
	e.mu.Lock()
	var change Change
	_, err := e.hist.Undo(func(steps []transform.Step) error {
		if err := e.applyStepsLocked("undo", steps); err != nil {
			return err
		}
		change = Change{Revision: e.rev, Kind: ChangeUndo}
		return nil
	})
	e.mu.Unlock()

	if err != nil {
		return err
	}
	e.notify(change)
	return nil
}

// Redo reapplies the most recently undone batch.
func (e *Editor) Redo() error {
	e.mu.Lock()
	var change Change
	_, err := e.hist.Redo(func(steps []transform.Step) error {
		if err := e.applyStepsLocked("redo", steps); err != nil {
			return err
		}
		change = Change{Revision: e.rev, Kind: ChangeRedo}
		return nil
	})
	e.mu.Unlock()

	if err != nil {
		return err
	}
	e.notify(change)
	return nil
}

// CanUndo reports whether an undo entry is available.
func (e *Editor) CanUndo() bool { return e.hist.CanUndo() }

// CanRedo reports whether a redo entry is available.
func (e *Editor) CanRedo() bool { return e.hist.CanRedo() }

// UndoCount returns the number of available undo entries.
func (e *Editor) UndoCount() int { return e.hist.UndoCount() }

// RedoCount returns the number of available redo entries.
func (e *Editor) RedoCount() int { return e.hist.RedoCount() }

// BeginUndoGroup starts an undo group. All batches until EndUndoGroup
// undo as a single unit. Nested calls are ignored.
func (e *Editor) BeginUndoGroup(label string) { e.hist.BeginGroup(label) }

// EndUndoGroup closes the open undo group.
func (e *Editor) EndUndoGroup() { e.hist.EndGroup() }

// CancelUndoGroup closes the open undo group and discards its entry.
// The applied batches stay in the document.
func (e *Editor) CancelUndoGroup() { e.hist.CancelGroup() }

// ClearHistory drops all undo and redo state.
func (e *Editor) ClearHistory() { e.hist.Clear() }

// ============================================================================
// Format Conversion
// ============================================================================

// ExportHTML renders the document as semantic HTML.
func (e *Editor) ExportHTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	e.mu.RLock()
	blocks := e.blocksLocked()
	e.mu.RUnlock()
	return codec.ExportHTML(blocks), nil
}

// ExportMarkdown renders the document as Markdown. Underline and
// colors have no Markdown form and are dropped.
func (e *Editor) ExportMarkdown(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	e.mu.RLock()
	blocks := e.blocksLocked()
	e.mu.RUnlock()
	return codec.ExportMarkdown(blocks), nil
}

// ImportHTML replaces the document's blocks with ones parsed from
// HTML, and returns the new top-level blocks. The replacement is one
// undoable batch.
func (e *Editor) ImportHTML(ctx context.Context, src string) ([]Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	partials, err := codec.ImportHTML(src)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("html parsed", zap.Int("blocks", len(partials)))
	return e.replaceAll("import html", partials)
}

// ImportMarkdown replaces the document's blocks with ones parsed from
// Markdown, and returns the new top-level blocks. The replacement is
// one undoable batch.
func (e *Editor) ImportMarkdown(ctx context.Context, src string) ([]Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	partials, err := codec.ImportMarkdown(src)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("markdown parsed", zap.Int("blocks", len(partials)))
	return e.replaceAll("import markdown", partials)
}

// replaceAll swaps every top-level block for the given partials. An
// empty list leaves one empty paragraph.
func (e *Editor) replaceAll(label string, partials []PartialBlock) ([]Block, error) {
	e.mu.Lock()
	ids := topLevelIDs(e.doc)
	plan, err := e.mut.ReplaceBlocks(e.doc, ids, partials)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	change, err := e.commitLocked(label, ChangeReplace, plan.Steps, append(ids, plan.InsertedIDs...))
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	inserted := e.blocksByIDLocked(plan.InsertedIDs)
	e.mu.Unlock()

	e.notify(change)
	return inserted, nil
}

// ============================================================================
// Commit Path
// ============================================================================

// commitLocked applies a batch to the current document, swaps the
// root, bumps the revision, sweeps the cache, and records history.
// The caller holds the write lock and notifies listeners after
// releasing it. On error the document is unchanged.
func (e *Editor) commitLocked(label string, kind ChangeKind, steps []transform.Step, ids []string) (Change, error) {
	res, err := mutate.Apply(e.doc, steps)
	if err != nil {
		e.logger.Debug("batch rejected", zap.String("op", label), zap.Error(err))
		return Change{}, err
	}
	e.doc = res.Doc
	e.rev++
	e.cache.Sweep(e.rev)
	e.hist.Record(label, steps, res.Inverted)
	e.logger.Debug("batch committed",
		zap.String("op", label),
		zap.Uint64("revision", e.rev),
		zap.Int("steps", len(steps)),
		zap.Strings("blockIDs", ids))
	return Change{Revision: e.rev, Kind: kind, BlockIDs: ids}, nil
}

// applyStepsLocked is the commit path for undo and redo: history
// manages the entry itself, so the batch is applied without recording.
func (e *Editor) applyStepsLocked(label string, steps []transform.Step) error {
	res, err := mutate.Apply(e.doc, steps)
	if err != nil {
		e.logger.Debug("batch rejected", zap.String("op", label), zap.Error(err))
		return err
	}
	e.doc = res.Doc
	e.rev++
	e.cache.Sweep(e.rev)
	e.logger.Debug("batch committed",
		zap.String("op", label),
		zap.Uint64("revision", e.rev),
		zap.Int("steps", len(steps)))
	return nil
}

// ============================================================================
// Internal Helpers
// ============================================================================

// infoOfLocked resolves an identifier to its frame info.
func (e *Editor) infoOfLocked(ref Identifier) (position.Info, error) {
	id := block.IDOf(ref)
	info, ok := position.InfoOfID(e.doc, id)
	if !ok {
		return position.Info{}, fmt.Errorf("%w: %q", ErrBlockNotFound, id)
	}
	return info, nil
}

// kindOf returns the content kind of the frame's block type.
func (e *Editor) kindOf(info position.Info) schema.ContentKind {
	if info.ContentNode == nil {
		return schema.ContentNone
	}
	return e.reg.ContentKindOf(info.ContentNode.Type.Name)
}

// blockByIDLocked resolves one id to a snapshot, nil when absent.
func (e *Editor) blockByIDLocked(id string) *Block {
	if id == "" {
		return nil
	}
	info, ok := position.InfoOfID(e.doc, id)
	if !ok {
		return nil
	}
	b, err := e.cv.ToBlock(info.Frame, e.rev)
	if err != nil {
		e.logger.Error("block conversion failed", zap.String("blockID", id), zap.Error(err))
		return nil
	}
	return b
}

// blocksByIDLocked resolves ids to snapshots, skipping duplicates and
// ids that no longer resolve.
func (e *Editor) blocksByIDLocked(ids []string) []Block {
	out := make([]Block, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if b := e.blockByIDLocked(id); b != nil {
			out = append(out, *b)
		}
	}
	return out
}

// idsOf normalizes identifiers to their string ids.
func idsOf(refs []Identifier) []string {
	ids := make([]string, len(refs))
	for i, ref := range refs {
		ids[i] = block.IDOf(ref)
	}
	return ids
}

// topLevelIDs lists the document's top-level block ids in order.
func topLevelIDs(doc *model.Node) []string {
	group := doc.MaybeChild(0)
	if group == nil {
		return nil
	}
	ids := make([]string, 0, group.ChildCount())
	for i := 0; i < group.ChildCount(); i++ {
		frame := group.MaybeChild(i)
		if frame == nil {
			continue
		}
		if id, ok := frame.Attrs[schema.AttrID].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
