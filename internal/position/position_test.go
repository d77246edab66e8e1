package position

import (
	"fmt"
	"testing"

	"github.com/cozy/prosemirror-go/model"

	"github.com/quillon/masonry/internal/block"
	"github.com/quillon/masonry/internal/blockcache"
	"github.com/quillon/masonry/internal/convert"
	"github.com/quillon/masonry/internal/schema"
)

// testDoc builds the shared fixture:
//
//	A  paragraph "one"        frame [1, 8)
//	B  bulletListItem "item"  frame [8, 25)
//	  B1 paragraph "sub"      frame [16, 23)
//	C  image                  frame starts at 25
func testDoc(t *testing.T) *model.Node {
	t.Helper()
	reg, err := schema.NewRegistry(schema.Default())
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	n := 0
	cv := convert.New(reg, blockcache.New(blockcache.DefaultConfig()), func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	})
	doc, err := cv.DocFromPartials([]block.PartialBlock{
		{ID: "A", Type: "paragraph", Content: block.InlineText("one")},
		{ID: "B", Type: "bulletListItem", Content: block.InlineText("item"), Children: []block.PartialBlock{
			{ID: "B1", Type: "paragraph", Content: block.InlineText("sub")},
		}},
		{ID: "C", Type: "image"},
	})
	if err != nil {
		t.Fatalf("build document: %v", err)
	}
	return doc
}

// ============================================================================
// Resolution
// ============================================================================

func TestInfoAt(t *testing.T) {
	doc := testDoc(t)

	info, ok := InfoAt(doc, 3)
	if !ok {
		t.Fatal("InfoAt(3) found no frame")
	}
	if info.ID != "A" {
		t.Errorf("ID = %q, want A", info.ID)
	}
	if info.StartPos != 1 || info.EndPos != 8 {
		t.Errorf("range = [%d, %d), want [1, 8)", info.StartPos, info.EndPos)
	}
	if info.Depth != 0 {
		t.Errorf("Depth = %d, want 0", info.Depth)
	}
	if info.ContentNode == nil {
		t.Error("ContentNode = nil")
	}
}

func TestInfoAtNested(t *testing.T) {
	doc := testDoc(t)

	info, ok := InfoAt(doc, 18)
	if !ok {
		t.Fatal("InfoAt(18) found no frame")
	}
	if info.ID != "B1" {
		t.Errorf("ID = %q, want B1", info.ID)
	}
	if info.StartPos != 16 || info.EndPos != 23 {
		t.Errorf("range = [%d, %d), want [16, 23)", info.StartPos, info.EndPos)
	}
	if info.Depth != 1 {
		t.Errorf("Depth = %d, want 1", info.Depth)
	}
}

func TestInfoAtOutsideFrames(t *testing.T) {
	doc := testDoc(t)
	tests := []struct {
		name string
		pos  int
	}{
		{"before first frame", 0},
		{"between siblings", 8},
		{"past the document", 1000},
		{"negative", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := InfoAt(doc, tt.pos); ok {
				t.Errorf("InfoAt(%d) resolved a frame", tt.pos)
			}
		})
	}
}

func TestContextAt(t *testing.T) {
	doc := testDoc(t)

	ctx, ok := ContextAt(doc, 11)
	if !ok {
		t.Fatal("ContextAt(11) found no frame")
	}
	if ctx.ID != "B" {
		t.Errorf("ID = %q, want B", ctx.ID)
	}
	if ctx.Index != 1 || ctx.Count != 3 {
		t.Errorf("Index/Count = %d/%d, want 1/3", ctx.Index, ctx.Count)
	}
	if ctx.PrevID != "A" || ctx.NextID != "C" {
		t.Errorf("siblings = %q/%q, want A/C", ctx.PrevID, ctx.NextID)
	}
	if ctx.ParentID != "" {
		t.Errorf("ParentID = %q, want empty for a top-level frame", ctx.ParentID)
	}
}

func TestContextAtNested(t *testing.T) {
	doc := testDoc(t)

	ctx, ok := ContextAt(doc, 18)
	if !ok {
		t.Fatal("ContextAt(18) found no frame")
	}
	if ctx.ID != "B1" {
		t.Errorf("ID = %q, want B1", ctx.ID)
	}
	if ctx.Index != 0 || ctx.Count != 1 {
		t.Errorf("Index/Count = %d/%d, want 0/1", ctx.Index, ctx.Count)
	}
	if ctx.PrevID != "" || ctx.NextID != "" {
		t.Errorf("siblings = %q/%q, want empty", ctx.PrevID, ctx.NextID)
	}
	if ctx.ParentID != "B" {
		t.Errorf("ParentID = %q, want B", ctx.ParentID)
	}
}

// ============================================================================
// Cursor Targets
// ============================================================================

func TestCursorTargets(t *testing.T) {
	doc := testDoc(t)

	a, _ := InfoOfID(doc, "A")
	if got := StartCursor(a, schema.ContentInline); got != 3 {
		t.Errorf("StartCursor(A) = %d, want 3", got)
	}
	if got := EndCursor(a, schema.ContentInline); got != 6 {
		t.Errorf("EndCursor(A) = %d, want 6", got)
	}

	b1, _ := InfoOfID(doc, "B1")
	if got := StartCursor(b1, schema.ContentInline); got != 18 {
		t.Errorf("StartCursor(B1) = %d, want 18", got)
	}
	if got := EndCursor(b1, schema.ContentInline); got != 21 {
		t.Errorf("EndCursor(B1) = %d, want 21", got)
	}

	c, ok := InfoOfID(doc, "C")
	if !ok {
		t.Fatal("InfoOfID(C) missed")
	}
	if got := StartCursor(c, schema.ContentNone); got != c.StartPos+1 {
		t.Errorf("StartCursor(C) = %d, want %d", got, c.StartPos+1)
	}
	if got := EndCursor(c, schema.ContentNone); got != c.StartPos+1 {
		t.Errorf("EndCursor(C) = %d, want %d", got, c.StartPos+1)
	}
}

func TestGroupStart(t *testing.T) {
	doc := testDoc(t)

	b, _ := InfoOfID(doc, "B")
	got, ok := GroupStart(b)
	if !ok {
		t.Fatal("GroupStart(B) reported no group")
	}
	if got != 16 {
		t.Errorf("GroupStart(B) = %d, want 16", got)
	}

	a, _ := InfoOfID(doc, "A")
	if _, ok := GroupStart(a); ok {
		t.Error("GroupStart(A) should report no group")
	}
}

// ============================================================================
// ID Lookup
// ============================================================================

func TestInfoOfID(t *testing.T) {
	doc := testDoc(t)

	info, ok := InfoOfID(doc, "B1")
	if !ok {
		t.Fatal("InfoOfID(B1) missed")
	}
	if info.StartPos != 16 || info.Depth != 1 {
		t.Errorf("B1 = start %d depth %d, want 16/1", info.StartPos, info.Depth)
	}

	if _, ok := InfoOfID(doc, "missing"); ok {
		t.Error("InfoOfID(missing) should miss")
	}
}

func TestInfoOfIDs(t *testing.T) {
	doc := testDoc(t)

	found, missing := InfoOfIDs(doc, []string{"A", "B1", "ghost", "ghost"})
	if len(found) != 2 {
		t.Fatalf("found = %d ids, want 2", len(found))
	}
	if found["A"].StartPos != 1 || found["B1"].StartPos != 16 {
		t.Errorf("found positions = %d/%d", found["A"].StartPos, found["B1"].StartPos)
	}
	if len(missing) != 1 || missing[0] != "ghost" {
		t.Errorf("missing = %v, want [ghost]", missing)
	}
}

// ============================================================================
// Walk
// ============================================================================

func TestWalkOrder(t *testing.T) {
	doc := testDoc(t)

	var ids []string
	var starts, depths []int
	Walk(doc, func(frame *model.Node, start, depth int) Action {
		id, _ := frame.Attrs[schema.AttrID].(string)
		ids = append(ids, id)
		starts = append(starts, start)
		depths = append(depths, depth)
		return Descend
	})

	wantIDs := []string{"A", "B", "B1", "C"}
	wantStarts := []int{1, 8, 16, 25}
	wantDepths := []int{0, 0, 1, 0}
	if len(ids) != len(wantIDs) {
		t.Fatalf("walked %d frames, want %d", len(ids), len(wantIDs))
	}
	for i := range wantIDs {
		if ids[i] != wantIDs[i] || starts[i] != wantStarts[i] || depths[i] != wantDepths[i] {
			t.Errorf("frame[%d] = %s@%d depth %d, want %s@%d depth %d",
				i, ids[i], starts[i], depths[i], wantIDs[i], wantStarts[i], wantDepths[i])
		}
	}
}

func TestWalkSkipChildren(t *testing.T) {
	doc := testDoc(t)

	var ids []string
	Walk(doc, func(frame *model.Node, start, depth int) Action {
		id, _ := frame.Attrs[schema.AttrID].(string)
		ids = append(ids, id)
		return SkipChildren
	})

	want := []string{"A", "B", "C"}
	if len(ids) != len(want) {
		t.Fatalf("walked %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("frame[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestWalkHalt(t *testing.T) {
	doc := testDoc(t)

	var visited int
	Walk(doc, func(frame *model.Node, start, depth int) Action {
		visited++
		return Halt
	})
	if visited != 1 {
		t.Errorf("visited = %d frames, want 1", visited)
	}
}

// ============================================================================
// Selections
// ============================================================================

func TestSelectionFramesCollapsed(t *testing.T) {
	doc := testDoc(t)

	frames := SelectionFrames(doc, 3, 3)
	if len(frames) != 1 || frames[0].ID != "A" {
		t.Errorf("collapsed selection = %v frames", ids(frames))
	}

	if frames := SelectionFrames(doc, 0, 0); frames != nil {
		t.Errorf("collapsed selection outside frames = %v", ids(frames))
	}
}

func TestSelectionFramesSiblingRun(t *testing.T) {
	doc := testDoc(t)

	frames := SelectionFrames(doc, 3, 11)
	want := []string{"A", "B"}
	got := ids(frames)
	if len(got) != len(want) {
		t.Fatalf("selection = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("selection[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if frames[0].StartPos != 1 || frames[1].StartPos != 8 {
		t.Errorf("selection starts = %d/%d, want 1/8", frames[0].StartPos, frames[1].StartPos)
	}
}

func TestSelectionFramesInverted(t *testing.T) {
	doc := testDoc(t)

	frames := SelectionFrames(doc, 11, 3)
	got := ids(frames)
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("inverted selection = %v, want [A B]", got)
	}
}

func TestSelectionFramesEnclosing(t *testing.T) {
	doc := testDoc(t)

	// One endpoint inside B's own content, the other inside B1: the
	// outer frame covers both.
	frames := SelectionFrames(doc, 11, 18)
	if len(frames) != 1 || frames[0].ID != "B" {
		t.Errorf("enclosing selection = %v, want [B]", ids(frames))
	}
}

func TestSelectionFramesOutsideEndpoint(t *testing.T) {
	doc := testDoc(t)

	// From the document edge into B: topmost overlapping frames.
	frames := SelectionFrames(doc, 0, 11)
	got := ids(frames)
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("selection = %v, want [A B]", got)
	}
}

func ids(frames []Info) []string {
	out := make([]string, len(frames))
	for i, f := range frames {
		out[i] = f.ID
	}
	return out
}
