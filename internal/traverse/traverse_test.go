package traverse

import (
	"testing"

	"github.com/quillon/masonry/internal/block"
)

func b(id string, children ...block.Block) block.Block {
	return block.Block{ID: id, Type: "paragraph", Children: children}
}

// tree returns a small nested fixture:
//
//	A
//	  A1
//	    A1a
//	  A2
//	B
//	C
//	  C1
func tree() []block.Block {
	return []block.Block{
		b("A", b("A1", b("A1a")), b("A2")),
		b("B"),
		b("C", b("C1")),
	}
}

func walkIDs(blocks []block.Block, reverse bool) ([]string, []int) {
	var ids []string
	var depths []int
	w := New(blocks, reverse)
	for it, ok := w.Next(); ok; it, ok = w.Next() {
		ids = append(ids, it.Block.ID)
		depths = append(depths, it.Depth)
	}
	return ids, depths
}

func TestWalkOrder(t *testing.T) {
	ids, depths := walkIDs(tree(), false)

	wantIDs := []string{"A", "A1", "A1a", "A2", "B", "C", "C1"}
	wantDepths := []int{0, 1, 2, 1, 0, 0, 1}
	if len(ids) != len(wantIDs) {
		t.Fatalf("walk length = %d, want %d", len(ids), len(wantIDs))
	}
	for i := range wantIDs {
		if ids[i] != wantIDs[i] {
			t.Errorf("walk[%d] = %q, want %q", i, ids[i], wantIDs[i])
		}
		if depths[i] != wantDepths[i] {
			t.Errorf("depth[%d] = %d, want %d", i, depths[i], wantDepths[i])
		}
	}
}

func TestWalkReverse(t *testing.T) {
	ids, _ := walkIDs(tree(), true)

	// Siblings reverse at every level; parents still precede children.
	want := []string{"C", "C1", "B", "A", "A2", "A1", "A1a"}
	if len(ids) != len(want) {
		t.Fatalf("walk length = %d, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("walk[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestWalkEmpty(t *testing.T) {
	w := New(nil, false)
	if _, ok := w.Next(); ok {
		t.Error("walk over nil should be exhausted immediately")
	}
	if !Each(nil, false, func(Item) Signal { return Continue }) {
		t.Error("Each over nil should report completion")
	}
}

func TestEachSkipChildren(t *testing.T) {
	var ids []string
	done := Each(tree(), false, func(it Item) Signal {
		ids = append(ids, it.Block.ID)
		if it.Block.ID == "A" {
			return SkipChildren
		}
		return Continue
	})

	if !done {
		t.Error("Each should report completion")
	}
	want := []string{"A", "B", "C", "C1"}
	if len(ids) != len(want) {
		t.Fatalf("visited = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("visited[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestEachStop(t *testing.T) {
	var visited int
	done := Each(tree(), false, func(it Item) Signal {
		visited++
		if it.Block.ID == "A1a" {
			return Stop
		}
		return Continue
	})

	if done {
		t.Error("Each should report an aborted walk")
	}
	if visited != 3 {
		t.Errorf("visited = %d blocks, want 3", visited)
	}
}

func TestFind(t *testing.T) {
	blocks := tree()

	found, ok := Find(blocks, "A1a")
	if !ok {
		t.Fatal("Find(A1a) missed")
	}
	if found.ID != "A1a" {
		t.Errorf("Find returned %q", found.ID)
	}

	if _, ok := Find(blocks, "missing"); ok {
		t.Error("Find(missing) should miss")
	}
	if _, ok := Find(nil, "A"); ok {
		t.Error("Find over nil should miss")
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		name   string
		blocks []block.Block
		want   int
	}{
		{"nil", nil, 0},
		{"flat", []block.Block{b("A"), b("B")}, 2},
		{"nested", tree(), 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Count(tt.blocks); got != tt.want {
				t.Errorf("Count = %d, want %d", got, tt.want)
			}
		})
	}
}
