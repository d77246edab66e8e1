package blockcache

import (
	"testing"

	"github.com/cozy/prosemirror-go/model"

	"github.com/quillon/masonry/internal/block"
)

func TestNewAppliesDefaults(t *testing.T) {
	c := New(Config{})
	def := DefaultConfig()

	if c.config.MaxEntries != def.MaxEntries {
		t.Errorf("MaxEntries = %d, want %d", c.config.MaxEntries, def.MaxEntries)
	}
	if c.config.MaxAge != def.MaxAge {
		t.Errorf("MaxAge = %d, want %d", c.config.MaxAge, def.MaxAge)
	}
	if c.config.EvictionBatchSize != def.EvictionBatchSize {
		t.Errorf("EvictionBatchSize = %d, want %d", c.config.EvictionBatchSize, def.EvictionBatchSize)
	}
}

func TestGetMiss(t *testing.T) {
	c := New(DefaultConfig())

	if _, ok := c.Get(new(model.Node), 1); ok {
		t.Error("Get on an empty cache should miss")
	}
	if stats := c.Stats(); stats.Misses != 1 || stats.Hits != 0 {
		t.Errorf("stats after miss = %+v", stats)
	}
}

func TestPutGet(t *testing.T) {
	c := New(DefaultConfig())
	frame := new(model.Node)
	b := &block.Block{ID: "b1", Type: "paragraph"}

	c.Put(frame, b, 1)
	got, ok := c.Get(frame, 1)
	if !ok {
		t.Fatal("Get after Put missed")
	}
	if got != b {
		t.Error("Get should return the stored block value")
	}
	if stats := c.Stats(); stats.Hits != 1 || stats.Size != 1 {
		t.Errorf("stats after hit = %+v", stats)
	}
}

func TestDistinctFramesDistinctEntries(t *testing.T) {
	c := New(DefaultConfig())
	f1, f2 := new(model.Node), new(model.Node)
	c.Put(f1, &block.Block{ID: "b1"}, 1)
	c.Put(f2, &block.Block{ID: "b2"}, 1)

	got, ok := c.Get(f2, 1)
	if !ok || got.ID != "b2" {
		t.Errorf("Get(f2) = %v, %v", got, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestSweepDropsUntouchedEntries(t *testing.T) {
	c := New(Config{MaxEntries: 100, MaxAge: 4, EvictionBatchSize: 10})
	stale := new(model.Node)
	fresh := new(model.Node)

	c.Put(stale, &block.Block{ID: "stale"}, 1)
	c.Put(fresh, &block.Block{ID: "fresh"}, 1)

	// Touching keeps the entry alive through later sweeps.
	if _, ok := c.Get(fresh, 8); !ok {
		t.Fatal("Get(fresh) missed")
	}

	dropped := c.Sweep(8)
	if dropped != 1 {
		t.Errorf("Sweep dropped %d entries, want 1", dropped)
	}
	if _, ok := c.Get(stale, 8); ok {
		t.Error("stale entry survived the sweep")
	}
	if _, ok := c.Get(fresh, 8); !ok {
		t.Error("touched entry should survive the sweep")
	}
}

func TestSweepWithinMaxAgeKeepsEntries(t *testing.T) {
	c := New(Config{MaxEntries: 100, MaxAge: 4, EvictionBatchSize: 10})
	frame := new(model.Node)
	c.Put(frame, &block.Block{ID: "b1"}, 1)

	if dropped := c.Sweep(5); dropped != 0 {
		t.Errorf("Sweep at the age boundary dropped %d entries", dropped)
	}
	if dropped := c.Sweep(6); dropped != 1 {
		t.Errorf("Sweep past the age boundary dropped %d entries, want 1", dropped)
	}
}

func TestEvictionBatch(t *testing.T) {
	c := New(Config{MaxEntries: 4, MaxAge: 100, EvictionBatchSize: 2})

	frames := make([]*model.Node, 5)
	for i := range frames {
		frames[i] = new(model.Node)
		c.Put(frames[i], &block.Block{ID: "b"}, uint64(i+1))
	}

	// Overflow evicts down past the cap by a batch, oldest first.
	if got := c.Len(); got != 2 {
		t.Errorf("Len after overflow = %d, want 2", got)
	}
	for i := 0; i < 3; i++ {
		if _, ok := c.Get(frames[i], 10); ok {
			t.Errorf("frame %d should have been evicted", i)
		}
	}
	for i := 3; i < 5; i++ {
		if _, ok := c.Get(frames[i], 10); !ok {
			t.Errorf("frame %d should have been kept", i)
		}
	}
	if stats := c.Stats(); stats.Evictions != 3 {
		t.Errorf("evictions = %d, want 3", stats.Evictions)
	}
}

func TestPurge(t *testing.T) {
	c := New(DefaultConfig())
	frame := new(model.Node)
	c.Put(frame, &block.Block{ID: "b1"}, 1)

	c.Purge()
	if c.Len() != 0 {
		t.Errorf("Len after purge = %d", c.Len())
	}
	if _, ok := c.Get(frame, 1); ok {
		t.Error("Get after purge should miss")
	}
}

func TestStats(t *testing.T) {
	c := New(Config{MaxEntries: 8, MaxAge: 4, EvictionBatchSize: 2})
	frame := new(model.Node)

	c.Get(frame, 1)
	c.Put(frame, &block.Block{ID: "b1"}, 1)
	c.Get(frame, 1)
	c.Get(frame, 1)

	stats := c.Stats()
	if stats.Hits != 2 {
		t.Errorf("Hits = %d, want 2", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	if stats.Size != 1 {
		t.Errorf("Size = %d, want 1", stats.Size)
	}
	if stats.MaxSize != 8 {
		t.Errorf("MaxSize = %d, want 8", stats.MaxSize)
	}
	want := 2.0 / 3.0
	if diff := stats.HitRate - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("HitRate = %v, want %v", stats.HitRate, want)
	}
}
