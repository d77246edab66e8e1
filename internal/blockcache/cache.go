// Package blockcache memoizes flat-node-to-block conversions keyed by
// node identity. Unchanged subtrees keep their node values across
// document revisions, so a hit never needs a freshness check. Entries
// are aged out by revision sweeps instead of weak references; eviction
// only ever costs recomputation, never correctness.
package blockcache

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cozy/prosemirror-go/model"

	"github.com/quillon/masonry/internal/block"
)

// Config configures cache capacity and aging.
type Config struct {
	// MaxEntries is the maximum number of cached conversions.
	MaxEntries int

	// MaxAge is how many revisions an entry may go untouched before a
	// sweep drops it.
	MaxAge uint64

	// EvictionBatchSize is the number of entries to evict at once when
	// the cache overflows MaxEntries.
	EvictionBatchSize int
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		MaxEntries:        4096,
		MaxAge:            4,
		EvictionBatchSize: 128,
	}
}

type entry struct {
	block *block.Block

	// lastRev is the document revision at which the entry was last
	// stored or returned.
	lastRev uint64
}

// Cache maps frame nodes to their converted blocks.
type Cache struct {
	mu      sync.Mutex
	config  Config
	entries map[*model.Node]entry

	// Stats (atomic for access without holding the lock)
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a cache with the given configuration.
func New(config Config) *Cache {
	if config.MaxEntries <= 0 {
		config.MaxEntries = 4096
	}
	if config.MaxAge == 0 {
		config.MaxAge = 4
	}
	if config.EvictionBatchSize <= 0 {
		config.EvictionBatchSize = 128
	}
	return &Cache{
		config:  config,
		entries: make(map[*model.Node]entry),
	}
}

// Get returns the block previously stored for frame, touching the
// entry so the current revision's sweep keeps it.
func (c *Cache) Get(frame *model.Node, rev uint64) (*block.Block, bool) {
	c.mu.Lock()
	e, ok := c.entries[frame]
	if ok {
		e.lastRev = rev
		c.entries[frame] = e
	}
	c.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return e.block, true
}

// Put stores the conversion result for frame at the given revision.
func (c *Cache) Put(frame *model.Node, b *block.Block, rev uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[frame] = entry{block: b, lastRev: rev}
	c.evictIfNeeded()
}

// Sweep drops entries untouched for more than MaxAge revisions. Nodes
// replaced by an edit are never looked up again, so their entries age
// out here. It returns the number of entries dropped.
func (c *Cache) Sweep(rev uint64) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for frame, e := range c.entries {
		if rev-e.lastRev > c.config.MaxAge {
			delete(c.entries, frame)
			dropped++
		}
	}
	if dropped > 0 {
		c.evictions.Add(uint64(dropped))
	}
	return dropped
}

// evictIfNeeded evicts the least recently touched entries when the
// cache overflows MaxEntries. Caller holds c.mu.
func (c *Cache) evictIfNeeded() {
	if len(c.entries) <= c.config.MaxEntries {
		return
	}

	type entryInfo struct {
		frame *model.Node
		rev   uint64
	}
	infos := make([]entryInfo, 0, len(c.entries))
	for frame, e := range c.entries {
		infos = append(infos, entryInfo{frame, e.lastRev})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].rev < infos[j].rev
	})

	toEvict := len(c.entries) - c.config.MaxEntries + c.config.EvictionBatchSize
	if toEvict > len(infos) {
		toEvict = len(infos)
	}
	for i := 0; i < toEvict; i++ {
		delete(c.entries, infos[i].frame)
	}
	c.evictions.Add(uint64(toEvict))
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[*model.Node]entry)
}

// Len returns the number of cached conversions.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats holds cache statistics.
type Stats struct {
	Size      int
	MaxSize   int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	HitRate   float64
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	evictions := c.evictions.Load()

	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	c.mu.Lock()
	size := len(c.entries)
	c.mu.Unlock()

	return Stats{
		Size:      size,
		MaxSize:   c.config.MaxEntries,
		Hits:      hits,
		Misses:    misses,
		Evictions: evictions,
		HitRate:   hitRate,
	}
}
