// Package hierarchy composes set-associative caches into a three-level
// inclusive hierarchy with private per-thread L1 caches and shared L2 and L3
// caches.
package hierarchy

import (
	"fmt"

	"github.com/sarchlab/cachereplay/cache"
)

// LevelStats is the cumulative hit and miss counts of one hierarchy level.
type LevelStats struct {
	Hits   uint64
	Misses uint64
}

// Stats is a snapshot of the per-level statistics of a hierarchy. L1 is
// aggregated across all private instances.
type Stats struct {
	L1 LevelStats
	L2 LevelStats
	L3 LevelStats
}

// A Hierarchy replays memory references against private per-thread L1 caches
// backed by shared L2 and L3 caches. The hierarchy is inclusive: whenever a
// lower level resolves a miss, the block is also installed in every level
// above it on the requesting thread's path.
//
// A Hierarchy is not safe for concurrent use. Replay order defines the LRU
// recency order, so all accesses must come from a single goroutine.
type Hierarchy struct {
	name string

	numCores  int
	l1Builder cache.Builder

	l1Caches map[uint64]*cache.Cache
	l2Cache  *cache.Cache
	l3Cache  *cache.Cache
}

// Name returns the name of the hierarchy.
func (h *Hierarchy) Name() string {
	return h.name
}

// NumCores returns the core count the hierarchy was configured with. The
// value is informational; it does not restrict which thread ids Access may
// see.
func (h *Hierarchy) NumCores() int {
	return h.numCores
}

// NumL1Caches returns the number of private L1 caches created so far.
func (h *Hierarchy) NumL1Caches() int {
	return len(h.l1Caches)
}

// Access replays one memory reference issued by the given thread.
//
// The reference first probes the thread's private L1. On an L1 miss it
// probes the shared L2 and, if that misses too, the shared L3. Each level
// that resolves the miss backfills the levels above it with uncounted
// fills, so a repeated reference to the same address by the same thread is
// guaranteed to hit at L1.
func (h *Hierarchy) Access(addr, threadID uint64) {
	l1 := h.l1CacheForThread(threadID)

	if l1.Probe(addr) {
		return
	}

	if h.l2Cache.Probe(addr) {
		l1.Fill(addr)
		return
	}

	// An L3 miss fetches from memory, which installs the block in every
	// level either way.
	h.l3Cache.Probe(addr)
	h.l2Cache.Fill(addr)
	l1.Fill(addr)
}

// Stats sums the counters of all private L1 caches into one L1 total and
// reports the shared L2 and L3 counters directly. It never resets counters
// and can be called at any point for a consistent partial snapshot.
func (h *Hierarchy) Stats() Stats {
	var stats Stats

	for _, l1 := range h.l1Caches {
		hits, misses := l1.Stats()
		stats.L1.Hits += hits
		stats.L1.Misses += misses
	}

	stats.L2.Hits, stats.L2.Misses = h.l2Cache.Stats()
	stats.L3.Hits, stats.L3.Misses = h.l3Cache.Stats()

	return stats
}

// l1CacheForThread returns the private L1 of the given thread, creating it
// on first reference. The mapping only grows; threads are never evicted.
func (h *Hierarchy) l1CacheForThread(threadID uint64) *cache.Cache {
	l1, ok := h.l1Caches[threadID]
	if !ok {
		l1 = h.l1Builder.Build(
			fmt.Sprintf("%s.L1[%d]", h.name, threadID))
		h.l1Caches[threadID] = l1
	}

	return l1
}
