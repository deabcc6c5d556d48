// Package cache provides a set-associative cache model for trace replay. The
// model tracks block residency and hit/miss counts only; it does not model
// timing or data movement.
package cache

// Byte size units.
const (
	KB = 1 << 10
	MB = 1 << 20
	GB = 1 << 30
)

// A Cache models one set-associative level of a cache hierarchy.
type Cache struct {
	name string

	lineSize         uint64
	numSets          uint64
	wayAssociativity int

	sets         []Set
	victimFinder VictimFinder

	clock  uint64
	hits   uint64
	misses uint64
}

// Name returns the name of the cache.
func (c *Cache) Name() string {
	return c.name
}

// TotalByteSize returns the maximum number of bytes the cache can hold.
func (c *Cache) TotalByteSize() uint64 {
	return c.numSets * uint64(c.wayAssociativity) * c.lineSize
}

// NumSets returns the number of sets in the cache.
func (c *Cache) NumSets() int {
	return int(c.numSets)
}

// WayAssociativity returns the number of blocks per set.
func (c *Cache) WayAssociativity() int {
	return c.wayAssociativity
}

// Probe looks up addr, installing its block on a miss, and records the
// outcome in the hit/miss counters. It returns true on a hit.
func (c *Cache) Probe(addr uint64) bool {
	hit := c.probeOrFill(addr)

	if hit {
		c.hits++
	} else {
		c.misses++
	}

	return hit
}

// Fill performs the same state update as Probe without touching the
// counters. It models backfill after a lower level resolved the access, so
// that a later reference to the same block hits here.
func (c *Cache) Fill(addr uint64) {
	c.probeOrFill(addr)
}

// Stats returns the cumulative hit and miss counts.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits, c.misses
}

func (c *Cache) probeOrFill(addr uint64) bool {
	tag, setID := c.decompose(addr)
	set := &c.sets[setID]

	// The clock advances exactly once per reference, counted or not, so
	// that LastUse reflects the true temporal order of all references.
	c.clock++

	for i := range set.Blocks {
		block := &set.Blocks[i]
		if block.Valid && block.Tag == tag {
			block.LastUse = c.clock
			return true
		}
	}

	victim := c.victimFinder.FindVictim(set)
	victim.Valid = true
	victim.Tag = tag
	victim.LastUse = c.clock

	return false
}

func (c *Cache) decompose(addr uint64) (tag, setID uint64) {
	blockID := addr / c.lineSize

	return blockID / c.numSets, blockID % c.numSets
}
