package cache

import (
	"fmt"
)

// Builder can build caches.
type Builder struct {
	byteSize         uint64
	lineSize         uint64
	wayAssociativity int
	replaceStrategy  string
}

// MakeBuilder creates a new builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		byteSize:         16 * KB,
		lineSize:         64,
		wayAssociativity: 4,
		replaceStrategy:  "lru",
	}
}

// WithByteSize sets the total capacity of the cache in bytes.
func (b Builder) WithByteSize(byteSize uint64) Builder {
	b.byteSize = byteSize
	return b
}

// WithLineSize sets the cache line size in bytes.
func (b Builder) WithLineSize(lineSize uint64) Builder {
	b.lineSize = lineSize
	return b
}

// WithWayAssociativity sets the number of blocks per set.
func (b Builder) WithWayAssociativity(wayAssociativity int) Builder {
	b.wayAssociativity = wayAssociativity
	return b
}

// WithReplaceStrategy sets the replacement strategy of the cache.
func (b Builder) WithReplaceStrategy(replaceStrategy string) Builder {
	b.replaceStrategy = replaceStrategy
	return b
}

// Build builds a cache. It panics if the parameters do not describe a
// realizable cache geometry.
func (b Builder) Build(name string) *Cache {
	b.MustBeValid()

	numSets := b.numSets()

	c := &Cache{
		name:             name,
		lineSize:         b.lineSize,
		numSets:          numSets,
		wayAssociativity: b.wayAssociativity,
		victimFinder:     b.createVictimFinder(),
	}

	c.sets = make([]Set, numSets)
	for i := range c.sets {
		c.sets[i].Blocks = make([]Block, b.wayAssociativity)
	}

	return c
}

// MustBeValid panics if the builder's parameters are not a valid cache
// configuration. Build calls it internally; holders that keep a builder
// around to create caches later can call it eagerly to fail fast.
func (b Builder) MustBeValid() {
	if b.wayAssociativity <= 0 {
		panic(fmt.Sprintf("way associativity must be positive, got %d",
			b.wayAssociativity))
	}

	if b.lineSize == 0 {
		panic("line size must be positive")
	}

	setSize := b.lineSize * uint64(b.wayAssociativity)
	if b.byteSize%setSize != 0 {
		panic(fmt.Sprintf(
			"cache must have an integer number of sets, "+
				"%d bytes does not divide into %d-byte sets",
			b.byteSize, setSize))
	}

	if b.numSets() == 0 {
		panic(fmt.Sprintf(
			"cache of %d bytes cannot hold a single %d-byte set",
			b.byteSize, setSize))
	}
}

func (b Builder) numSets() uint64 {
	return b.byteSize / (b.lineSize * uint64(b.wayAssociativity))
}

func (b Builder) createVictimFinder() VictimFinder {
	switch b.replaceStrategy {
	case "lru":
		return NewLRUVictimFinder()
	default:
		panic("unknown replace strategy: " + b.replaceStrategy)
	}
}
