package hierarchy

import (
	"github.com/sarchlab/cachereplay/cache"
)

// Builder can build cache hierarchies.
type Builder struct {
	numCores  int
	l1Builder cache.Builder
	l2Builder cache.Builder
	l3Builder cache.Builder
}

// MakeBuilder creates a new builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		numCores: 1,
		l1Builder: cache.MakeBuilder().
			WithByteSize(32 * cache.KB).
			WithLineSize(64).
			WithWayAssociativity(8),
		l2Builder: cache.MakeBuilder().
			WithByteSize(1 * cache.MB).
			WithLineSize(64).
			WithWayAssociativity(8),
		l3Builder: cache.MakeBuilder().
			WithByteSize(16 * cache.MB).
			WithLineSize(64).
			WithWayAssociativity(16),
	}
}

// WithNumCores sets the informational core count of the hierarchy. It does
// not bound the thread ids that may appear during replay; every distinct
// thread id still gets its own private L1.
func (b Builder) WithNumCores(numCores int) Builder {
	b.numCores = numCores
	return b
}

// WithL1CacheBuilder sets the builder used to create each private L1 cache.
func (b Builder) WithL1CacheBuilder(cb cache.Builder) Builder {
	b.l1Builder = cb
	return b
}

// WithL2CacheBuilder sets the builder used to create the shared L2 cache.
func (b Builder) WithL2CacheBuilder(cb cache.Builder) Builder {
	b.l2Builder = cb
	return b
}

// WithL3CacheBuilder sets the builder used to create the shared L3 cache.
func (b Builder) WithL3CacheBuilder(cb cache.Builder) Builder {
	b.l3Builder = cb
	return b
}

// Build builds a hierarchy. The shared L2 and L3 caches are created here,
// once. Private L1 caches are created lazily at first access by each thread,
// but their configuration is validated now so that a bad L1 geometry fails at
// construction rather than mid-replay.
func (b Builder) Build(name string) *Hierarchy {
	b.l1Builder.MustBeValid()

	h := &Hierarchy{
		name:      name,
		numCores:  b.numCores,
		l1Builder: b.l1Builder,
		l1Caches:  make(map[uint64]*cache.Cache),
		l2Cache:   b.l2Builder.Build(name + ".L2"),
		l3Cache:   b.l3Builder.Build(name + ".L3"),
	}

	return h
}
