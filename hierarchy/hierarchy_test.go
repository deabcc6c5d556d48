package hierarchy_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachereplay/cache"
	"github.com/sarchlab/cachereplay/hierarchy"
)

func makeTinyHierarchy() *hierarchy.Hierarchy {
	return hierarchy.MakeBuilder().
		WithNumCores(4).
		WithL1CacheBuilder(cache.MakeBuilder().
			WithByteSize(256).
			WithLineSize(64).
			WithWayAssociativity(2)).
		WithL2CacheBuilder(cache.MakeBuilder().
			WithByteSize(512).
			WithLineSize(64).
			WithWayAssociativity(2)).
		WithL3CacheBuilder(cache.MakeBuilder().
			WithByteSize(1 * cache.KB).
			WithLineSize(64).
			WithWayAssociativity(2)).
		Build("Hierarchy")
}

var _ = Describe("Hierarchy", func() {
	var h *hierarchy.Hierarchy

	BeforeEach(func() {
		h = makeTinyHierarchy()
	})

	It("should miss every level on a fresh address", func() {
		h.Access(0x1000, 0)

		stats := h.Stats()
		Expect(stats.L1).To(Equal(hierarchy.LevelStats{Hits: 0, Misses: 1}))
		Expect(stats.L2).To(Equal(hierarchy.LevelStats{Hits: 0, Misses: 1}))
		Expect(stats.L3).To(Equal(hierarchy.LevelStats{Hits: 0, Misses: 1}))
	})

	It("should hit at L1 only on a repeated access", func() {
		h.Access(0x1000, 0)
		h.Access(0x1000, 0)

		stats := h.Stats()
		Expect(stats.L1).To(Equal(hierarchy.LevelStats{Hits: 1, Misses: 1}))
		Expect(stats.L2).To(Equal(hierarchy.LevelStats{Hits: 0, Misses: 1}))
		Expect(stats.L3).To(Equal(hierarchy.LevelStats{Hits: 0, Misses: 1}))
	})

	It("should backfill a requesting L1 from a shared L2 hit", func() {
		h.Access(0x1000, 0)
		h.Access(0x1000, 1)

		stats := h.Stats()
		Expect(stats.L1).To(Equal(hierarchy.LevelStats{Hits: 0, Misses: 2}))
		Expect(stats.L2).To(Equal(hierarchy.LevelStats{Hits: 1, Misses: 1}))
		Expect(stats.L3).To(Equal(hierarchy.LevelStats{Hits: 0, Misses: 1}))

		// The L2 hit installed the block in thread 1's L1.
		h.Access(0x1000, 1)

		stats = h.Stats()
		Expect(stats.L1).To(Equal(hierarchy.LevelStats{Hits: 1, Misses: 2}))
		Expect(stats.L2).To(Equal(hierarchy.LevelStats{Hits: 1, Misses: 1}))
	})

	It("should hit at L1 after an access resolved at L3", func() {
		// Thrash the block out of L1 and L2 for thread 0. Addresses
		// 0x1000 + n*256 map to set 0 of both the two-set L1 and the
		// four-set L2, so three distinct tags overflow their two ways.
		// The eight-set L3 keeps 0x1100 in a different set and retains
		// all three blocks.
		h.Access(0x1000, 0)
		h.Access(0x1100, 0)
		h.Access(0x1200, 0)

		statsBefore := h.Stats()
		Expect(statsBefore.L3.Misses).To(Equal(uint64(3)))

		// 0x1000 is gone from L1 and L2 but still resident in L3.
		h.Access(0x1000, 0)

		stats := h.Stats()
		Expect(stats.L3.Hits).To(Equal(uint64(1)))

		// The inclusive fill guarantees the next access hits at L1.
		h.Access(0x1000, 0)

		statsAfter := h.Stats()
		Expect(statsAfter.L1.Hits).To(Equal(stats.L1.Hits + 1))
		Expect(statsAfter.L2).To(Equal(stats.L2))
		Expect(statsAfter.L3).To(Equal(stats.L3))
	})

	It("should create one private L1 per thread, lazily", func() {
		Expect(h.NumL1Caches()).To(Equal(0))

		h.Access(0x1000, 0)
		h.Access(0x1000, 7)
		h.Access(0x1000, 1000000)
		h.Access(0x2000, 7)

		Expect(h.NumL1Caches()).To(Equal(3))
	})

	It("should not gate thread ids by the core count", func() {
		for threadID := uint64(0); threadID < 16; threadID++ {
			h.Access(0x1000, threadID)
		}

		Expect(h.NumCores()).To(Equal(4))
		Expect(h.NumL1Caches()).To(Equal(16))
	})

	It("should keep counters consistent across levels", func() {
		addrs := []uint64{
			0x1000, 0x1040, 0x1080, 0x10c0, 0x1000, 0x2000,
			0x1080, 0x3000, 0x1000, 0x2000, 0x4000, 0x1040,
		}

		numAccesses := uint64(0)
		for i, addr := range addrs {
			h.Access(addr, uint64(i%3))
			numAccesses++
		}

		stats := h.Stats()
		Expect(stats.L1.Hits + stats.L1.Misses).To(Equal(numAccesses))
		Expect(stats.L2.Hits + stats.L2.Misses).To(Equal(stats.L1.Misses))
		Expect(stats.L3.Hits + stats.L3.Misses).To(Equal(stats.L2.Misses))
	})

	It("should not mutate state when reporting stats", func() {
		h.Access(0x1000, 0)
		h.Access(0x2000, 1)

		Expect(h.Stats()).To(Equal(h.Stats()))
	})
})

var _ = Describe("Builder", func() {
	It("should reject an invalid L1 geometry at build time", func() {
		Expect(func() {
			hierarchy.MakeBuilder().
				WithL1CacheBuilder(cache.MakeBuilder().
					WithByteSize(100).
					WithLineSize(64).
					WithWayAssociativity(2)).
				Build("Hierarchy")
		}).To(Panic())
	})

	It("should reject an invalid shared level geometry at build time", func() {
		Expect(func() {
			hierarchy.MakeBuilder().
				WithL3CacheBuilder(cache.MakeBuilder().
					WithByteSize(100).
					WithLineSize(64).
					WithWayAssociativity(2)).
				Build("Hierarchy")
		}).To(Panic())
	})
})
