package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Cache", func() {
	var c *Cache

	BeforeEach(func() {
		c = MakeBuilder().
			WithByteSize(512).
			WithLineSize(64).
			WithWayAssociativity(2).
			Build("Cache")
	})

	It("should report its geometry", func() {
		Expect(c.Name()).To(Equal("Cache"))
		Expect(c.NumSets()).To(Equal(4))
		Expect(c.WayAssociativity()).To(Equal(2))
		Expect(c.TotalByteSize()).To(Equal(uint64(512)))
	})

	It("should miss then hit on a repeated access", func() {
		Expect(c.Probe(0x1000)).To(BeFalse())
		Expect(c.Probe(0x1000)).To(BeTrue())

		hits, misses := c.Stats()
		Expect(hits).To(Equal(uint64(1)))
		Expect(misses).To(Equal(uint64(1)))
	})

	It("should treat all addresses of one line as the same block", func() {
		Expect(c.Probe(0x1000)).To(BeFalse())
		Expect(c.Probe(0x1001)).To(BeTrue())
		Expect(c.Probe(0x103f)).To(BeTrue())
	})

	It("should evict the least recently used block of a full set", func() {
		// Addresses 0, 64, 128, 256 map to sets 0, 1, 2, 0.
		Expect(c.Probe(0)).To(BeFalse())
		Expect(c.Probe(64)).To(BeFalse())
		Expect(c.Probe(128)).To(BeFalse())
		Expect(c.Probe(256)).To(BeFalse())

		Expect(c.Probe(0)).To(BeTrue())

		// 512 is the third distinct tag mapping to set 0. It must evict
		// 256, the older of the two residents, since 0 was just touched.
		Expect(c.Probe(512)).To(BeFalse())
		Expect(c.Probe(0)).To(BeTrue())
		Expect(c.Probe(256)).To(BeFalse())

		hits, misses := c.Stats()
		Expect(hits).To(Equal(uint64(2)))
		Expect(misses).To(Equal(uint64(6)))
	})

	It("should keep the other residents after one eviction", func() {
		Expect(c.Probe(0)).To(BeFalse())
		Expect(c.Probe(256)).To(BeFalse())
		Expect(c.Probe(512)).To(BeFalse())

		// 0 was the LRU resident, so 256 and 512 survive.
		Expect(c.Probe(256)).To(BeTrue())
		Expect(c.Probe(512)).To(BeTrue())
	})

	It("should not count fills", func() {
		c.Fill(0x1000)

		hits, misses := c.Stats()
		Expect(hits).To(Equal(uint64(0)))
		Expect(misses).To(Equal(uint64(0)))
	})

	It("should hit after a fill", func() {
		c.Fill(0x1000)
		Expect(c.Probe(0x1000)).To(BeTrue())
	})

	It("should refresh recency on a fill", func() {
		Expect(c.Probe(0)).To(BeFalse())
		Expect(c.Probe(256)).To(BeFalse())

		c.Fill(0)

		// 256 is now the LRU resident of set 0 and must be the victim.
		Expect(c.Probe(512)).To(BeFalse())
		Expect(c.Probe(0)).To(BeTrue())
		Expect(c.Probe(256)).To(BeFalse())
	})

	Context("with a non-power-of-two set count", func() {
		BeforeEach(func() {
			c = MakeBuilder().
				WithByteSize(3 * 64 * 2).
				WithLineSize(64).
				WithWayAssociativity(2).
				Build("Cache")
		})

		It("should map blocks modulo the set count", func() {
			Expect(c.NumSets()).To(Equal(3))

			Expect(c.Probe(0)).To(BeFalse())
			// 192 = 3 * 64 wraps back onto set 0 with a new tag.
			Expect(c.Probe(192)).To(BeFalse())
			Expect(c.Probe(0)).To(BeTrue())
			Expect(c.Probe(192)).To(BeTrue())
		})
	})
})

var _ = Describe("Builder", func() {
	It("should reject a capacity that does not divide into sets", func() {
		Expect(func() {
			MakeBuilder().
				WithByteSize(500).
				WithLineSize(64).
				WithWayAssociativity(2).
				Build("Cache")
		}).To(Panic())
	})

	It("should reject a capacity smaller than one set", func() {
		Expect(func() {
			MakeBuilder().
				WithByteSize(0).
				WithLineSize(64).
				WithWayAssociativity(2).
				Build("Cache")
		}).To(Panic())
	})

	It("should reject a zero line size", func() {
		Expect(func() {
			MakeBuilder().WithLineSize(0).Build("Cache")
		}).To(Panic())
	})

	It("should reject a non-positive associativity", func() {
		Expect(func() {
			MakeBuilder().WithWayAssociativity(0).Build("Cache")
		}).To(Panic())
	})

	It("should reject an unknown replace strategy", func() {
		Expect(func() {
			MakeBuilder().WithReplaceStrategy("fifo").Build("Cache")
		}).To(Panic())
	})
})
