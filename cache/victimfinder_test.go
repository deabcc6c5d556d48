package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LRUVictimFinder", func() {
	var (
		finder *LRUVictimFinder
		set    *Set
	)

	BeforeEach(func() {
		finder = NewLRUVictimFinder()
		set = &Set{Blocks: make([]Block, 4)}
	})

	It("should prefer the first invalid block in set order", func() {
		set.Blocks[0] = Block{Tag: 1, Valid: true, LastUse: 10}
		set.Blocks[1] = Block{Tag: 2, Valid: true, LastUse: 20}

		victim := finder.FindVictim(set)
		Expect(victim).To(BeIdenticalTo(&set.Blocks[2]))
	})

	It("should pick the block with the smallest last use", func() {
		set.Blocks[0] = Block{Tag: 1, Valid: true, LastUse: 30}
		set.Blocks[1] = Block{Tag: 2, Valid: true, LastUse: 10}
		set.Blocks[2] = Block{Tag: 3, Valid: true, LastUse: 40}
		set.Blocks[3] = Block{Tag: 4, Valid: true, LastUse: 20}

		victim := finder.FindVictim(set)
		Expect(victim).To(BeIdenticalTo(&set.Blocks[1]))
	})

	It("should break last-use ties by set order", func() {
		set.Blocks[0] = Block{Tag: 1, Valid: true, LastUse: 10}
		set.Blocks[1] = Block{Tag: 2, Valid: true, LastUse: 10}
		set.Blocks[2] = Block{Tag: 3, Valid: true, LastUse: 10}
		set.Blocks[3] = Block{Tag: 4, Valid: true, LastUse: 10}

		victim := finder.FindVictim(set)
		Expect(victim).To(BeIdenticalTo(&set.Blocks[0]))
	})
})
