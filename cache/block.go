package cache

// A Block is the bookkeeping state of one cache line. Tag and LastUse are
// only meaningful while Valid is true.
type Block struct {
	Tag     uint64
	Valid   bool
	LastUse uint64
}

// A Set is the group of blocks that a given address can map to.
type Set struct {
	Blocks []Block
}
