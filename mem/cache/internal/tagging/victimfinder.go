package tagging

// A VictimFinder decides with block should be evicted
type VictimFinder interface {
	FindVictim(set *Set) (Block, bool)
}

// LRUVictimFinder evicts the least recently used block to evict
type LRUVictimFinder struct {
}

// NewLRUVictimFinder returns a newly constructed lru evictor
func NewLRUVictimFinder() *LRUVictimFinder {
	e := new(LRUVictimFinder)
	return e
}

// FindVictim returns an invalid block if the set has one. Otherwise, it
// returns the least recently used block.
func (e *LRUVictimFinder) FindVictim(set *Set) (Block, bool) {
	if len(set.Blocks) == 0 {
		return Block{}, false
	}

	// First try evicting an empty block
	for _, block := range set.Blocks {
		if !block.IsValid {
			return block, true
		}
	}

	victim := set.Blocks[0]
	for _, block := range set.Blocks[1:] {
		if block.LastAccess < victim.LastAccess {
			victim = block
		}
	}

	return victim, true
}
