package tagging

// TagArray keeps the tags of the blocks held by a set-associative cache.
type TagArray interface {
	Lookup(setID int, tag uint64) (Block, bool)
	Update(block Block)
	Visit(block Block)
	GetSet(setID int) *Set
	NumSets() int
	NumWays() int
	Reset()
}

// NewTagArray creates a tag array with all blocks invalid.
func NewTagArray(numSets, numWays int) TagArray {
	t := &tagArrayImpl{
		numSets: numSets,
		numWays: numWays,
	}

	t.Reset()

	return t
}

// A Block of a cache is the information that is associated with a cache line
type Block struct {
	Tag        uint64
	SetID      int
	WayID      int
	IsValid    bool
	LastAccess uint64
}

// A Set is a list of blocks where a certain piece memory can be stored at.
// A block with a larger LastAccess was used more recently.
type Set struct {
	Blocks []Block
}

// NumValid returns the number of occupied blocks in the set.
func (s *Set) NumValid() int {
	n := 0

	for _, block := range s.Blocks {
		if block.IsValid {
			n++
		}
	}

	return n
}

type tagArrayImpl struct {
	numSets int
	numWays int
	sets    []Set
	blocks  []Block
	clock   uint64
}

func (d *tagArrayImpl) NumSets() int {
	return d.numSets
}

func (d *tagArrayImpl) NumWays() int {
	return d.numWays
}

// GetSet returns the set with the given index.
func (d *tagArrayImpl) GetSet(setID int) *Set {
	return &d.sets[setID]
}

// Lookup finds the valid block in a set that holds the tag.
func (d *tagArrayImpl) Lookup(setID int, tag uint64) (Block, bool) {
	for _, block := range d.sets[setID].Blocks {
		if block.IsValid && block.Tag == tag {
			return block, true
		}
	}

	return Block{}, false
}

// Update updates the block information
func (d *tagArrayImpl) Update(block Block) {
	d.sets[block.SetID].Blocks[block.WayID] = block
}

// Visit makes the block the most recently used one in its set.
func (d *tagArrayImpl) Visit(block Block) {
	d.clock++
	d.sets[block.SetID].Blocks[block.WayID].LastAccess = d.clock
}

// Reset will mark all the blocks in the directory invalid
func (d *tagArrayImpl) Reset() {
	d.clock = 0
	d.sets = make([]Set, d.numSets)
	d.blocks = make([]Block, d.numSets*d.numWays)

	for i := 0; i < d.numSets; i++ {
		start := i * d.numWays
		end := start + d.numWays
		d.sets[i].Blocks = d.blocks[start:end:end]

		for j := range d.sets[i].Blocks {
			d.sets[i].Blocks[j] = Block{
				SetID: i,
				WayID: j,
			}
		}
	}
}
