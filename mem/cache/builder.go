package cache

import (
	"log"

	"github.com/sarchlab/csim/mem/addressing"
	"github.com/sarchlab/csim/sim"
)

// Builder can build cache managers.
type Builder struct {
	setIndexBits    uint32
	linesPerSet     uint32
	blockOffsetBits uint32
	logger          *log.Logger
	hooks           []sim.Hook
}

// MakeBuilder creates a new builder. By default, the cache has 4 sets of 2
// lines with 8-byte blocks.
func MakeBuilder() Builder {
	return Builder{
		setIndexBits:    2,
		linesPerSet:     2,
		blockOffsetBits: 3,
	}
}

// WithSetIndexBits sets the log2 of the number of sets.
func (b Builder) WithSetIndexBits(bits uint32) Builder {
	b.setIndexBits = bits
	return b
}

// WithLinesPerSet sets the associativity.
func (b Builder) WithLinesPerSet(lines uint32) Builder {
	b.linesPerSet = lines
	return b
}

// WithBlockOffsetBits sets the log2 of the block size.
func (b Builder) WithBlockOffsetBits(bits uint32) Builder {
	b.blockOffsetBits = bits
	return b
}

// WithGeometry sets all the geometry parameters at once.
func (b Builder) WithGeometry(g addressing.Geometry) Builder {
	b.setIndexBits = g.SetIndexBits
	b.linesPerSet = g.LinesPerSet
	b.blockOffsetBits = g.BlockOffsetBits

	return b
}

// WithVerbose makes the manager print the decision of every access to the
// logger.
func (b Builder) WithVerbose(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

// WithHook registers a hook on the manager to build.
func (b Builder) WithHook(hook sim.Hook) Builder {
	hooks := make([]sim.Hook, len(b.hooks), len(b.hooks)+1)
	copy(hooks, b.hooks)
	b.hooks = append(hooks, hook)

	return b
}

// Build creates an initialized manager.
func (b Builder) Build() (*Manager, error) {
	m := NewManager()

	err := m.Initialize(addressing.Geometry{
		SetIndexBits:    b.setIndexBits,
		LinesPerSet:     b.linesPerSet,
		BlockOffsetBits: b.blockOffsetBits,
	})
	if err != nil {
		return nil, err
	}

	if b.logger != nil {
		m.AcceptHook(NewVerboseHook(b.logger))
	}

	for _, h := range b.hooks {
		m.AcceptHook(h)
	}

	return m, nil
}
