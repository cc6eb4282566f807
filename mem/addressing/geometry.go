// Package addressing splits memory addresses into the tag, set index and
// block offset fields that a set-associative cache is indexed by.
package addressing

import (
	"errors"
	"fmt"
)

// AddressWidth is the number of bits in a simulated memory address.
const AddressWidth = 64

// MaxSetIndexBits bounds the number of sets a cache can be built with.
const MaxSetIndexBits = 32

// ErrInvalidGeometry is returned when a cache geometry cannot be simulated.
var ErrInvalidGeometry = errors.New("invalid cache geometry")

// Geometry describes the shape of a set-associative cache. A cache has
// 2^SetIndexBits sets, each holding LinesPerSet lines of 2^BlockOffsetBits
// bytes.
type Geometry struct {
	SetIndexBits    uint32
	LinesPerSet     uint32
	BlockOffsetBits uint32
}

// Validate returns an error wrapping ErrInvalidGeometry if the geometry does
// not describe a cache that can be simulated.
func (g Geometry) Validate() error {
	if g.LinesPerSet == 0 {
		return fmt.Errorf("%w: a set must hold at least one line",
			ErrInvalidGeometry)
	}

	if uint64(g.SetIndexBits)+uint64(g.BlockOffsetBits) > AddressWidth {
		return fmt.Errorf(
			"%w: %d set index bits and %d block offset bits exceed "+
				"the %d-bit address width",
			ErrInvalidGeometry,
			g.SetIndexBits, g.BlockOffsetBits, AddressWidth)
	}

	if g.SetIndexBits > MaxSetIndexBits {
		return fmt.Errorf("%w: at most %d set index bits are supported, "+
			"got %d",
			ErrInvalidGeometry, MaxSetIndexBits, g.SetIndexBits)
	}

	return nil
}

// NumSets returns the number of sets in the cache.
func (g Geometry) NumSets() uint64 {
	return uint64(1) << g.SetIndexBits
}

// BlockSize returns the number of bytes in a block. It is 0 when the block
// offset covers the whole address.
func (g Geometry) BlockSize() uint64 {
	return uint64(1) << g.BlockOffsetBits
}

// TotalSize returns the maximum number of bytes the cache can hold.
func (g Geometry) TotalSize() uint64 {
	return g.NumSets() * uint64(g.LinesPerSet) * g.BlockSize()
}

func (g Geometry) String() string {
	return fmt.Sprintf("s=%d E=%d b=%d",
		g.SetIndexBits, g.LinesPerSet, g.BlockOffsetBits)
}

// Decode splits an address into its tag, set index and block offset. The
// block offset takes the low BlockOffsetBits bits, the set index the next
// SetIndexBits bits, and the tag all remaining high bits.
func Decode(addr uint64, g Geometry) (tag, setIndex, blockOffset uint64) {
	blockOffset = addr & lowMask(g.BlockOffsetBits)
	setIndex = (addr >> g.BlockOffsetBits) & lowMask(g.SetIndexBits)
	tag = addr >> (g.SetIndexBits + g.BlockOffsetBits)

	return tag, setIndex, blockOffset
}

// Compose is the inverse of Decode. Fields wider than the geometry allows
// are truncated.
func Compose(tag, setIndex, blockOffset uint64, g Geometry) uint64 {
	addr := tag << (g.SetIndexBits + g.BlockOffsetBits)
	addr |= (setIndex & lowMask(g.SetIndexBits)) << g.BlockOffsetBits
	addr |= blockOffset & lowMask(g.BlockOffsetBits)

	return addr
}

func lowMask(bits uint32) uint64 {
	if bits >= AddressWidth {
		return ^uint64(0)
	}

	return uint64(1)<<bits - 1
}
