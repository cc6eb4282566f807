// Package cache simulates the hit, miss, and eviction behavior of a
// set-associative cache with LRU replacement.
package cache

import (
	"errors"
	"fmt"

	"github.com/sarchlab/csim/mem/addressing"
	"github.com/sarchlab/csim/mem/cache/internal/tagging"
	"github.com/sarchlab/csim/sim"
)

// ErrInvalidGeometry is returned when a cache is initialized with a geometry
// that cannot be simulated.
var ErrInvalidGeometry = addressing.ErrInvalidGeometry

// ErrNotInitialized is returned when an access is recorded before the cache
// is initialized.
var ErrNotInitialized = errors.New("cache manager is not initialized")

// An Accessor accepts the memory references of a workload.
type Accessor interface {
	RecordAccess(addr uint64) (Outcome, error)
}

// Manager owns a simulated cache and the statistics collected on it. A
// Manager serves a single sequential stream of accesses and is not safe for
// concurrent use.
type Manager struct {
	*sim.HookableBase

	geometry     addressing.Geometry
	tags         tagging.TagArray
	victimFinder tagging.VictimFinder
	stats        Stats
	numAccesses  uint64
}

// NewManager creates a Manager that must be initialized before use.
func NewManager() *Manager {
	return &Manager{
		HookableBase: sim.NewHookableBase(),
		victimFinder: tagging.NewLRUVictimFinder(),
	}
}

// Initialize allocates an empty cache with the given geometry and resets all
// the counters. Initializing again discards the previous state. If the
// geometry is invalid, the previous state is kept.
func (m *Manager) Initialize(g addressing.Geometry) error {
	if err := g.Validate(); err != nil {
		return err
	}

	m.geometry = g
	m.tags = tagging.NewTagArray(int(g.NumSets()), int(g.LinesPerSet))
	m.stats = Stats{}
	m.numAccesses = 0

	return nil
}

// IsInitialized returns true if the cache has been given a geometry.
func (m *Manager) IsInitialized() bool {
	return m.tags != nil
}

// Geometry returns the geometry the cache was initialized with.
func (m *Manager) Geometry() addressing.Geometry {
	return m.geometry
}

// RecordAccess simulates a reference to the given address and returns how
// the cache served it. The block offset of the address does not affect the
// outcome.
func (m *Manager) RecordAccess(addr uint64) (Outcome, error) {
	if !m.IsInitialized() {
		return Hit, ErrNotInitialized
	}

	tag, setIndex, blockOffset := addressing.Decode(addr, m.geometry)
	outcome := m.access(int(setIndex), tag)

	m.numAccesses++
	m.traceAccess(AccessEvent{
		Seq:         m.numAccesses,
		Address:     addr,
		Tag:         tag,
		SetIndex:    setIndex,
		BlockOffset: blockOffset,
		Outcome:     outcome,
		Stats:       m.stats,
	})

	return outcome, nil
}

// MustRecordAccess is like RecordAccess, but panics if the cache is not
// initialized.
func (m *Manager) MustRecordAccess(addr uint64) Outcome {
	outcome, err := m.RecordAccess(addr)
	if err != nil {
		panic(err)
	}

	return outcome
}

func (m *Manager) access(setID int, tag uint64) Outcome {
	block, found := m.tags.Lookup(setID, tag)
	if found {
		m.stats.Hits++
		m.tags.Visit(block)

		return Hit
	}

	m.stats.Misses++

	victim, ok := m.victimFinder.FindVictim(m.tags.GetSet(setID))
	if !ok {
		panic(fmt.Sprintf("no victim found in set %d", setID))
	}

	outcome := MissNoEviction
	if victim.IsValid {
		m.stats.Evictions++
		outcome = MissWithEviction
	}

	victim.IsValid = true
	victim.Tag = tag
	m.tags.Update(victim)
	m.tags.Visit(victim)

	return outcome
}

// Stats returns all the counters.
func (m *Manager) Stats() Stats {
	return m.stats
}

// HitCount returns the number of accesses that hit.
func (m *Manager) HitCount() uint64 {
	return m.stats.Hits
}

// MissCount returns the number of accesses that missed.
func (m *Manager) MissCount() uint64 {
	return m.stats.Misses
}

// EvictionCount returns the number of lines evicted.
func (m *Manager) EvictionCount() uint64 {
	return m.stats.Evictions
}
