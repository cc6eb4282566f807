package cache

import (
	"log"

	"github.com/sarchlab/csim/sim"
)

// HookPosAccess marks the completion of an access. The hook item is an
// AccessEvent.
var HookPosAccess = &sim.HookPos{Name: "CacheAccess"}

// AccessEvent describes a completed access.
type AccessEvent struct {
	Seq         uint64
	Address     uint64
	Tag         uint64
	SetIndex    uint64
	BlockOffset uint64
	Outcome     Outcome

	// Stats are the counters right after the access.
	Stats Stats
}

func (m *Manager) traceAccess(event AccessEvent) {
	if m.NumHooks() == 0 {
		return
	}

	ctx := sim.HookCtx{
		Domain: m,
		Pos:    HookPosAccess,
		Item:   event,
	}

	m.InvokeHook(ctx)
}

// VerboseHook prints the decision made for every access.
type VerboseHook struct {
	sim.LogHookBase
}

// NewVerboseHook creates a VerboseHook that writes to the logger.
func NewVerboseHook(logger *log.Logger) *VerboseHook {
	h := new(VerboseHook)
	h.Logger = logger

	return h
}

// Func prints the access.
func (h *VerboseHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != HookPosAccess {
		return
	}

	event, ok := ctx.Item.(AccessEvent)
	if !ok {
		return
	}

	h.Printf("%x set=%d tag=%x %s\n",
		event.Address, event.SetIndex, event.Tag, event.Outcome)
}
