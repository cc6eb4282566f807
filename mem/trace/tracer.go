// Package trace replays Valgrind memory traces on a simulated cache and
// provides tracers that record the accesses the cache serves.
package trace

import (
	"fmt"
	"log"

	"github.com/sarchlab/csim/datarecording"
	"github.com/sarchlab/csim/mem/cache"
	"github.com/sarchlab/csim/sim"
)

// AccessTableName is the table the DB tracer writes into.
const AccessTableName = "cache_accesses"

// accessEntry represents a cache access in the database. Addresses are
// stored as hex text because SQLite integers are signed.
type accessEntry struct {
	Seq         uint64
	Address     string
	Tag         string
	SetIndex    uint64
	BlockOffset string
	Outcome     string
	Code        int
}

// A tracer is a hook that can record the accesses of a cache into a log.
type tracer struct {
	logger *log.Logger
}

// A dbTracer is a hook that can record the accesses of a cache into a
// database using the data recorder.
type dbTracer struct {
	dataRecorder datarecording.DataRecorder
}

// NewTracer creates a new Tracer.
func NewTracer(logger *log.Logger) sim.Hook {
	t := new(tracer)
	t.logger = logger

	return t
}

// Func logs the access.
func (t *tracer) Func(ctx sim.HookCtx) {
	event, ok := accessEvent(ctx)
	if !ok {
		return
	}

	t.logger.Printf(
		"%d, 0x%x, 0x%x, %d, %d, %s\n",
		event.Seq,
		event.Address,
		event.Tag,
		event.SetIndex,
		event.BlockOffset,
		event.Outcome,
	)
}

// NewDBTracer creates a new database-based Tracer.
func NewDBTracer(dataRecorder datarecording.DataRecorder) sim.Hook {
	t := &dbTracer{
		dataRecorder: dataRecorder,
	}

	t.dataRecorder.CreateTable(AccessTableName, accessEntry{})

	return t
}

// Func records the access.
func (t *dbTracer) Func(ctx sim.HookCtx) {
	event, ok := accessEvent(ctx)
	if !ok {
		return
	}

	entry := accessEntry{
		Seq:         event.Seq,
		Address:     fmt.Sprintf("0x%x", event.Address),
		Tag:         fmt.Sprintf("0x%x", event.Tag),
		SetIndex:    event.SetIndex,
		BlockOffset: fmt.Sprintf("0x%x", event.BlockOffset),
		Outcome:     event.Outcome.String(),
		Code:        event.Outcome.Code(),
	}

	t.dataRecorder.InsertData(AccessTableName, entry)
}

func accessEvent(ctx sim.HookCtx) (cache.AccessEvent, bool) {
	if ctx.Pos != cache.HookPosAccess {
		return cache.AccessEvent{}, false
	}

	event, ok := ctx.Item.(cache.AccessEvent)

	return event, ok
}
