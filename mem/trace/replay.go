package trace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/csim/mem/cache"
)

// A Visitor is told how the cache served each instruction.
type Visitor func(ins Instruction, outcomes []cache.Outcome)

// Replayer feeds the accesses of a trace to a cache.
type Replayer struct {
	accessor cache.Accessor
	visitor  Visitor
}

// NewReplayer creates a Replayer that sends accesses to the accessor.
func NewReplayer(accessor cache.Accessor) *Replayer {
	return &Replayer{accessor: accessor}
}

// WithVisitor sets the visitor that observes every instruction.
func (r *Replayer) WithVisitor(v Visitor) *Replayer {
	r.visitor = v
	return r
}

// Replay sends every access read from the reader to the cache and returns
// the number of instructions replayed.
func (r *Replayer) Replay(ctx context.Context, reader *Reader) (int, error) {
	count := 0

	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		ins, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return count, nil
		}

		if err != nil {
			return count, err
		}

		err = r.Execute(ins)
		if err != nil {
			return count, err
		}

		count++
	}
}

// Execute sends the accesses of a single instruction to the cache.
func (r *Replayer) Execute(ins Instruction) error {
	outcomes := make([]cache.Outcome, 0, ins.Op.NumAccesses())

	for i := 0; i < ins.Op.NumAccesses(); i++ {
		outcome, err := r.accessor.RecordAccess(ins.Address)
		if err != nil {
			return fmt.Errorf("replaying %s: %w", ins, err)
		}

		outcomes = append(outcomes, outcome)
	}

	if r.visitor != nil {
		r.visitor(ins, outcomes)
	}

	return nil
}

// NewPrintVisitor creates a Visitor that prints each instruction with its
// outcomes, as in "M 20,1 miss hit".
func NewPrintVisitor(w io.Writer) Visitor {
	return func(ins Instruction, outcomes []cache.Outcome) {
		words := make([]string, 0, len(outcomes))
		for _, o := range outcomes {
			words = append(words, o.String())
		}

		fmt.Fprintf(w, "%s %s\n", ins, strings.Join(words, " "))
	}
}
