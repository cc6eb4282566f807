package transpose

import (
	"fmt"

	"github.com/sarchlab/csim/mem/addressing"
	"github.com/sarchlab/csim/mem/cache"
	"github.com/sarchlab/csim/sim"
)

// BaseAddress is where the source matrix is placed.
const BaseAddress uint64 = 0x0060_2100

// MatrixSpan is the distance between the source and the destination. Both
// matrices are laid out inside 256x256 arrays, one right after the other.
const MatrixSpan uint64 = 256 * 256 * ElementSize

// Result is the outcome of evaluating a routine.
type Result struct {
	Routine string
	M, N    int
	Stats   cache.Stats
	Correct bool
}

// Evaluate runs a routine on an n-by-m source matrix against a fresh cache
// with the given geometry and checks that the result is a transpose.
func Evaluate(
	r Routine,
	m, n int,
	g addressing.Geometry,
	hooks ...sim.Hook,
) (Result, error) {
	if m <= 0 || n <= 0 {
		return Result{}, fmt.Errorf("invalid matrix size %dx%d", n, m)
	}

	if uint64(m)*uint64(n)*ElementSize > MatrixSpan {
		return Result{}, fmt.Errorf("matrix %dx%d does not fit in %d bytes",
			n, m, MatrixSpan)
	}

	builder := cache.MakeBuilder().WithGeometry(g)
	for _, h := range hooks {
		builder = builder.WithHook(h)
	}

	manager, err := builder.Build()
	if err != nil {
		return Result{}, err
	}

	a := NewMatrix(n, m, BaseAddress)
	b := NewMatrix(m, n, BaseAddress+MatrixSpan)
	a.Fill(func(i, j int) int32 { return int32(i*m + j) })

	r.Fn(m, n, Instrument(a, manager), Instrument(b, manager))

	return Result{
		Routine: r.Name,
		M:       m,
		N:       n,
		Stats:   manager.Stats(),
		Correct: IsTranspose(a, b),
	}, nil
}
