package transpose

import "github.com/sarchlab/csim/mem/cache"

// Instrumented is a matrix whose element accesses are reported to a cache
// before the element is touched.
type Instrumented struct {
	*Matrix

	accessor cache.Accessor
}

// Instrument wraps a matrix so that its accesses go to the accessor.
func Instrument(m *Matrix, accessor cache.Accessor) Instrumented {
	return Instrumented{Matrix: m, accessor: accessor}
}

// Load reports a read of element (i, j) and returns it.
func (x Instrumented) Load(i, j int) int32 {
	x.record(i, j)
	return x.At(i, j)
}

// Store reports a write of element (i, j) and sets it.
func (x Instrumented) Store(i, j int, v int32) {
	x.record(i, j)
	x.Set(i, j, v)
}

func (x Instrumented) record(i, j int) {
	_, err := x.accessor.RecordAccess(x.Address(i, j))
	if err != nil {
		panic(err)
	}
}
