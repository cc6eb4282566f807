package transpose

import (
	"fmt"
	"sort"
)

// Func transposes a, an n-by-m matrix, into b, an m-by-n matrix.
type Func func(m, n int, a, b Instrumented)

// A Routine is a named transpose implementation.
type Routine struct {
	Name        string
	Description string
	Fn          Func
}

// Registry holds the transpose routines available for evaluation.
type Registry struct {
	routines map[string]Routine
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{routines: make(map[string]Routine)}
}

// DefaultRegistry returns a registry with the built-in routines.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("naive", "Simple row-wise scan transpose", Naive)
	r.Register("blocked", "Blocked transpose with 8x8 blocks", Blocked(8))
	r.Register("diagonal",
		"Blocked transpose with 8x8 blocks and deferred diagonal",
		Diagonal(8))

	return r
}

// Register adds a routine. Registering a name twice panics.
func (r *Registry) Register(name, description string, fn Func) {
	if _, found := r.routines[name]; found {
		panic(fmt.Sprintf("routine %s is already registered", name))
	}

	r.routines[name] = Routine{
		Name:        name,
		Description: description,
		Fn:          fn,
	}
}

// Get returns the routine with the given name.
func (r *Registry) Get(name string) (Routine, bool) {
	routine, found := r.routines[name]
	return routine, found
}

// List returns all the routines sorted by name.
func (r *Registry) List() []Routine {
	list := make([]Routine, 0, len(r.routines))
	for _, routine := range r.routines {
		list = append(list, routine)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})

	return list
}

// Naive scans a row by row.
func Naive(m, n int, a, b Instrumented) {
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			b.Store(j, i, a.Load(i, j))
		}
	}
}

// Blocked transposes one size-by-size block at a time.
func Blocked(size int) Func {
	mustBePositive(size)

	return func(m, n int, a, b Instrumented) {
		for ii := 0; ii < n; ii += size {
			for jj := 0; jj < m; jj += size {
				for i := ii; i < min(ii+size, n); i++ {
					for j := jj; j < min(jj+size, m); j++ {
						b.Store(j, i, a.Load(i, j))
					}
				}
			}
		}
	}
}

// Diagonal is like Blocked, but writes the diagonal element of each row
// last. In a direct-mapped cache, a[i][i] and b[i][i] can share a line, so
// writing b[i][i] right after reading a[i][i] would evict the rest of the
// row of a.
func Diagonal(size int) Func {
	mustBePositive(size)

	return func(m, n int, a, b Instrumented) {
		for ii := 0; ii < n; ii += size {
			for jj := 0; jj < m; jj += size {
				for i := ii; i < min(ii+size, n); i++ {
					diag := -1

					var diagValue int32

					for j := jj; j < min(jj+size, m); j++ {
						if i == j {
							diag = j
							diagValue = a.Load(i, j)

							continue
						}

						b.Store(j, i, a.Load(i, j))
					}

					if diag >= 0 {
						b.Store(diag, i, diagValue)
					}
				}
			}
		}
	}
}

func mustBePositive(size int) {
	if size <= 0 {
		panic(fmt.Sprintf("block size must be positive, got %d", size))
	}
}
