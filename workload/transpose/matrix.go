// Package transpose provides matrix-transpose workloads whose every element
// access is reported to a simulated cache.
package transpose

import "fmt"

// ElementSize is the number of bytes in a matrix element.
const ElementSize = 4

// Matrix is a row-major matrix of 32-bit integers placed at a simulated
// base address.
type Matrix struct {
	Rows int
	Cols int
	Base uint64

	data []int32
}

// NewMatrix creates a zeroed matrix.
func NewMatrix(rows, cols int, base uint64) *Matrix {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("invalid matrix shape %dx%d", rows, cols))
	}

	return &Matrix{
		Rows: rows,
		Cols: cols,
		Base: base,
		data: make([]int32, rows*cols),
	}
}

// Address returns the simulated address of element (i, j).
func (m *Matrix) Address(i, j int) uint64 {
	return m.Base + uint64(m.index(i, j))*ElementSize
}

// ByteSize returns the number of bytes the matrix occupies.
func (m *Matrix) ByteSize() uint64 {
	return uint64(len(m.data)) * ElementSize
}

// At returns element (i, j) without reporting an access.
func (m *Matrix) At(i, j int) int32 {
	return m.data[m.index(i, j)]
}

// Set writes element (i, j) without reporting an access.
func (m *Matrix) Set(i, j int, v int32) {
	m.data[m.index(i, j)] = v
}

// Fill sets every element to the value returned by fn.
func (m *Matrix) Fill(fn func(i, j int) int32) {
	for i := 0; i < m.Rows; i++ {
		for j := 0; j < m.Cols; j++ {
			m.Set(i, j, fn(i, j))
		}
	}
}

func (m *Matrix) index(i, j int) int {
	if i < 0 || i >= m.Rows || j < 0 || j >= m.Cols {
		panic(fmt.Sprintf("index (%d, %d) out of range for %dx%d matrix",
			i, j, m.Rows, m.Cols))
	}

	return i*m.Cols + j
}

// IsTranspose returns true if b is the transpose of a.
func IsTranspose(a, b *Matrix) bool {
	if a.Rows != b.Cols || a.Cols != b.Rows {
		return false
	}

	for i := 0; i < a.Rows; i++ {
		for j := 0; j < a.Cols; j++ {
			if a.At(i, j) != b.At(j, i) {
				return false
			}
		}
	}

	return true
}
