package connectome

import (
	"fmt"
)

// Matrix is a normalized N×N connectivity matrix: symmetric, non-negative and
// (by default) zero on the diagonal. It has no setters; build a new one instead.
type Matrix struct {
	n    int
	data []float64 // row-major
}

// NewMatrix copies data (row-major, length n*n) into a Matrix
func NewMatrix(n int, data []float64) (*Matrix, error) {
	if n < 0 {
		return nil, fmt.Errorf("matrix dimension must be non-negative, got %d", n)
	}
	if len(data) != n*n {
		return nil, fmt.Errorf("matrix data has %d entries, want %d", len(data), n*n)
	}
	cp := make([]float64, len(data))
	copy(cp, data)
	return &Matrix{n: n, data: cp}, nil
}

// N returns the number of nodes (regions)
func (m *Matrix) N() int {
	return m.n
}

// At returns the entry at row i, column j
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.n+j]
}

// Row returns a copy of row i
func (m *Matrix) Row(i int) []float64 {
	row := make([]float64, m.n)
	copy(row, m.data[i*m.n:(i+1)*m.n])
	return row
}

// Data returns a copy of the row-major entries
func (m *Matrix) Data() []float64 {
	cp := make([]float64, len(m.data))
	copy(cp, m.data)
	return cp
}

// EdgeCount is the number of upper-triangle cells, N·(N−1)/2
func (m *Matrix) EdgeCount() int {
	return m.n * (m.n - 1) / 2
}

// UpperTriangle returns the strict upper triangle (k=1) in row-major scan order
func (m *Matrix) UpperTriangle() []float64 {
	out := make([]float64, 0, m.EdgeCount())
	for i := 0; i < m.n; i++ {
		for j := i + 1; j < m.n; j++ {
			out = append(out, m.data[i*m.n+j])
		}
	}
	return out
}

// Equal reports whether both matrices have the same dimension and entries
func (m *Matrix) Equal(other *Matrix) bool {
	if other == nil || m.n != other.n {
		return false
	}
	for i, v := range m.data {
		if other.data[i] != v {
			return false
		}
	}
	return true
}
