// Package connectivity turns raw connectivity grids into canonical adjacency
// matrices.
package connectivity

import (
	"math"

	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/connectome"
	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/core"
)

// NormalizeOptions controls the optional normalization steps
type NormalizeOptions struct {
	ZeroDiagonal  bool `json:"zero_diagonal"`
	ClipNegatives bool `json:"clip_negatives"`
}

// DefaultNormalizeOptions zeroes the diagonal and clips negative weights
func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{
		ZeroDiagonal:  true,
		ClipNegatives: true,
	}
}

// Normalize produces the canonical matrix: non-finite entries become 0, the grid
// must be square, then A ← (A + Aᵀ)/2, the diagonal is zeroed and negatives are
// clipped (each step configurable). A non-square or empty grid yields core.ErrShape.
func Normalize(raw [][]float64, opts NormalizeOptions) (*connectome.Matrix, error) {
	rows := len(raw)
	cols := 0
	for _, r := range raw {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if rows == 0 || rows != cols {
		return nil, core.NewShapeError(rows, cols)
	}

	n := rows
	a := make([]float64, n*n)
	for i, r := range raw {
		for j, v := range r {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				v = 0
			}
			a[i*n+j] = v
		}
	}

	sym := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := 0.5 * (a[i*n+j] + a[j*n+i])
			if opts.ZeroDiagonal && i == j {
				v = 0
			}
			if opts.ClipNegatives && v < 0 {
				v = 0
			}
			sym[i*n+j] = v
		}
	}

	return connectome.NewMatrix(n, sym)
}

// NormalizeCells coerces raw text cells and normalizes the result
func NormalizeCells(cells [][]string, opts NormalizeOptions) (*connectome.Matrix, error) {
	return Normalize(CoerceCells(cells), opts)
}
