package connectivity

import (
	"fmt"
	"math"
	"sort"

	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/connectome"
)

// KeepDensity sparsifies m to a proportional density: only the ⌊E·density⌋
// strongest upper-triangle weights survive (mirrored), everything else is zeroed.
// Ties keep upper-triangle scan order. density must lie in (0, 1].
func KeepDensity(m *connectome.Matrix, density float64) (*connectome.Matrix, error) {
	if density <= 0 || density > 1 || math.IsNaN(density) {
		return nil, fmt.Errorf("density must be in (0, 1], got %v", density)
	}

	n := m.N()
	type cell struct {
		i, j int
		w    float64
	}
	cells := make([]cell, 0, m.EdgeCount())
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			cells = append(cells, cell{i, j, m.At(i, j)})
		}
	}
	sort.SliceStable(cells, func(a, b int) bool {
		return cells[a].w > cells[b].w
	})

	keep := int(math.Floor(float64(len(cells)) * density))
	out := make([]float64, n*n)
	for _, c := range cells[:keep] {
		out[c.i*n+c.j] = c.w
		out[c.j*n+c.i] = c.w
	}
	return connectome.NewMatrix(n, out)
}
