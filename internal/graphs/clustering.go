package graphs

import (
	"math"
)

// maxWeight returns the largest edge weight, or 1 for an empty graph
func (v *Views) maxWeight() float64 {
	maxW := 0.0
	for i := 0; i < v.n; i++ {
		for _, j := range v.nbrs[i] {
			if w := v.weight[i][j]; w > maxW {
				maxW = w
			}
		}
	}
	if maxW == 0 {
		return 1
	}
	return maxW
}

// WeightedClustering returns the weighted local clustering coefficient of every
// node: with ŵ = w / max(w),
//
//	c(u) = 2 / (k(k−1)) · Σ_{v<x ∈ N(u), v~x} (ŵ_uv · ŵ_ux · ŵ_vx)^(1/3)
//
// Nodes with fewer than two neighbours have coefficient 0.
func (v *Views) WeightedClustering() []float64 {
	out := make([]float64, v.n)
	if v.edges == 0 {
		return out
	}
	maxW := v.maxWeight()

	for u := 0; u < v.n; u++ {
		nb := v.nbrs[u]
		k := len(nb)
		if k < 2 {
			continue
		}
		var sum float64
		for a := 0; a < k; a++ {
			x := nb[a]
			for b := a + 1; b < k; b++ {
				y := nb[b]
				if !v.HasEdge(x, y) {
					continue
				}
				sum += math.Cbrt((v.weight[u][x] / maxW) * (v.weight[u][y] / maxW) * (v.weight[x][y] / maxW))
			}
		}
		if sum == 0 {
			continue
		}
		out[u] = 2 * sum / float64(k*(k-1))
	}
	return out
}

// triangles returns, per node, the number of triangles through it on the binary view
func (v *Views) triangles() []int {
	out := make([]int, v.n)
	for u := 0; u < v.n; u++ {
		nb := v.nbrs[u]
		for a := 0; a < len(nb); a++ {
			for b := a + 1; b < len(nb); b++ {
				if v.HasEdge(nb[a], nb[b]) {
					out[u]++
				}
			}
		}
	}
	return out
}

// Transitivity returns the fraction of connected triples that are closed,
// 3·triangles / triads, on the binary view. It is 0 when there are no triangles.
func (v *Views) Transitivity() float64 {
	tri := v.triangles()
	var closed, triads int
	for u := 0; u < v.n; u++ {
		k := len(v.nbrs[u])
		closed += 2 * tri[u]
		triads += k * (k - 1)
	}
	if closed == 0 {
		return 0
	}
	return float64(closed) / float64(triads)
}
