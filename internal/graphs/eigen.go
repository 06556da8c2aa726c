package graphs

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// EigenvectorCentrality returns the principal eigenvector of the weighted
// adjacency matrix from a dense symmetric eigendecomposition. The sign is fixed so
// the entries sum positive and the vector has unit Euclidean norm. ok is false,
// and the result all zeros, when the graph has no edges or the decomposition
// fails or yields no usable direction.
func (v *Views) EigenvectorCentrality() (centrality []float64, ok bool) {
	out := make([]float64, v.n)
	if v.edges == 0 {
		return out, false
	}

	adj := mat.NewSymDense(v.n, nil)
	for i := 0; i < v.n; i++ {
		for _, j := range v.nbrs[i] {
			if j > i {
				adj.SetSym(i, j, v.weight[i][j])
			}
		}
	}

	var es mat.EigenSym
	if !es.Factorize(adj, true) {
		return out, false
	}
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	// eigenvalues come back in ascending order
	principal := mat.Col(nil, v.n-1, &vecs)

	var sum float64
	for _, x := range principal {
		sum += x
	}
	norm := mat.Norm(mat.NewVecDense(v.n, principal), 2)
	if sum == 0 || norm == 0 || math.IsNaN(sum) || math.IsNaN(norm) {
		return out, false
	}

	scale := norm
	if sum < 0 {
		scale = -norm
	}
	for i, x := range principal {
		out[i] = x / scale
	}
	return out, true
}
