// Package graphs derives the weighted, binary and distance views of a
// connectivity matrix and implements the graph measures computed on them.
//
// All three views share the node set {0..N-1} and the same edge set: an
// undirected edge (i, j) exists iff A[i,j] > threshold. Isolated nodes are kept.
// Measures iterate nodes and neighbours in index order so results do not depend
// on map iteration inside gonum.
package graphs

import (
	"math"

	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/connectome"

	"gonum.org/v1/gonum/graph/simple"
)

// Views holds the three graph views of one matrix
type Views struct {
	// Weighted carries weight = A[i,j]
	Weighted *simple.WeightedUndirectedGraph
	// Binary carries weight = 1
	Binary *simple.WeightedUndirectedGraph
	// Distance carries weight = length = 1/A[i,j]
	Distance *simple.WeightedUndirectedGraph

	n      int
	edges  int
	weight [][]float64 // dense weights of qualifying edges, 0 elsewhere
	nbrs   [][]int     // sorted neighbour lists
	self   []float64   // qualifying diagonal weights; never graph edges
}

// Build scans the upper triangle of m and adds one undirected edge per pair whose
// weight is strictly greater than threshold to each view.
func Build(m *connectome.Matrix, threshold float64) *Views {
	n := m.N()
	v := &Views{
		Weighted: simple.NewWeightedUndirectedGraph(0, 0),
		Binary:   simple.NewWeightedUndirectedGraph(0, 0),
		Distance: simple.NewWeightedUndirectedGraph(0, math.Inf(1)),
		n:        n,
		weight:   make([][]float64, n),
		nbrs:     make([][]int, n),
		self:     make([]float64, n),
	}

	for i := 0; i < n; i++ {
		v.weight[i] = make([]float64, n)
		if w := m.At(i, i); w > threshold && w > 0 {
			v.self[i] = w
		}
		v.Weighted.AddNode(simple.Node(i))
		v.Binary.AddNode(simple.Node(i))
		v.Distance.AddNode(simple.Node(i))
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			w := m.At(i, j)
			if !(w > threshold) || w <= 0 {
				continue
			}
			u, x := simple.Node(i), simple.Node(j)
			v.Weighted.SetWeightedEdge(simple.WeightedEdge{F: u, T: x, W: w})
			v.Binary.SetWeightedEdge(simple.WeightedEdge{F: u, T: x, W: 1})
			v.Distance.SetWeightedEdge(simple.WeightedEdge{F: u, T: x, W: 1 / w})

			v.weight[i][j], v.weight[j][i] = w, w
			v.nbrs[i] = append(v.nbrs[i], j)
			v.nbrs[j] = append(v.nbrs[j], i)
			v.edges++
		}
	}

	// Neighbour lists come out sorted: smaller neighbours are appended during
	// earlier outer passes, larger ones during the node's own pass.
	return v
}

// N returns the number of nodes
func (v *Views) N() int {
	return v.n
}

// EdgeCount returns the number of undirected edges (identical in every view)
func (v *Views) EdgeCount() int {
	return v.edges
}

// Weight returns the weight of edge (i, j), or 0 when absent
func (v *Views) Weight(i, j int) float64 {
	return v.weight[i][j]
}

// HasEdge reports whether (i, j) is an edge
func (v *Views) HasEdge(i, j int) bool {
	return i != j && v.weight[i][j] > 0
}

// Neighbors returns the neighbours of u in ascending order
func (v *Views) Neighbors(u int) []int {
	out := make([]int, len(v.nbrs[u]))
	copy(out, v.nbrs[u])
	return out
}

// Degree returns the number of edges incident to u
func (v *Views) Degree(u int) int {
	return len(v.nbrs[u])
}

// Strength returns the sum of the weights incident to u
func (v *Views) Strength(u int) float64 {
	var s float64
	for _, x := range v.nbrs[u] {
		s += v.weight[u][x]
	}
	return s
}

// RowStrength returns the sum of row u of the thresholded matrix: the incident
// edge weights plus a qualifying diagonal weight
func (v *Views) RowStrength(u int) float64 {
	return v.Strength(u) + v.self[u]
}

// TotalStrength returns the sum of all edge weights, each edge counted once
func (v *Views) TotalStrength() float64 {
	var s float64
	for i := 0; i < v.n; i++ {
		for _, j := range v.nbrs[i] {
			if j > i {
				s += v.weight[i][j]
			}
		}
	}
	return s
}
