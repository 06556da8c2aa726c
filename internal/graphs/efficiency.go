package graphs

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// LocalEfficiency returns the binary local efficiency of every node: the
// neighbours of u (u excluded) induce a subgraph, hop distances are measured
// inside it, and
//
//	E_loc(u) = Σ_{i<j} 1/d(i,j) / (k(k−1)/2)
//
// over pairs connected within that subgraph. Edge weights play no part.
// Nodes with at most one neighbour have efficiency 0.
func (v *Views) LocalEfficiency() []float64 {
	out := make([]float64, v.n)
	for u := 0; u < v.n; u++ {
		nb := v.nbrs[u]
		k := len(nb)
		if k <= 1 {
			continue
		}

		sub := v.inducedBinary(nb)
		var sum float64
		for a := 0; a < k; a++ {
			depth := hopDepths(sub, nb[a])
			for b := a + 1; b < k; b++ {
				if d, ok := depth[int64(nb[b])]; ok && d > 0 {
					sum += 1 / float64(d)
				}
			}
		}
		out[u] = sum / (float64(k*(k-1)) / 2)
	}
	return out
}

// inducedBinary builds the unweighted subgraph induced by nodes
func (v *Views) inducedBinary(nodes []int) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for _, x := range nodes {
		g.AddNode(simple.Node(x))
	}
	for a := 0; a < len(nodes); a++ {
		for b := a + 1; b < len(nodes); b++ {
			if v.HasEdge(nodes[a], nodes[b]) {
				g.SetEdge(simple.Edge{F: simple.Node(nodes[a]), T: simple.Node(nodes[b])})
			}
		}
	}
	return g
}

// hopDepths runs a breadth-first walk from source and records each reached
// node's depth
func hopDepths(g *simple.UndirectedGraph, source int) map[int64]int {
	depth := make(map[int64]int)
	var bf traverse.BreadthFirst
	bf.Walk(g, simple.Node(source), func(n graph.Node, d int) bool {
		depth[n.ID()] = d
		return false
	})
	return depth
}
