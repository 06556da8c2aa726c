package graphs

import (
	"math"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// DistanceMatrix runs single-source Dijkstra from every node of the distance view
// (edge length 1/weight). Unreachable pairs are +Inf, the diagonal is 0.
func (v *Views) DistanceMatrix() [][]float64 {
	dist := make([][]float64, v.n)
	for i := 0; i < v.n; i++ {
		dist[i] = make([]float64, v.n)
		if len(v.nbrs[i]) == 0 {
			for j := range dist[i] {
				dist[i][j] = math.Inf(1)
			}
			dist[i][i] = 0
			continue
		}

		sp := path.DijkstraFrom(simple.Node(i), v.Distance)
		for j := 0; j < v.n; j++ {
			dist[i][j] = sp.WeightTo(int64(j))
		}
		dist[i][i] = 0
	}
	return dist
}

// ReachablePairDistances returns the shortest-path length of every unordered pair
// i<j that is connected, in row-major pair order. Disconnected pairs are omitted.
func (v *Views) ReachablePairDistances() []float64 {
	dist := v.DistanceMatrix()
	out := make([]float64, 0, v.n*(v.n-1)/2)
	for i := 0; i < v.n; i++ {
		for j := i + 1; j < v.n; j++ {
			if d := dist[i][j]; !math.IsInf(d, 1) {
				out = append(out, d)
			}
		}
	}
	return out
}

// Betweenness returns normalized shortest-path betweenness of every node on the
// distance view: the ordered-pair path fractions through u divided by
// (N−1)(N−2). Graphs without edges, or with fewer than three nodes, give zeros.
func (v *Views) Betweenness() []float64 {
	out := make([]float64, v.n)
	if v.edges == 0 {
		return out
	}

	all := path.DijkstraAllPaths(v.Distance)
	raw := network.BetweennessWeighted(v.Distance, all)

	scale := 1.0
	if v.n > 2 {
		scale = 1 / float64((v.n-1)*(v.n-2))
	}
	for id, b := range raw {
		out[id] = b * scale
	}
	return out
}
