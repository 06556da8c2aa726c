package features

import (
	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/connectome"
	"github.com/BunBunAstrale/AlmostDoctorsAI/internal/graphs"

	"github.com/montanaflynn/stats"
)

// ComputeGlobal derives the graph-level descriptors from the three views.
// Measures that have no meaning for the graph (no edges, fewer than two nodes)
// come back undefined rather than zero.
func ComputeGlobal(v *graphs.Views) connectome.GlobalFeatures {
	n := v.N()
	g := connectome.GlobalFeatures{
		Nodes:         connectome.Defined(float64(n)),
		BinaryDensity: connectome.Defined(binaryDensity(v)),
		TotalStrength: connectome.Defined(v.TotalStrength()),
		MeanStrength:  meanStrength(v),
	}

	g.CharPathLength, g.GlobalEfficiency = pathMeasures(v)

	if v.EdgeCount() == 0 {
		g.Transitivity = connectome.Undefined()
		g.AvgWeightedClustering = connectome.Undefined()
		g.Communities = connectome.Undefined()
		g.Modularity = connectome.Undefined()
		return g
	}

	g.Transitivity = connectome.Defined(v.Transitivity())
	g.AvgWeightedClustering = mean(v.WeightedClustering())

	if p, ok := v.GreedyModularity(); ok {
		g.Communities = connectome.Defined(float64(len(p.Communities)))
		g.Modularity = connectome.Defined(p.Modularity)
	} else {
		g.Communities = connectome.Undefined()
		g.Modularity = connectome.Undefined()
	}
	return g
}

// binaryDensity is edges / (N(N−1)/2), and 0 for N ≤ 1
func binaryDensity(v *graphs.Views) float64 {
	n := v.N()
	if n <= 1 {
		return 0
	}
	return float64(v.EdgeCount()) / (float64(n) * float64(n-1) / 2)
}

// meanStrength averages full row sums of qualifying weights, so a kept
// diagonal counts here while nodal strength stays edge-only
func meanStrength(v *graphs.Views) connectome.Value {
	strengths := make([]float64, v.N())
	for u := range strengths {
		strengths[u] = v.RowStrength(u)
	}
	return mean(strengths)
}

// pathMeasures averages shortest-path lengths and their reciprocals over the
// connected pairs only; disconnected pairs are left out of both means.
func pathMeasures(v *graphs.Views) (charPath, efficiency connectome.Value) {
	if v.EdgeCount() == 0 || v.N() <= 1 {
		return connectome.Undefined(), connectome.Undefined()
	}

	dists := v.ReachablePairDistances()
	inverse := make([]float64, 0, len(dists))
	for _, d := range dists {
		if d > 0 {
			inverse = append(inverse, 1/d)
		}
	}
	return mean(dists), mean(inverse)
}

// mean is undefined for empty input
func mean(xs []float64) connectome.Value {
	m, err := stats.Mean(xs)
	if err != nil {
		return connectome.Undefined()
	}
	return connectome.Defined(m)
}
