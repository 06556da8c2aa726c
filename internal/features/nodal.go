package features

import (
	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/connectome"
	"github.com/BunBunAstrale/AlmostDoctorsAI/internal/graphs"
)

// ComputeNodal derives the per-node descriptors, one row per node in index order.
// Every entry is a number: measures that cannot be computed default to 0.
func ComputeNodal(v *graphs.Views) connectome.NodalTable {
	n := v.N()
	table := make(connectome.NodalTable, n)

	clustering := v.WeightedClustering()
	betweenness := v.Betweenness()
	eigenvector, _ := v.EigenvectorCentrality()
	localEff := v.LocalEfficiency()

	for u := 0; u < n; u++ {
		table[u] = connectome.NodeMetrics{
			DegreeBin:      float64(v.Degree(u)),
			Strength:       v.Strength(u),
			ClusteringW:    finiteOrZero(clustering[u]),
			BetweennessLen: finiteOrZero(betweenness[u]),
			EigenvectorW:   finiteOrZero(eigenvector[u]),
			LocalEffBin:    finiteOrZero(localEff[u]),
		}
	}
	return table
}

func finiteOrZero(x float64) float64 {
	if v := connectome.Defined(x); v.IsDefined() {
		return x
	}
	return 0
}
