package graphs

import (
	"math"
	"testing"

	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/connectome"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

// buildFromEdges makes an n-node matrix from weighted undirected edges
func buildFromEdges(t *testing.T, n int, edges map[[2]int]float64) *connectome.Matrix {
	t.Helper()
	data := make([]float64, n*n)
	for e, w := range edges {
		data[e[0]*n+e[1]] = w
		data[e[1]*n+e[0]] = w
	}
	m, err := connectome.NewMatrix(n, data)
	require.NoError(t, err)
	return m
}

func uniformComplete(t *testing.T, n int, w float64) *connectome.Matrix {
	t.Helper()
	edges := map[[2]int]float64{}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			edges[[2]int{i, j}] = w
		}
	}
	return buildFromEdges(t, n, edges)
}

func edgeSet(t *testing.T, v *Views) (weighted, binary, distance map[[2]int64]bool) {
	t.Helper()
	collect := func(it interface {
		Next() bool
	}, get func() (int64, int64)) map[[2]int64]bool {
		out := map[[2]int64]bool{}
		for it.Next() {
			a, b := get()
			if a > b {
				a, b = b, a
			}
			out[[2]int64{a, b}] = true
		}
		return out
	}

	we := v.Weighted.Edges()
	weighted = collect(we, func() (int64, int64) { e := we.Edge(); return e.From().ID(), e.To().ID() })
	be := v.Binary.Edges()
	binary = collect(be, func() (int64, int64) { e := be.Edge(); return e.From().ID(), e.To().ID() })
	de := v.Distance.Edges()
	distance = collect(de, func() (int64, int64) { e := de.Edge(); return e.From().ID(), e.To().ID() })
	return weighted, binary, distance
}

func TestBuild_ViewsShareEdgeSet(t *testing.T) {
	m := buildFromEdges(t, 6, map[[2]int]float64{
		{0, 1}: 0.8, {0, 2}: 0.05, {1, 3}: 1.2, {2, 4}: 0.3, {3, 4}: 0.1,
	})

	v := Build(m, 0.1)

	w, b, d := edgeSet(t, v)
	assert.Equal(t, w, b)
	assert.Equal(t, w, d)
	// 0.05 and the 0.1 tie are excluded by the strict comparison
	assert.Len(t, w, 3)
	assert.Equal(t, 3, v.EdgeCount())
	assert.Equal(t, 6, v.Weighted.Nodes().Len(), "isolated nodes stay in the graph")

	wt, ok := v.Distance.Weight(1, 3)
	require.True(t, ok)
	assert.InDelta(t, 1/1.2, wt, tol)
	bw, ok := v.Binary.Weight(0, 1)
	require.True(t, ok)
	assert.Equal(t, 1.0, bw)
}

func TestBuild_NeighborsSorted(t *testing.T) {
	m := uniformComplete(t, 5, 1)
	v := Build(m, 0)
	for u := 0; u < 5; u++ {
		nb := v.Neighbors(u)
		require.Len(t, nb, 4)
		for k := 1; k < len(nb); k++ {
			assert.Less(t, nb[k-1], nb[k])
		}
	}
}

func TestDistances_PathGraph(t *testing.T) {
	// 0 -1.0- 1 -0.5- 2  => lengths 1 and 2
	m := buildFromEdges(t, 3, map[[2]int]float64{{0, 1}: 1, {1, 2}: 0.5})
	v := Build(m, 0)

	dist := v.DistanceMatrix()
	assert.InDelta(t, 3.0, dist[0][2], tol)
	assert.InDelta(t, 2.0, dist[2][1], tol)

	assert.InDeltaSlice(t, []float64{1, 3, 2}, v.ReachablePairDistances(), tol)
}

func TestDistances_DisconnectedPairsOmitted(t *testing.T) {
	m := buildFromEdges(t, 4, map[[2]int]float64{{0, 1}: 1, {2, 3}: 2})
	v := Build(m, 0)

	assert.True(t, math.IsInf(v.DistanceMatrix()[0][3], 1))
	assert.InDeltaSlice(t, []float64{1, 0.5}, v.ReachablePairDistances(), tol)
}

func TestBetweenness(t *testing.T) {
	// star: centre 0 lies on every leaf-to-leaf path
	m := buildFromEdges(t, 4, map[[2]int]float64{{0, 1}: 1, {0, 2}: 1, {0, 3}: 1})
	v := Build(m, 0)

	bc := v.Betweenness()
	assert.InDelta(t, 1.0, bc[0], tol)
	assert.InDelta(t, 0.0, bc[1], tol)

	// path 0-1-2: node 1 carries the only pair
	p := Build(buildFromEdges(t, 3, map[[2]int]float64{{0, 1}: 1, {1, 2}: 1}), 0)
	assert.InDeltaSlice(t, []float64{0, 1, 0}, p.Betweenness(), tol)
}

func TestBetweenness_UsesLengths(t *testing.T) {
	// square 0-1-2-3-0; the 0-1-2 route is shorter (strong weights), so 1
	// carries the 0/2 pair and 3 carries nothing for it
	m := buildFromEdges(t, 4, map[[2]int]float64{
		{0, 1}: 10, {1, 2}: 10, {2, 3}: 1, {3, 0}: 1,
	})
	v := Build(m, 0)
	bc := v.Betweenness()
	assert.Greater(t, bc[1], bc[3])
}

func TestBetweenness_NoEdges(t *testing.T) {
	v := Build(buildFromEdges(t, 3, nil), 0)
	assert.Equal(t, []float64{0, 0, 0}, v.Betweenness())
}

func TestWeightedClustering(t *testing.T) {
	m := buildFromEdges(t, 4, map[[2]int]float64{
		{0, 1}: 1, {0, 2}: 1, {1, 2}: 0.5, {2, 3}: 1,
	})
	v := Build(m, 0)

	c := v.WeightedClustering()
	want := math.Cbrt(0.5)
	assert.InDelta(t, want, c[0], tol)
	assert.InDelta(t, want, c[1], tol)
	// node 2 has three neighbours, one closed pair out of three
	assert.InDelta(t, 2*want/6, c[2], tol)
	assert.Equal(t, 0.0, c[3])
}

func TestWeightedClustering_UniformComplete(t *testing.T) {
	v := Build(uniformComplete(t, 5, 0.3), 0)
	for _, c := range v.WeightedClustering() {
		assert.InDelta(t, 1.0, c, tol)
	}
}

func TestTransitivity(t *testing.T) {
	v := Build(uniformComplete(t, 4, 1), 0)
	assert.InDelta(t, 1.0, v.Transitivity(), tol)

	// triangle plus pendant: 3 closed triples out of 5 connected triples
	m := buildFromEdges(t, 4, map[[2]int]float64{{0, 1}: 1, {0, 2}: 1, {1, 2}: 1, {2, 3}: 1})
	assert.InDelta(t, 3.0/5.0, Build(m, 0).Transitivity(), tol)

	star := buildFromEdges(t, 4, map[[2]int]float64{{0, 1}: 1, {0, 2}: 1, {0, 3}: 1})
	assert.Equal(t, 0.0, Build(star, 0).Transitivity())
}

func TestEigenvectorCentrality_Star(t *testing.T) {
	m := buildFromEdges(t, 4, map[[2]int]float64{{0, 1}: 1, {0, 2}: 1, {0, 3}: 1})
	ec, ok := Build(m, 0).EigenvectorCentrality()
	require.True(t, ok)

	assert.InDelta(t, 1/math.Sqrt2, ec[0], 1e-9)
	for _, leaf := range ec[1:] {
		assert.InDelta(t, 1/math.Sqrt(6), leaf, 1e-9)
	}
}

func TestEigenvectorCentrality_UniformComplete(t *testing.T) {
	ec, ok := Build(uniformComplete(t, 4, 2.5), 0).EigenvectorCentrality()
	require.True(t, ok)
	for _, x := range ec {
		assert.InDelta(t, 0.5, x, 1e-9)
	}
}

func TestEigenvectorCentrality_NoEdges(t *testing.T) {
	ec, ok := Build(buildFromEdges(t, 3, nil), 0).EigenvectorCentrality()
	assert.False(t, ok)
	assert.Equal(t, []float64{0, 0, 0}, ec)
}

func TestLocalEfficiency(t *testing.T) {
	v := Build(uniformComplete(t, 4, 1), 0)
	for _, e := range v.LocalEfficiency() {
		assert.InDelta(t, 1.0, e, tol)
	}

	// centre of a path 1-0-2 with 1 and 2 unlinked: no pair connected
	path := buildFromEdges(t, 3, map[[2]int]float64{{0, 1}: 1, {0, 2}: 1})
	assert.Equal(t, []float64{0, 0, 0}, Build(path, 0).LocalEfficiency())
}

func TestLocalEfficiency_HopsInsideNeighbourhood(t *testing.T) {
	// hub 0 linked to 1,2,3; inside the neighbourhood 1-2-3 is a path, so
	// d(1,2)=d(2,3)=1 and d(1,3)=2
	m := buildFromEdges(t, 4, map[[2]int]float64{
		{0, 1}: 1, {0, 2}: 1, {0, 3}: 1, {1, 2}: 0.2, {2, 3}: 9,
	})
	eff := Build(m, 0).LocalEfficiency()
	assert.InDelta(t, (1+1+0.5)/3, eff[0], tol)
}

func TestGreedyModularity_TwoTriangles(t *testing.T) {
	m := buildFromEdges(t, 6, map[[2]int]float64{
		{0, 1}: 1, {0, 2}: 1, {1, 2}: 1,
		{3, 4}: 1, {3, 5}: 1, {4, 5}: 1,
		{2, 3}: 1,
	})
	p, ok := Build(m, 0).GreedyModularity()
	require.True(t, ok)

	assert.Equal(t, [][]int{{0, 1, 2}, {3, 4, 5}}, p.Communities)
	assert.InDelta(t, 5.0/14.0, p.Modularity, tol)
}

func TestGreedyModularity_CompleteGraphSingleCommunity(t *testing.T) {
	p, ok := Build(uniformComplete(t, 4, 1), 0).GreedyModularity()
	require.True(t, ok)
	assert.Len(t, p.Communities, 1)
	assert.InDelta(t, 0.0, p.Modularity, tol)
}

func TestGreedyModularity_IsolatedNodesAreSingletons(t *testing.T) {
	m := buildFromEdges(t, 4, map[[2]int]float64{{0, 1}: 1})
	p, ok := Build(m, 0).GreedyModularity()
	require.True(t, ok)
	assert.Len(t, p.Communities, 3)
	assert.Equal(t, []int{0, 1}, p.Communities[0])
}

func TestGreedyModularity_NoEdges(t *testing.T) {
	_, ok := Build(buildFromEdges(t, 3, nil), 0).GreedyModularity()
	assert.False(t, ok)
}

func TestModularity_MatchesManualScore(t *testing.T) {
	m := buildFromEdges(t, 4, map[[2]int]float64{{0, 1}: 1, {2, 3}: 1})
	v := Build(m, 0)
	// two perfect components: Q = 2·(1/2 − (2/4)²) = 0.5
	assert.InDelta(t, 0.5, v.Modularity([][]int{{0, 1}, {2, 3}}), tol)
}
