package graphs

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"
)

// Partition is the outcome of community detection on the binary view
type Partition struct {
	// Communities are sorted by size (largest first), members ascending
	Communities [][]int
	Modularity  float64
}

// GreedyModularity runs Clauset–Newman–Moore agglomeration on the binary view.
// Every node starts in its own community; the connected pair with the largest
// modularity gain ΔQ is merged while that gain is non-negative. Ties go to the
// lowest (i, j) index pair, i being absorbed into j. Isolated nodes remain
// singleton communities. The modularity of the final partition is scored with
// gonum's community.Q at resolution 1.
//
// ok is false when the binary view has no edges: there is nothing to detect and
// both the count and the score are undefined.
func (v *Views) GreedyModularity() (p Partition, ok bool) {
	if v.edges == 0 {
		return Partition{}, false
	}

	n := v.n
	twoM := float64(2 * v.edges)

	members := make([][]int, n)
	alive := make([]bool, n)
	a := make([]float64, n)
	dq := make([][]float64, n)
	linked := make([][]bool, n)
	for i := 0; i < n; i++ {
		members[i] = []int{i}
		alive[i] = true
		a[i] = float64(len(v.nbrs[i])) / twoM
		dq[i] = make([]float64, n)
		linked[i] = make([]bool, n)
	}
	for i := 0; i < n; i++ {
		for _, j := range v.nbrs[i] {
			linked[i][j] = true
			dq[i][j] = 2 * (1/twoM - a[i]*a[j])
		}
	}

	for {
		bi, bj := -1, -1
		best := 0.0
		for i := 0; i < n; i++ {
			if !alive[i] {
				continue
			}
			for j := 0; j < n; j++ {
				if !linked[i][j] || i == j {
					continue
				}
				if bi < 0 || dq[i][j] > best {
					bi, bj, best = i, j, dq[i][j]
				}
			}
		}
		if bi < 0 || best < 0 {
			break
		}
		mergeCommunities(bi, bj, members, alive, a, dq, linked)
	}

	comms := make([][]int, 0, n)
	for i := 0; i < n; i++ {
		if alive[i] {
			sort.Ints(members[i])
			comms = append(comms, members[i])
		}
	}
	sort.SliceStable(comms, func(x, y int) bool {
		return len(comms[x]) > len(comms[y])
	})

	return Partition{
		Communities: comms,
		Modularity:  community.Q(v.Binary, toNodes(comms), 1),
	}, true
}

// mergeCommunities folds community i into j and updates the gain table
func mergeCommunities(i, j int, members [][]int, alive []bool, a []float64, dq [][]float64, linked [][]bool) {
	for k := range alive {
		if !alive[k] || k == i || k == j {
			continue
		}
		ik, jk := linked[i][k], linked[j][k]
		switch {
		case ik && jk:
			dq[j][k] = dq[i][k] + dq[j][k]
		case ik:
			dq[j][k] = dq[i][k] - 2*a[j]*a[k]
		case jk:
			dq[j][k] = dq[j][k] - 2*a[i]*a[k]
		default:
			continue
		}
		dq[k][j] = dq[j][k]
		linked[j][k], linked[k][j] = true, true
	}

	for k := range alive {
		linked[i][k], linked[k][i] = false, false
	}
	linked[j][j] = false

	members[j] = append(members[j], members[i]...)
	members[i] = nil
	a[j] += a[i]
	a[i] = 0
	alive[i] = false
}

// Modularity scores an arbitrary partition of the binary view
func (v *Views) Modularity(communities [][]int) float64 {
	return community.Q(v.Binary, toNodes(communities), 1)
}

func toNodes(comms [][]int) [][]graph.Node {
	out := make([][]graph.Node, len(comms))
	for c, ids := range comms {
		out[c] = make([]graph.Node, len(ids))
		for k, id := range ids {
			out[c][k] = simple.Node(id)
		}
	}
	return out
}
