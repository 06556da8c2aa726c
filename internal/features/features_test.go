package features

import (
	"errors"
	"math"
	"testing"

	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/connectome"
	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/core"
	"github.com/BunBunAstrale/AlmostDoctorsAI/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func TestExtract_UniformComplete(t *testing.T) {
	ex, err := Extract(testkit.UniformComplete(4, 0.5), DefaultOptions())
	require.NoError(t, err)

	g := ex.Global
	assert.Equal(t, 4.0, g.Nodes.Float())
	assert.InDelta(t, 1.0, g.BinaryDensity.Float(), tol)
	assert.InDelta(t, 3.0, g.TotalStrength.Float(), tol)
	assert.InDelta(t, 1.5, g.MeanStrength.Float(), tol)
	assert.InDelta(t, 2.0, g.CharPathLength.Float(), tol, "path length is 1/w on every direct edge")
	assert.InDelta(t, 0.5, g.GlobalEfficiency.Float(), tol)
	assert.InDelta(t, 1.0, g.Transitivity.Float(), tol)
	assert.InDelta(t, 1.0, g.AvgWeightedClustering.Float(), tol)
	assert.Equal(t, 1.0, g.Communities.Float())
	assert.InDelta(t, 0.0, g.Modularity.Float(), tol)

	require.Len(t, ex.Nodal, 4)
	for u, row := range ex.Nodal {
		assert.Equal(t, 3.0, row.DegreeBin, "node %d", u)
		assert.InDelta(t, 1.5, row.Strength, tol)
		assert.InDelta(t, 1.0, row.ClusteringW, tol)
		assert.InDelta(t, 0.0, row.BetweennessLen, tol)
		assert.InDelta(t, 0.5, row.EigenvectorW, tol)
		assert.InDelta(t, 1.0, row.LocalEffBin, tol)
	}
}

func TestExtract_AllZeroMatrix(t *testing.T) {
	m, err := connectome.NewMatrix(3, make([]float64, 9))
	require.NoError(t, err)

	ex, err := Extract(m, DefaultOptions())
	require.NoError(t, err)

	g := ex.Global
	assert.Equal(t, 3.0, g.Nodes.Float())
	assert.Equal(t, 0.0, g.BinaryDensity.Float())
	assert.Equal(t, 0.0, g.TotalStrength.Float())
	assert.Equal(t, 0.0, g.MeanStrength.Float())
	for _, v := range []connectome.Value{g.CharPathLength, g.GlobalEfficiency, g.Transitivity, g.AvgWeightedClustering, g.Communities, g.Modularity} {
		assert.False(t, v.IsDefined())
	}
	for _, row := range ex.Nodal {
		for _, x := range row.Values() {
			assert.Equal(t, 0.0, x)
		}
	}
}

func TestExtract_SingleNode(t *testing.T) {
	m, err := connectome.NewMatrix(1, []float64{0})
	require.NoError(t, err)

	ex, err := Extract(m, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0.0, ex.Global.BinaryDensity.Float())
	assert.False(t, ex.Global.CharPathLength.IsDefined())
	assert.Len(t, ex.Nodal, 1)
}

func TestExtract_DisconnectedPairsLeftOutOfPathMeans(t *testing.T) {
	// two components: 0-1 (w=1) and 2-3 (w=0.5)
	m := testkit.FromEdges(4, map[[2]int]float64{{0, 1}: 1, {2, 3}: 0.5})

	ex, err := Extract(m, DefaultOptions())
	require.NoError(t, err)

	assert.InDelta(t, 1.5, ex.Global.CharPathLength.Float(), tol)
	assert.InDelta(t, 0.75, ex.Global.GlobalEfficiency.Float(), tol)
	assert.Equal(t, 0.0, ex.Global.Transitivity.Float(), "no triangles is 0, not undefined")
}

func TestExtract_ThresholdIsStrict(t *testing.T) {
	m := testkit.FromEdges(3, map[[2]int]float64{{0, 1}: 0.2, {1, 2}: 0.3})
	opts := DefaultOptions()
	opts.Threshold = 0.2

	ex, err := Extract(m, opts)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, ex.Global.BinaryDensity.Float(), tol)
	assert.InDelta(t, 0.3, ex.Global.TotalStrength.Float(), tol)
	assert.Equal(t, []float64{0.2, 0, 0.3}, ex.Matrix.UpperTriangle(), "edge vector is not thresholded")
}

func TestExtract_DensityKeepsStrongest(t *testing.T) {
	m := testkit.FromEdges(3, map[[2]int]float64{{0, 1}: 0.9, {0, 2}: 0.1, {1, 2}: 0.5})
	opts := DefaultOptions()
	opts.Density = 0.7

	ex, err := Extract(m, opts)
	require.NoError(t, err)
	assert.InDelta(t, 1.4, ex.Global.TotalStrength.Float(), tol)
	assert.Equal(t, []float64{0.9, 0.1, 0.5}, ex.Matrix.UpperTriangle())
}

func TestExtractCells_ShapeError(t *testing.T) {
	_, err := ExtractCells([][]string{{"1", "2", "3"}, {"4", "5", "6"}}, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrShape))
}

func TestExtractCells_EmptyMatrixIsShapeError(t *testing.T) {
	for name, cells := range map[string][][]string{
		"no rows":    nil,
		"empty rows": {{}, {}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ExtractCells(cells, DefaultOptions())
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrShape)
			assert.True(t, core.IsSubjectError(err))
		})
	}
}

func TestExtract_ZeroByZeroMatrix(t *testing.T) {
	m, err := connectome.NewMatrix(0, nil)
	require.NoError(t, err)

	_, err = Extract(m, DefaultOptions())
	assert.ErrorIs(t, err, core.ErrShape)
}

func TestExtractCells_MeanStrengthKeepsDiagonal(t *testing.T) {
	cells := [][]string{{"2", "1"}, {"1", "2"}}
	opts := DefaultOptions()
	opts.Normalize.ZeroDiagonal = false

	ex, err := ExtractCells(cells, opts)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, ex.Global.MeanStrength.Float(), tol, "row sums include the diagonal")
	assert.InDelta(t, 1.0, ex.Global.TotalStrength.Float(), tol)
	for _, row := range ex.Nodal {
		assert.InDelta(t, 1.0, row.Strength, tol, "nodal strength counts edges only")
	}

	opts.Threshold = 2.5
	ex, err = ExtractCells(cells, opts)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, ex.Global.MeanStrength.Float(), tol, "diagonal below threshold is dropped")
}

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())

	neg := DefaultOptions()
	neg.Threshold = -0.1
	assert.Error(t, neg.Validate())

	dense := DefaultOptions()
	dense.Density = 1.5
	assert.Error(t, dense.Validate())
}

func TestColumnNames(t *testing.T) {
	for _, n := range []int{1, 2, 4, 10} {
		cols := ColumnNames(n, 3)
		assert.Len(t, cols, 2+n*(n-1)/2+10+6*n, "n=%d", n)
	}

	cols := ColumnNames(3, 3)
	assert.Equal(t, []string{"id", "label", "edge_0", "edge_1", "edge_2"}, cols[:5])
	assert.Equal(t, connectome.GlobalFieldNames, cols[5:15])
	assert.Equal(t, []string{"degree_bin_n000", "degree_bin_n001", "degree_bin_n002", "strength_n000"}, cols[15:19])
	assert.Equal(t, "local_eff_bin_n002", cols[len(cols)-1])

	assert.Equal(t, "degree_bin_n00", ColumnNames(2, 2)[2+1+10])
}

func TestAssembler_RecordMatchesColumns(t *testing.T) {
	ex, err := Extract(testkit.UniformComplete(4, 0.5), DefaultOptions())
	require.NoError(t, err)

	a := NewAssembler(0)
	assert.Nil(t, a.Columns())

	rec, err := a.Assemble("7", "patient", ex)
	require.NoError(t, err)

	cols := a.Columns()
	require.Len(t, rec.Fields, len(cols)-2)
	for i, f := range rec.Fields {
		assert.Equal(t, cols[i+2], f.Name)
	}

	row := rec.Row()
	assert.Equal(t, "7", row[0])
	assert.Equal(t, "patient", row[1])
	assert.Equal(t, "0.5", row[2])

	deg, ok := rec.Lookup("degree_bin_n003")
	require.True(t, ok)
	assert.Equal(t, 3.0, deg.Float())
	assert.Equal(t, 4, a.Nodes())
}

func TestAssembler_SchemaMismatch(t *testing.T) {
	a := NewAssembler(3)

	first, err := Extract(testkit.UniformComplete(4, 1), DefaultOptions())
	require.NoError(t, err)
	_, err = a.Assemble("1", "a", first)
	require.NoError(t, err)

	second, err := Extract(testkit.UniformComplete(3, 1), DefaultOptions())
	require.NoError(t, err)
	_, err = a.Assemble("2", "b", second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrSchemaMismatch))
	assert.True(t, core.IsBatchFatal(err))
}

func TestAssembler_UndefinedRendersEmpty(t *testing.T) {
	m, err := connectome.NewMatrix(2, make([]float64, 4))
	require.NoError(t, err)
	ex, err := Extract(m, DefaultOptions())
	require.NoError(t, err)

	rec, err := NewAssembler(3).Assemble("1", "x", ex)
	require.NoError(t, err)
	cp, ok := rec.Lookup(connectome.FieldCharPathLength)
	require.True(t, ok)
	assert.False(t, cp.IsDefined())

	row := rec.Row()
	assert.Equal(t, "", row[2+1+4], "charpath cell")
}

func TestZScore(t *testing.T) {
	mk := func(id core.SubjectID, vals ...connectome.Value) *connectome.SubjectRecord {
		fields := make([]connectome.Field, len(vals))
		for i, v := range vals {
			fields[i] = connectome.Field{Name: string(rune('a' + i)), Value: v}
		}
		return &connectome.SubjectRecord{ID: id, Fields: fields}
	}
	recs := []*connectome.SubjectRecord{
		mk("1", 1, 5, connectome.Undefined()),
		mk("2", 3, 5, 2),
		mk("3", connectome.Undefined(), 5, 4),
	}

	ZScore(recs)

	assert.InDelta(t, -1.0, recs[0].Fields[0].Value.Float(), 1e-6)
	assert.InDelta(t, 1.0, recs[1].Fields[0].Value.Float(), 1e-6)
	assert.False(t, recs[2].Fields[0].Value.IsDefined())

	for _, r := range recs {
		assert.InDelta(t, 0.0, r.Fields[1].Value.Float(), tol, "constant column")
	}
	assert.False(t, recs[0].Fields[2].Value.IsDefined())
	assert.InDelta(t, -1.0, recs[1].Fields[2].Value.Float(), 1e-6)
}

func TestSortByID(t *testing.T) {
	recs := []*connectome.SubjectRecord{{ID: "3"}, {ID: "10"}, {ID: "1"}}
	SortByID(recs)
	assert.Equal(t, core.SubjectID("1"), recs[0].ID)
	assert.Equal(t, core.SubjectID("10"), recs[1].ID)
	assert.Equal(t, core.SubjectID("3"), recs[2].ID)
}

func TestExtract_GeneratedCohortIsFinite(t *testing.T) {
	gen := testkit.NewCohortGenerator(testkit.DefaultCohortConfig())
	for _, s := range gen.GenerateCohort() {
		m, err := func() (*connectome.Matrix, error) {
			cells := make([][]string, len(s.Raw))
			for i, r := range s.Raw {
				cells[i] = make([]string, len(r))
				for j, v := range r {
					cells[i][j] = connectome.Value(v).String()
				}
			}
			ex, err := ExtractCells(cells, DefaultOptions())
			if err != nil {
				return nil, err
			}
			for _, row := range ex.Nodal {
				for _, x := range row.Values() {
					assert.False(t, math.IsNaN(x) || math.IsInf(x, 0))
				}
			}
			return ex.Matrix, nil
		}()
		require.NoError(t, err, s.FileID)
		assert.Equal(t, 8, m.N())
	}
}
