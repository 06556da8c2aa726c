package connectivity

import (
	"math"
	"math/rand"
	"testing"

	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomRaw(r *rand.Rand, n int) [][]float64 {
	raw := make([][]float64, n)
	for i := range raw {
		raw[i] = make([]float64, n)
		for j := range raw[i] {
			raw[i][j] = r.NormFloat64() * 3
		}
	}
	return raw
}

func TestNormalize_CanonicalProperties(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for trial := 0; trial < 25; trial++ {
		n := 1 + r.Intn(12)
		raw := randomRaw(r, n)
		raw[0][0] = math.NaN()
		if n > 1 {
			raw[0][1] = math.Inf(1)
			raw[1][0] = math.Inf(-1)
		}

		m, err := Normalize(raw, DefaultNormalizeOptions())
		require.NoError(t, err)
		require.Equal(t, n, m.N())

		for i := 0; i < n; i++ {
			assert.Equal(t, 0.0, m.At(i, i), "diagonal must be zero")
			for j := 0; j < n; j++ {
				assert.Equal(t, m.At(i, j), m.At(j, i), "matrix must be symmetric")
				assert.GreaterOrEqual(t, m.At(i, j), 0.0, "entries must be non-negative")
				assert.False(t, math.IsNaN(m.At(i, j)))
			}
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	raw := randomRaw(r, 9)

	once, err := Normalize(raw, DefaultNormalizeOptions())
	require.NoError(t, err)

	rows := make([][]float64, once.N())
	for i := range rows {
		rows[i] = once.Row(i)
	}
	twice, err := Normalize(rows, DefaultNormalizeOptions())
	require.NoError(t, err)

	assert.True(t, once.Equal(twice))
}

func TestNormalize_Symmetrizes(t *testing.T) {
	raw := [][]float64{
		{0, 4, 0},
		{2, 0, -6},
		{0, 2, 0},
	}
	m, err := Normalize(raw, DefaultNormalizeOptions())
	require.NoError(t, err)

	assert.Equal(t, 3.0, m.At(0, 1))
	assert.Equal(t, 3.0, m.At(1, 0))
	// (−6 + 2)/2 = −2, clipped
	assert.Equal(t, 0.0, m.At(1, 2))
}

func TestNormalize_OptionsDisabled(t *testing.T) {
	raw := [][]float64{
		{5, -2},
		{-2, 1},
	}
	m, err := Normalize(raw, NormalizeOptions{})
	require.NoError(t, err)

	assert.Equal(t, 5.0, m.At(0, 0))
	assert.Equal(t, -2.0, m.At(0, 1))
	assert.Equal(t, 1.0, m.At(1, 1))
}

func TestNormalize_ShapeError(t *testing.T) {
	raw := [][]float64{
		{0, 1, 2},
		{1, 0, 3},
	}
	_, err := Normalize(raw, DefaultNormalizeOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrShape)
	assert.True(t, core.IsSubjectError(err))
}

func TestNormalize_Empty(t *testing.T) {
	for name, raw := range map[string][][]float64{
		"nil":        nil,
		"no rows":    {},
		"empty rows": {{}, {}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Normalize(raw, DefaultNormalizeOptions())
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrShape)
			assert.True(t, core.IsSubjectError(err))
		})
	}
}

func TestNormalizeCells_Coercion(t *testing.T) {
	cells := [][]string{
		{"0", " 1.5 ", "abc"},
		{"1.5", "0", "2e-1"},
		{"", "0.2", "nan"},
	}
	m, err := NormalizeCells(cells, DefaultNormalizeOptions())
	require.NoError(t, err)

	assert.Equal(t, 1.5, m.At(0, 1))
	assert.Equal(t, 0.0, m.At(0, 2))
	assert.InDelta(t, 0.2, m.At(1, 2), 1e-12)
}

func TestNormalizeCells_HeaderRowMakesNonSquare(t *testing.T) {
	cells := [][]string{
		{"r1", "r2"},
		{"0", "1"},
		{"1", "0"},
	}
	_, err := NormalizeCells(cells, DefaultNormalizeOptions())
	assert.ErrorIs(t, err, core.ErrShape)
}

func TestCoerceCell(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"3", 3},
		{"-0.25", -0.25},
		{"1e3", 1000},
		{"inf", 0},
		{"-Inf", 0},
		{"NaN", 0},
		{"1,5", 0},
		{"region_A", 0},
		{"", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CoerceCell(tt.in), "CoerceCell(%q)", tt.in)
	}
}

func TestCoerceCells_PadsShortRows(t *testing.T) {
	grid := CoerceCells([][]string{{"1", "2", "3"}, {"4"}})
	require.Len(t, grid, 2)
	assert.Equal(t, []float64{4, 0, 0}, grid[1])
}
