package connectivity

import (
	"math"
	"strconv"
	"strings"
)

// CoerceCell converts one raw matrix cell to a float. Anything that does not parse
// as a finite number (text headers, blanks, "nan", "inf") becomes 0.
func CoerceCell(raw string) float64 {
	v, ok := tryParseNumeric(raw)
	if !ok {
		return 0
	}
	return v
}

// tryParseNumeric accepts plain decimal and scientific notation only; locale
// separators and currency markers are rejected
func tryParseNumeric(raw string) (float64, bool) {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return 0, false
	}

	val, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	if math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// CoerceCells converts a grid of raw cells. Short rows are padded with zeros up to
// the widest row, so the returned grid is rectangular.
func CoerceCells(cells [][]string) [][]float64 {
	width := 0
	for _, row := range cells {
		if len(row) > width {
			width = len(row)
		}
	}

	out := make([][]float64, len(cells))
	for i, row := range cells {
		out[i] = make([]float64, width)
		for j, cell := range row {
			out[i][j] = CoerceCell(cell)
		}
	}
	return out
}
