package correlation

import (
	"fmt"
	"math"
	"slices"

	"pnlcorr/internal/pnl"
)

// TopK is the k strongest correlations of every column of a Matrix.
// Correlations[r][c] is the r-th strongest value of column c and
// RowLabels[r][c] the row that produced it.
type TopK struct {
	Correlations [][]float64
	RowLabels    [][]string
	ColLabels    []string
}

// Rows returns the number of ranks kept per column.
func (t *TopK) Rows() int { return len(t.Correlations) }

// TopKPerColumn keeps, for each column, the k rows with the largest absolute
// correlation, strongest first. k is clamped to the number of rows.
//
// Ordering is stable: rows with equal magnitude keep their row order, and NaN
// ranks after every finite value.
func TopKPerColumn(m *Matrix, k int) (*TopK, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: top must be positive, got %d", pnl.ErrInvalidInput, k)
	}
	rows, cols := m.Rows(), m.Cols()
	if k > rows {
		k = rows
	}

	out := &TopK{
		Correlations: make([][]float64, k),
		RowLabels:    make([][]string, k),
		ColLabels:    append([]string(nil), m.ColLabels...),
	}
	for r := range k {
		out.Correlations[r] = make([]float64, cols)
		out.RowLabels[r] = make([]string, cols)
	}

	order := make([]int, rows)
	for c := range cols {
		for i := range order {
			order[i] = i
		}
		slices.SortStableFunc(order, func(a, b int) int {
			return compareStrength(m.Values[a][c], m.Values[b][c])
		})
		for r := range k {
			row := order[r]
			out.Correlations[r][c] = m.Values[row][c]
			out.RowLabels[r][c] = m.RowLabels[row]
		}
	}
	return out, nil
}

// compareStrength orders stronger correlations first and NaN last.
func compareStrength(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	}
	aa, bb := math.Abs(a), math.Abs(b)
	switch {
	case aa > bb:
		return -1
	case aa < bb:
		return 1
	}
	return 0
}
