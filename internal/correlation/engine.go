// Package correlation computes Pearson correlation matrices between two PnL
// pools and reduces them to the strongest entries per column.
package correlation

import (
	"fmt"
	"math"

	"pnlcorr/internal/pnl"
)

// Matrix holds correlations between the rows of two pools.
// Values[i][j] correlates row i of the first pool with row j of the second.
type Matrix struct {
	Values    [][]float64
	RowLabels []string
	ColLabels []string
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return len(m.RowLabels) }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return len(m.ColLabels) }

// Correlate computes the Pearson correlation between every row of a and every
// row of b over the dates inside w. Rows with zero variance correlate as NaN.
func Correlate(a, b *pnl.Pool, w pnl.Window) (*Matrix, error) {
	x, err := a.SliceByDate(w)
	if err != nil {
		return nil, err
	}
	y, err := b.SliceByDate(w)
	if err != nil {
		return nil, err
	}
	if x.NumDates() != y.NumDates() {
		return nil, fmt.Errorf("%w: dates mismatch between pnl pools (%d vs %d)", pnl.ErrInvalidInput, x.NumDates(), y.NumDates())
	}
	n := x.NumDates()
	if n < 2 {
		return nil, fmt.Errorf("%w: cannot calculate correlation with only %d day", pnl.ErrInvalidInput, n)
	}

	xs := standardize(x)
	ys := standardize(y)

	values := make([][]float64, len(xs))
	for i, xr := range xs {
		out := make([]float64, len(ys))
		for j, yr := range ys {
			out[j] = pearson(xr, yr, n)
		}
		values[i] = out
	}

	return &Matrix{
		Values:    values,
		RowLabels: x.Labels(),
		ColLabels: y.Labels(),
	}, nil
}

// centered is a row minus its mean, with its population standard deviation.
type centered struct {
	dev []float64
	std float64
}

func standardize(p *pnl.Pool) []centered {
	out := make([]centered, p.Len())
	for i := range out {
		out[i] = center(p.Row(i))
	}
	return out
}

func center(row []float64) centered {
	n := float64(len(row))
	constant := true
	sum := 0.0
	for _, v := range row {
		sum += v
		if v != row[0] {
			constant = false
		}
	}
	mean := sum / n

	dev := make([]float64, len(row))
	ss := 0.0
	for i, v := range row {
		d := v - mean
		dev[i] = d
		ss += d * d
	}
	std := math.Sqrt(ss / n)
	if constant {
		std = 0
	}
	return centered{dev: dev, std: std}
}

func pearson(x, y centered, n int) float64 {
	if x.std == 0 || y.std == 0 || math.IsNaN(x.std) || math.IsNaN(y.std) {
		return math.NaN()
	}
	cov := 0.0
	for k := range x.dev {
		cov += x.dev[k] * y.dev[k]
	}
	cov /= float64(n)
	r := cov / (x.std * y.std)
	if r > 1 {
		return 1
	}
	if r < -1 {
		return -1
	}
	return r
}
