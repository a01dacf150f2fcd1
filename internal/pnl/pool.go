package pnl

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput marks errors caused by bad pools, windows or parameters.
var ErrInvalidInput = errors.New("invalid input")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Pool is an immutable set of labeled PnL series aligned on one date axis.
type Pool struct {
	dates  []int
	labels []string
	values [][]float64
}

// NewPool builds a pool from raw arrays, typically ones received over the wire.
// The inputs are copied.
func NewPool(values [][]float64, labels []string, dates []int) (*Pool, error) {
	if len(labels) == 0 {
		return nil, invalidf("cannot create empty pnl pool")
	}
	if len(dates) == 0 {
		return nil, invalidf("pnl pool has no dates")
	}
	if len(values) != len(labels) {
		return nil, invalidf("pnl pool has %d rows but %d labels", len(values), len(labels))
	}
	for i := 1; i < len(dates); i++ {
		if dates[i] <= dates[i-1] {
			return nil, invalidf("dates must be strictly increasing: %d follows %d", dates[i], dates[i-1])
		}
	}

	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		if _, ok := seen[label]; ok {
			return nil, invalidf("duplicate label %q", label)
		}
		seen[label] = struct{}{}
	}

	rows := make([][]float64, len(values))
	for i, row := range values {
		if len(row) != len(dates) {
			return nil, invalidf("row %q has %d values, want %d", labels[i], len(row), len(dates))
		}
		rows[i] = append([]float64(nil), row...)
	}

	return &Pool{
		dates:  append([]int(nil), dates...),
		labels: append([]string(nil), labels...),
		values: rows,
	}, nil
}

// Len returns the number of series in the pool.
func (p *Pool) Len() int { return len(p.labels) }

// NumDates returns the length of the shared date axis.
func (p *Pool) NumDates() int { return len(p.dates) }

// Dates returns a copy of the date axis.
func (p *Pool) Dates() []int { return append([]int(nil), p.dates...) }

// Labels returns a copy of the row labels.
func (p *Pool) Labels() []string { return append([]string(nil), p.labels...) }

// Label returns the label of row i.
func (p *Pool) Label(i int) string { return p.labels[i] }

// Row returns the values of row i. The slice aliases pool storage and must
// not be modified.
func (p *Pool) Row(i int) []float64 { return p.values[i] }

// Values returns a deep copy of the value grid.
func (p *Pool) Values() [][]float64 {
	out := make([][]float64, len(p.values))
	for i, row := range p.values {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// Equal reports whether two pools hold the same dates, labels and values.
// NaN compares equal to NaN.
func (p *Pool) Equal(o *Pool) bool {
	if p == nil || o == nil {
		return p == o
	}
	if len(p.dates) != len(o.dates) || len(p.labels) != len(o.labels) {
		return false
	}
	for i := range p.dates {
		if p.dates[i] != o.dates[i] {
			return false
		}
	}
	for i := range p.labels {
		if p.labels[i] != o.labels[i] {
			return false
		}
		for j := range p.values[i] {
			a, b := p.values[i][j], o.values[i][j]
			if a != b && !(math.IsNaN(a) && math.IsNaN(b)) {
				return false
			}
		}
	}
	return true
}
