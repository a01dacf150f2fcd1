package pnl

import "sort"

// Window is an inclusive YYYYMMDD date range. A zero bound is unbounded.
type Window struct {
	Start int
	End   int
}

// Unbounded reports whether neither side of the window is set.
func (w Window) Unbounded() bool { return w.Start == 0 && w.End == 0 }

// Contains reports whether date falls inside the window.
func (w Window) Contains(date int) bool {
	if w.Start != 0 && date < w.Start {
		return false
	}
	if w.End != 0 && date > w.End {
		return false
	}
	return true
}

// Validate checks the bounds against each other only.
func (w Window) Validate() error {
	if w.Start != 0 && w.End != 0 && w.Start > w.End {
		return invalidf("start date cannot be after end date")
	}
	return nil
}

// SliceByDate returns a view of the pool restricted to dates inside w.
// The view shares row storage with p.
func (p *Pool) SliceByDate(w Window) (*Pool, error) {
	if w.Unbounded() {
		return p, nil
	}
	first, last := p.dates[0], p.dates[len(p.dates)-1]
	if w.Start != 0 && w.Start > last {
		return nil, invalidf("start is greater than all dates in pnl pool")
	}
	if w.End != 0 && w.End < first {
		return nil, invalidf("end is smaller than all dates in pnl pool")
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}

	lo := 0
	if w.Start != 0 {
		lo = sort.SearchInts(p.dates, w.Start)
	}
	hi := len(p.dates)
	if w.End != 0 {
		// first index strictly after End
		hi = sort.Search(len(p.dates), func(i int) bool { return p.dates[i] > w.End })
	}
	if lo >= hi {
		return nil, invalidf("no dates in pnl pool between %d and %d", w.Start, w.End)
	}

	rows := make([][]float64, len(p.values))
	for i, row := range p.values {
		rows[i] = row[lo:hi:hi]
	}
	return &Pool{
		dates:  p.dates[lo:hi:hi],
		labels: p.labels,
		values: rows,
	}, nil
}
