package pnl

// Builder assembles a pool row by row. The date axis of the first row
// becomes the axis of the pool.
type Builder struct {
	allowMisaligned bool
	dates           []int
	labels          []string
	values          [][]float64
}

// NewBuilder returns a Builder. With allowMisaligned set, later rows are only
// required to have the same length as the first one, not the same dates.
func NewBuilder(allowMisaligned bool) *Builder {
	return &Builder{allowMisaligned: allowMisaligned}
}

// Add appends one row.
func (b *Builder) Add(label string, dates []int, values []float64) error {
	if len(dates) != len(values) {
		return invalidf("%s has %d dates but %d values", label, len(dates), len(values))
	}
	if len(b.labels) == 0 {
		b.dates = dates
	} else if err := b.checkAligned(label, dates); err != nil {
		return err
	}
	b.labels = append(b.labels, label)
	b.values = append(b.values, values)
	return nil
}

func (b *Builder) checkAligned(label string, dates []int) error {
	if len(dates) != len(b.dates) {
		return invalidf("%s has %d dates, pool has %d", label, len(dates), len(b.dates))
	}
	if b.allowMisaligned {
		return nil
	}
	for i := range dates {
		if dates[i] != b.dates[i] {
			return invalidf("%s date %d does not match pool date %d at position %d", label, dates[i], b.dates[i], i)
		}
	}
	return nil
}

// Pool validates the collected rows and returns the pool.
func (b *Builder) Pool() (*Pool, error) {
	if len(b.labels) == 0 {
		return nil, invalidf("no pnl file found. cannot create empty pnl pool")
	}
	return NewPool(b.values, b.labels, b.dates)
}
