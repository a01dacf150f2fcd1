// Package series reads and writes single PnL series files.
//
// A file is space separated with a header line and one row per date:
//
//	Date PNL Tvr
//	20090101 0.0132 0.0
//	20090102 -0.0041 0.8712
//
// Rows are sorted ascending by date.
package series

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	HeaderDate     = "Date"
	HeaderPnl      = "PNL"
	HeaderTurnover = "Tvr"
)

// Series is the content of one file.
type Series struct {
	Dates    []int
	Pnl      []float64
	Turnover []float64
}

// Len returns the number of dates.
func (s Series) Len() int { return len(s.Dates) }

// Read parses the file at path, keeping rows whose date lies in [start, end].
// A zero bound is unbounded.
func Read(path string, start, end int) (Series, error) {
	file, err := os.Open(path)
	if err != nil {
		return Series{}, fmt.Errorf("open series: %w", err)
	}
	defer file.Close()

	s, err := Parse(file, start, end)
	if err != nil {
		return Series{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse reads a series from r. See Read.
func Parse(r io.Reader, start, end int) (Series, error) {
	reader := csv.NewReader(r)
	reader.Comma = ' '
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Series{}, fmt.Errorf("empty series file")
		}
		return Series{}, fmt.Errorf("read header: %w", err)
	}
	dateCol, pnlCol, tvrCol := -1, -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case HeaderDate:
			dateCol = i
		case HeaderPnl:
			pnlCol = i
		case HeaderTurnover:
			tvrCol = i
		}
	}
	if dateCol < 0 || pnlCol < 0 {
		return Series{}, fmt.Errorf("header must contain %s and %s columns", HeaderDate, HeaderPnl)
	}

	var s Series
	prev := 0
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Series{}, fmt.Errorf("read line %d: %w", line, err)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) <= dateCol || len(record) <= pnlCol {
			return Series{}, fmt.Errorf("line %d: expected at least %d fields", line, max(dateCol, pnlCol)+1)
		}

		date, err := strconv.Atoi(record[dateCol])
		if err != nil {
			return Series{}, fmt.Errorf("line %d: parse date: %w", line, err)
		}
		if line > 2 && date <= prev {
			return Series{}, fmt.Errorf("line %d: date %d is not after %d", line, date, prev)
		}
		prev = date

		if (start != 0 && date < start) || (end != 0 && date > end) {
			continue
		}

		pnl, err := strconv.ParseFloat(record[pnlCol], 64)
		if err != nil {
			return Series{}, fmt.Errorf("line %d: parse pnl: %w", line, err)
		}
		tvr := 0.0
		if tvrCol >= 0 && len(record) > tvrCol {
			tvr, err = strconv.ParseFloat(record[tvrCol], 64)
			if err != nil {
				return Series{}, fmt.Errorf("line %d: parse turnover: %w", line, err)
			}
		}

		s.Dates = append(s.Dates, date)
		s.Pnl = append(s.Pnl, pnl)
		s.Turnover = append(s.Turnover, tvr)
	}
	return s, nil
}

// Write stores s at path, creating parent directories as needed.
func Write(path string, s Series) error {
	if len(s.Pnl) != len(s.Dates) {
		return fmt.Errorf("series has %d dates but %d pnl values", len(s.Dates), len(s.Pnl))
	}
	if s.Turnover != nil && len(s.Turnover) != len(s.Dates) {
		return fmt.Errorf("series has %d dates but %d turnover values", len(s.Dates), len(s.Turnover))
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create series dir: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open series file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	writer.Comma = ' '
	if err := writer.Write([]string{HeaderDate, HeaderPnl, HeaderTurnover}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, date := range s.Dates {
		tvr := 0.0
		if s.Turnover != nil {
			tvr = s.Turnover[i]
		}
		record := []string{
			strconv.Itoa(date),
			strconv.FormatFloat(s.Pnl[i], 'g', -1, 64),
			strconv.FormatFloat(tvr, 'g', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush series: %w", err)
	}
	return nil
}
