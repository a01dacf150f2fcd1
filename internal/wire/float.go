package wire

import (
	"fmt"
	"math"
	"strconv"
)

// Float is a float64 that encodes NaN as JSON null.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) {
		return []byte("null"), nil
	}
	if math.IsInf(v, 0) {
		return nil, fmt.Errorf("cannot encode infinite value %v", v)
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", data, err)
	}
	*f = Float(v)
	return nil
}

func toFloats(rows [][]float64) [][]Float {
	out := make([][]Float, len(rows))
	for i, row := range rows {
		r := make([]Float, len(row))
		for j, v := range row {
			r[j] = Float(v)
		}
		out[i] = r
	}
	return out
}

func fromFloats(rows [][]Float) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		r := make([]float64, len(row))
		for j, v := range row {
			r[j] = float64(v)
		}
		out[i] = r
	}
	return out
}
