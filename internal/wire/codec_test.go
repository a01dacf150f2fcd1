package wire

import (
	"encoding/json"
	"math"
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pnlcorr/internal/correlation"
	"pnlcorr/internal/pnl"
)

func mustPool(t *testing.T, values [][]float64, labels []string, dates []int) *pnl.Pool {
	t.Helper()
	p, err := pnl.NewPool(values, labels, dates)
	require.NoError(t, err)
	return p
}

func randomPool(t *testing.T, r *rand.Rand, rows, days int) *pnl.Pool {
	t.Helper()
	values := make([][]float64, rows)
	labels := make([]string, rows)
	for i := range values {
		labels[i] = "pnl_" + strconv.Itoa(i)
		values[i] = make([]float64, days)
		for j := range values[i] {
			values[i][j] = r.NormFloat64() * math.Pow(10, float64(r.IntN(12)-6))
		}
	}
	dates := make([]int, days)
	for j := range dates {
		dates[j] = 20090101 + j
	}
	return mustPool(t, values, labels, dates)
}

func TestPoolRoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	pools := []*pnl.Pool{
		mustPool(t, [][]float64{{1}}, []string{"only"}, []int{20090101}),
		mustPool(t, [][]float64{{math.NaN(), -0.5}, {0, 1e-300}}, []string{"a", "b"}, []int{20090101, 20090102}),
		randomPool(t, r, 7, 31),
		randomPool(t, r, 1, 250),
	}
	for i, p := range pools {
		b, err := EncodePool(p)
		require.NoError(t, err)
		got, err := DecodePool(b)
		require.NoError(t, err)
		assert.True(t, p.Equal(got), "pool %d did not survive round trip", i)
	}
}

func TestPoolEncodingFields(t *testing.T) {
	p := mustPool(t, [][]float64{{1.5, math.NaN()}}, []string{"file1"}, []int{20090101, 20090102})
	b, err := EncodePool(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[[1.5,null]],"header":["file1"],"dates":[20090101,20090102]}`, string(b))
}

func TestEncodePoolRejectsInf(t *testing.T) {
	p := mustPool(t, [][]float64{{math.Inf(1)}}, []string{"a"}, []int{1})
	_, err := EncodePool(p)
	assert.Error(t, err)
}

func TestDecodePoolErrors(t *testing.T) {
	tests := map[string]string{
		"malformed":      `{"data": [[1]`,
		"missing data":   `{"header":["a"],"dates":[1]}`,
		"missing header": `{"data":[[1]],"dates":[1]}`,
		"missing dates":  `{"data":[[1]],"header":["a"]}`,
		"wrong type":     `{"data":[["x"]],"header":["a"],"dates":[1]}`,
		"shape":          `{"data":[[1,2]],"header":["a"],"dates":[1]}`,
		"null":           `null`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodePool([]byte(input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDecode)
		})
	}

	_, err := DecodePool([]byte(`{"data":[[1,2]],"header":["a"],"dates":[1]}`))
	assert.ErrorIs(t, err, pnl.ErrInvalidInput)
}

func TestResultRoundTrip(t *testing.T) {
	results := []*correlation.TopK{
		{Correlations: [][]float64{{1}}, RowLabels: [][]string{{"row1"}}, ColLabels: []string{"col1"}},
		{
			Correlations: [][]float64{{-0.9, 0.4}, {0.2, math.NaN()}},
			RowLabels:    [][]string{{"a", "b"}, {"b", "a"}},
			ColLabels:    []string{"x", "y"},
		},
	}
	for _, in := range results {
		b, err := EncodeResult(in)
		require.NoError(t, err)
		got, err := DecodeResult(b)
		require.NoError(t, err)

		assert.Equal(t, in.RowLabels, got.RowLabels)
		assert.Equal(t, in.ColLabels, got.ColLabels)
		require.Len(t, got.Correlations, len(in.Correlations))
		for r := range in.Correlations {
			for c := range in.Correlations[r] {
				want, have := in.Correlations[r][c], got.Correlations[r][c]
				if math.IsNaN(want) {
					assert.True(t, math.IsNaN(have))
					continue
				}
				assert.Equal(t, want, have)
			}
		}
	}
}

func TestResultEncodingFields(t *testing.T) {
	b, err := EncodeResult(&correlation.TopK{
		Correlations: [][]float64{{0.25}},
		RowLabels:    [][]string{{"pnl_3"}},
		ColLabels:    []string{"mine"},
	})
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Contains(t, raw, "correlations")
	assert.Contains(t, raw, "file_names")
	assert.Contains(t, raw, "col_names")
}

func TestDecodeResultErrors(t *testing.T) {
	tests := map[string]string{
		"malformed":    `[`,
		"missing corr": `{"file_names":[["a"]],"col_names":["x"]}`,
		"missing cols": `{"correlations":[[1]],"file_names":[["a"]]}`,
		"row mismatch": `{"correlations":[[1],[2]],"file_names":[["a"]],"col_names":["x"]}`,
		"col mismatch": `{"correlations":[[1,2]],"file_names":[["a","b"]],"col_names":["x"]}`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeResult([]byte(input))
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}
