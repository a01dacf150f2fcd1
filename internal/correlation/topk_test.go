package correlation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pnlcorr/internal/pnl"
)

func TestTopKSingleCell(t *testing.T) {
	m := &Matrix{Values: [][]float64{{1}}, RowLabels: []string{"row1"}, ColLabels: []string{"col1"}}
	top, err := TopKPerColumn(m, 1)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1}}, top.Correlations)
	assert.Equal(t, [][]string{{"row1"}}, top.RowLabels)
	assert.Equal(t, []string{"col1"}, top.ColLabels)
}

func TestTopKKeepsSign(t *testing.T) {
	m := &Matrix{Values: [][]float64{{0.8}, {-1}}, RowLabels: []string{"row1", "row2"}, ColLabels: []string{"col1"}}
	top, err := TopKPerColumn(m, 1)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{-1}}, top.Correlations)
	assert.Equal(t, [][]string{{"row2"}}, top.RowLabels)
}

func TestTopKPerColumn(t *testing.T) {
	m := &Matrix{
		Values: [][]float64{
			{3, 0, 9},
			{2, 1, 7},
			{1, 2, 8},
		},
		RowLabels: []string{"row1", "row2", "row3"},
		ColLabels: []string{"col1", "col2", "col3"},
	}
	top, err := TopKPerColumn(m, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{3, 2, 9}, {2, 1, 8}}, top.Correlations)
	assert.Equal(t, [][]string{{"row1", "row3", "row1"}, {"row2", "row2", "row3"}}, top.RowLabels)
}

func TestTopKClampsToRows(t *testing.T) {
	m := &Matrix{
		Values:    [][]float64{{0.1}, {-0.7}, {0.3}},
		RowLabels: []string{"a", "b", "c"},
		ColLabels: []string{"x"},
	}
	top, err := TopKPerColumn(m, 10)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{-0.7}, {0.3}, {0.1}}, top.Correlations)
	assert.Equal(t, [][]string{{"b"}, {"c"}, {"a"}}, top.RowLabels)
}

func TestTopKTiesKeepRowOrder(t *testing.T) {
	m := &Matrix{
		Values:    [][]float64{{0.5}, {-0.5}, {0.9}, {0.5}},
		RowLabels: []string{"a", "b", "c", "d"},
		ColLabels: []string{"x"},
	}
	top, err := TopKPerColumn(m, 4)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"c"}, {"a"}, {"b"}, {"d"}}, top.RowLabels)
	assert.Equal(t, [][]float64{{0.9}, {0.5}, {-0.5}, {0.5}}, top.Correlations)
}

func TestTopKNaNRanksLast(t *testing.T) {
	nan := math.NaN()
	m := &Matrix{
		Values:    [][]float64{{nan}, {0.01}, {nan}, {-0.2}},
		RowLabels: []string{"n1", "small", "n2", "neg"},
		ColLabels: []string{"x"},
	}
	top, err := TopKPerColumn(m, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"neg"}, {"small"}}, top.RowLabels)

	top, err = TopKPerColumn(m, 4)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"neg"}, {"small"}, {"n1"}, {"n2"}}, top.RowLabels)
	assert.True(t, math.IsNaN(top.Correlations[2][0]))
	assert.True(t, math.IsNaN(top.Correlations[3][0]))
}

func TestTopKInvalid(t *testing.T) {
	m := &Matrix{Values: [][]float64{{1}}, RowLabels: []string{"a"}, ColLabels: []string{"x"}}
	_, err := TopKPerColumn(m, 0)
	assert.ErrorIs(t, err, pnl.ErrInvalidInput)
}
