package report

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pnlcorr/internal/correlation"
)

func sample() *correlation.TopK {
	return &correlation.TopK{
		Correlations: [][]float64{{-0.91234, 0.5}, {0.25, math.NaN()}},
		RowLabels:    [][]string{{"pnl_1", "pnl_2"}, {"pnl_2", "pnl_1"}},
		ColLabels:    []string{"mine", "a|b"},
	}
}

func TestMarkdown(t *testing.T) {
	want := "| rank | mine | corr | a\\|b | corr |\n" +
		"|---:|---|---:|---|---:|\n" +
		"| 1 | pnl_1 | -0.9123 | pnl_2 | 0.5000 |\n" +
		"| 2 | pnl_2 | 0.2500 | pnl_1 | NaN |\n"
	assert.Equal(t, want, Markdown(sample()))
}

func TestRender(t *testing.T) {
	out, err := Render(sample(), 120)
	require.NoError(t, err)
	assert.Contains(t, out, "pnl_1")
	assert.Contains(t, out, "-0.9123")
	assert.Contains(t, out, "NaN")
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "top.xlsx")
	require.NoError(t, WriteXLSX(path, sample()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"rank", "mine", "corr", "a|b", "corr"}, rows[0])
	assert.Equal(t, []string{"1", "pnl_1", "-0.91234", "pnl_2", "0.5"}, rows[1])
	assert.Equal(t, []string{"2", "pnl_2", "0.25", "pnl_1", "NaN"}, rows[2])
}
