package series

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "pnl_0")
	in := Series{
		Dates:    []int{20200101, 20200102, 20200103},
		Pnl:      []float64{0.5, -1.25, 3},
		Turnover: []float64{0, 0.1, 0.2},
	}
	require.NoError(t, Write(path, in))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "Date PNL Tvr\n"))

	got, err := Read(path, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, in, got)

	got, err = Read(path, 20200102, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{20200102, 20200103}, got.Dates)
	assert.Equal(t, []float64{-1.25, 3}, got.Pnl)
}

func TestParseColumnOrder(t *testing.T) {
	s, err := Parse(strings.NewReader("Tvr Date PNL\n0.5 20200101 7\n"), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{20200101}, s.Dates)
	assert.Equal(t, []float64{7}, s.Pnl)
	assert.Equal(t, []float64{0.5}, s.Turnover)
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"empty":        "",
		"no pnl":       "Date Tvr\n20200101 1\n",
		"bad date":     "Date PNL\nx 1\n",
		"bad value":    "Date PNL\n20200101 y\n",
		"not sorted":   "Date PNL\n20200102 1\n20200101 2\n",
		"short record": "Date Tvr PNL\n20200101\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(input), 0, 0)
			assert.Error(t, err)
		})
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b", "a", filepath.Join("sub", "c")} {
		require.NoError(t, Write(filepath.Join(dir, name), Series{Dates: []int{1}, Pnl: []float64{1}}))
	}
	single := filepath.Join(t.TempDir(), "single")
	require.NoError(t, Write(single, Series{Dates: []int{1}, Pnl: []float64{1}}))

	files, err := Discover([]string{single, dir})
	require.NoError(t, err)
	assert.Equal(t, []string{
		single,
		filepath.Join(dir, "a"),
		filepath.Join(dir, "b"),
		filepath.Join(dir, "sub", "c"),
	}, files)

	_, err = Discover([]string{filepath.Join(dir, "missing")})
	assert.ErrorIs(t, err, ErrNotFound)
}
