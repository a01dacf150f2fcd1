package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pnlcorr/internal/pnl"
	"pnlcorr/internal/series"
)

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *Store) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewFromDB(mock)
}

func TestEnsureSchema(t *testing.T) {
	mock, store := newMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS pnl_series").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPutSeries(t *testing.T) {
	mock, store := newMock(t)
	dates := []int{20090101, 20090102}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO pnl_series").
		WithArgs("pnl_0", dates, []float64{1, 2}, []float64{0, 0.5}).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectExec("INSERT INTO pnl_series").
		WithArgs("pnl_1", dates, []float64{3, 4}, []float64{0, 0}).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	err := store.PutSeries(context.Background(), []Labeled{
		{Label: "pnl_0", Series: series.Series{Dates: dates, Pnl: []float64{1, 2}, Turnover: []float64{0, 0.5}}},
		{Label: "pnl_1", Series: series.Series{Dates: dates, Pnl: []float64{3, 4}}},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPutSeriesRollsBackOnError(t *testing.T) {
	mock, store := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO pnl_series").
		WithArgs("pnl_0", []int{20090101}, []float64{1}, []float64{0}).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.PutSeries(context.Background(), []Labeled{
		{Label: "pnl_0", Series: series.Series{Dates: []int{20090101}, Pnl: []float64{1}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pnl_0")
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPutSeriesEmpty(t *testing.T) {
	mock, store := newMock(t)
	require.NoError(t, store.PutSeries(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadPool(t *testing.T) {
	mock, store := newMock(t)
	rows := pgxmock.NewRows([]string{"label", "trade_date", "pnl"}).
		AddRow("pnl_0", 20090102, 1.0).
		AddRow("pnl_0", 20090105, 2.0).
		AddRow("pnl_1", 20090102, 3.0).
		AddRow("pnl_1", 20090105, 5.0)
	mock.ExpectQuery("FROM pnl_series").WithArgs(20090102, 20090105).WillReturnRows(rows)

	p, err := store.LoadPool(context.Background(), pnl.Window{Start: 20090102, End: 20090105}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"pnl_0", "pnl_1"}, p.Labels())
	assert.Equal(t, []int{20090102, 20090105}, p.Dates())
	assert.Equal(t, [][]float64{{1, 2}, {3, 5}}, p.Values())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadPoolMisaligned(t *testing.T) {
	rows := func() *pgxmock.Rows {
		return pgxmock.NewRows([]string{"label", "trade_date", "pnl"}).
			AddRow("a", 20090101, 1.0).
			AddRow("a", 20090102, 2.0).
			AddRow("b", 20090101, 3.0).
			AddRow("b", 20090105, 4.0)
	}

	mock, store := newMock(t)
	mock.ExpectQuery("FROM pnl_series").WithArgs(0, 0).WillReturnRows(rows())
	_, err := store.LoadPool(context.Background(), pnl.Window{}, false)
	assert.ErrorIs(t, err, pnl.ErrInvalidInput)

	mock.ExpectQuery("FROM pnl_series").WithArgs(0, 0).WillReturnRows(rows())
	p, err := store.LoadPool(context.Background(), pnl.Window{}, true)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadPoolEmpty(t *testing.T) {
	mock, store := newMock(t)
	mock.ExpectQuery("FROM pnl_series").WithArgs(0, 0).
		WillReturnRows(pgxmock.NewRows([]string{"label", "trade_date", "pnl"}))

	_, err := store.LoadPool(context.Background(), pnl.Window{}, false)
	assert.ErrorIs(t, err, pnl.ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadPoolInvalidWindow(t *testing.T) {
	mock, store := newMock(t)
	_, err := store.LoadPool(context.Background(), pnl.Window{Start: 20100101, End: 20090101}, false)
	assert.ErrorIs(t, err, pnl.ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewStoreRequiresDSN(t *testing.T) {
	_, err := NewStore(context.Background(), "", ConnectOptions{})
	assert.Error(t, err)
}
