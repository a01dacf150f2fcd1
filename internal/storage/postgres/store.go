// Package postgres keeps PnL series in a Postgres table and loads them back
// as a pool.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"pnlcorr/internal/pnl"
	"pnlcorr/internal/retry"
	"pnlcorr/internal/series"
)

// DB is the part of pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// Store provides Postgres persistence for PnL series.
type Store struct {
	db DB
}

// Labeled is a series together with its pool label.
type Labeled struct {
	Label  string
	Series series.Series
}

// ConnectOptions bounds the connection attempts made by NewStore.
type ConnectOptions struct {
	MaxRetries   int
	RetryBackoff time.Duration
}

func NewStore(ctx context.Context, dsn string, opts ConnectOptions) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pg dsn: %w", err)
	}
	if err := retry.Do(ctx, opts.MaxRetries, opts.RetryBackoff, pool.Ping); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{db: pool}, nil
}

// NewFromDB wraps an existing connection pool.
func NewFromDB(db DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS pnl_series (
		label TEXT NOT NULL,
		trade_date INTEGER NOT NULL,
		pnl DOUBLE PRECISION NOT NULL,
		turnover DOUBLE PRECISION NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (label, trade_date)
	)
`

// EnsureSchema creates the series table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

const upsertSQL = `
	INSERT INTO pnl_series (label, trade_date, pnl, turnover, updated_at)
	SELECT $1, u.trade_date, u.pnl, u.turnover, now()
	FROM unnest($2::integer[], $3::double precision[], $4::double precision[]) AS u(trade_date, pnl, turnover)
	ON CONFLICT (label, trade_date)
	DO UPDATE SET
		pnl = EXCLUDED.pnl,
		turnover = EXCLUDED.turnover,
		updated_at = now()
`

// PutSeries inserts or updates every row of items in one transaction.
func (s *Store) PutSeries(ctx context.Context, items []Labeled) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, item := range items {
		sr := item.Series
		if len(sr.Pnl) != len(sr.Dates) {
			return fmt.Errorf("series %s has %d dates but %d pnl values", item.Label, len(sr.Dates), len(sr.Pnl))
		}
		tvr := sr.Turnover
		if tvr == nil {
			tvr = make([]float64, len(sr.Dates))
		}
		if _, err := tx.Exec(ctx, upsertSQL, item.Label, sr.Dates, sr.Pnl, tvr); err != nil {
			return fmt.Errorf("upsert series %s: %w", item.Label, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const loadSQL = `
	SELECT label, trade_date, pnl
	FROM pnl_series
	WHERE ($1 = 0 OR trade_date >= $1) AND ($2 = 0 OR trade_date <= $2)
	ORDER BY label, trade_date
`

// LoadPool reads every stored series inside w into a pool, one row per
// label in label order. Rows must share dates unless allowMisaligned is set.
func (s *Store) LoadPool(ctx context.Context, w pnl.Window, allowMisaligned bool) (*pnl.Pool, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, loadSQL, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("query series: %w", err)
	}
	defer rows.Close()

	b := pnl.NewBuilder(allowMisaligned)
	var (
		label  string
		dates  []int
		values []float64
	)
	flush := func() error {
		if label == "" {
			return nil
		}
		return b.Add(label, dates, values)
	}

	for rows.Next() {
		var (
			rowLabel string
			date     int
			value    float64
		)
		if err := rows.Scan(&rowLabel, &date, &value); err != nil {
			return nil, fmt.Errorf("scan series row: %w", err)
		}
		if rowLabel != label {
			if err := flush(); err != nil {
				return nil, err
			}
			label, dates, values = rowLabel, nil, nil
		}
		dates = append(dates, date)
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read series rows: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return b.Pool()
}
