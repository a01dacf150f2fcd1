package pnl

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pnlcorr/internal/series"
)

// LoadOptions controls LoadPool.
type LoadOptions struct {
	// AllowMisaligned skips the per-date comparison against the first file.
	AllowMisaligned bool
	// Workers bounds concurrent file reads. Zero means GOMAXPROCS.
	Workers int
	Logger  *zap.Logger
}

// LoadPool reads every file under paths into a pool, one row per file,
// keeping only dates inside w. Rows are labeled with the file base name.
func LoadPool(ctx context.Context, paths []string, w Window, opts LoadOptions) (*Pool, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(paths) == 0 {
		return nil, invalidf("cannot initialize pnl pool with no directories or files specified")
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}

	files, err := series.Discover(paths)
	if err != nil {
		if errors.Is(err, series.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return nil, err
	}
	if len(files) == 0 {
		return nil, invalidf("no pnl file found. cannot create empty pnl pool")
	}
	logger.Info("pnl files found", zap.Int("files", len(files)))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	start := time.Now()
	rows := make([]series.Series, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := series.Read(file, w.Start, w.End)
			if err != nil {
				return err
			}
			rows[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("read pnl files: %w", err)
	}

	b := NewBuilder(opts.AllowMisaligned)
	for i, file := range files {
		if err := b.Add(filepath.Base(file), rows[i].Dates, rows[i].Pnl); err != nil {
			return nil, err
		}
	}
	pool, err := b.Pool()
	if err != nil {
		return nil, err
	}

	logger.Info("pnl pool loaded",
		zap.Int("rows", pool.Len()),
		zap.Int("dates", pool.NumDates()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return pool, nil
}
