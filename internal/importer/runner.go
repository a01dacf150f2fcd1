// Package importer loads series files into Postgres in resumable batches.
package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pnlcorr/internal/retry"
	"pnlcorr/internal/series"
	"pnlcorr/internal/storage/postgres"
)

// Sink receives imported series.
type Sink interface {
	PutSeries(ctx context.Context, items []postgres.Labeled) error
}

// RunConfig holds runtime settings for the importer.
type RunConfig struct {
	Paths             []string
	BatchSize         int
	CheckpointPath    string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
}

// Runner reads series files and writes them to a Sink.
type Runner struct {
	cfg        RunConfig
	sink       Sink
	logger     *zap.Logger
	seen       map[string]string
	checkpoint *CheckpointStore
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, sink Sink, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		sink:       sink,
		logger:     logger,
		seen:       make(map[string]string),
		checkpoint: NewCheckpointStore(cfg.CheckpointPath, cfg.CheckpointEnabled),
	}
}

// Run imports every discovered file, resuming after the last checkpoint
// when the file list is unchanged.
func (r *Runner) Run(ctx context.Context) error {
	if r.sink == nil {
		return fmt.Errorf("sink is nil")
	}
	if r.cfg.BatchSize <= 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}

	files, err := series.Discover(r.cfg.Paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		r.logger.Info("no series files found")
		return nil
	}

	from, err := r.resumeIndex(files)
	if err != nil {
		return err
	}
	for _, f := range files[:from] {
		r.seen[filepath.Base(f)] = f
	}
	to := len(files) - 1
	if from > to {
		r.logger.Info("nothing to import", zap.Int("files", len(files)))
		return nil
	}

	batches, err := SplitBatches(from, to, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, batch := range batches {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		items, err := r.readBatch(ctx, files[batch.From:batch.To+1])
		if err != nil {
			return err
		}

		err = retry.Do(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
			err := r.sink.PutSeries(ctx, items)
			if err != nil {
				r.logger.Warn("store series failed", zap.Error(err), zap.Int("from", batch.From), zap.Int("to", batch.To))
			}
			return err
		})
		if err != nil {
			return fmt.Errorf("store series: %w", err)
		}

		if err := r.checkpoint.Save(Checkpoint{LastIndex: batch.To, LastPath: files[batch.To], Files: len(files)}); err != nil {
			return err
		}

		r.logger.Info("batch complete", zap.Int("series", len(items)), zap.Int("from", batch.From), zap.Int("to", batch.To))
	}

	return nil
}

func (r *Runner) resumeIndex(files []string) (int, error) {
	cp, ok, err := r.checkpoint.Load()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	if cp.Files != len(files) || cp.LastIndex < 0 || cp.LastIndex >= len(files) || files[cp.LastIndex] != cp.LastPath {
		r.logger.Warn("checkpoint does not match files, starting over",
			zap.Int("checkpoint_files", cp.Files),
			zap.Int("files", len(files)),
			zap.String("last_path", cp.LastPath),
		)
		return 0, nil
	}
	r.logger.Info("resume from checkpoint", zap.Int("last_index", cp.LastIndex), zap.String("last_path", cp.LastPath))
	return cp.LastIndex + 1, nil
}

// readBatch reads files concurrently, keeping file order. A label already
// imported from another path is skipped.
func (r *Runner) readBatch(ctx context.Context, files []string) ([]postgres.Labeled, error) {
	read := make([]series.Series, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := series.Read(path, 0, 0)
			if err != nil {
				return err
			}
			read[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("read series: %w", err)
	}

	items := make([]postgres.Labeled, 0, len(files))
	for i, path := range files {
		label := filepath.Base(path)
		if prev, ok := r.seen[label]; ok {
			r.logger.Warn("duplicate label skipped", zap.String("label", label), zap.String("path", path), zap.String("first", prev))
			continue
		}
		r.seen[label] = path
		items = append(items, postgres.Labeled{Label: label, Series: read[i]})
	}
	return items, nil
}
