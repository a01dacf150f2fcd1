package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pnlcorr/internal/config"
	"pnlcorr/internal/pnl"
	"pnlcorr/internal/server"
	"pnlcorr/internal/service"
	"pnlcorr/internal/storage"
	"pnlcorr/internal/storage/postgres"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the resident pool and serve correlation requests",
		RunE:  runServe,
	}

	cmd.Flags().StringSlice("pool", nil, "pnl files or directories for the resident pool")
	cmd.Flags().String("pg-dsn", "", "load the resident pool from Postgres instead of files")
	cmd.Flags().Int("port", 9999, "listen port")
	cmd.Flags().Int("start-date", 0, "first date kept in the resident pool (YYYYMMDD)")
	cmd.Flags().Int("end-date", 0, "last date kept in the resident pool (YYYYMMDD)")
	cmd.Flags().Bool("allow-misaligned", false, "accept files whose dates differ as long as lengths match")
	cmd.Flags().Int("workers", 0, "concurrent file reads, 0 means GOMAXPROCS")
	cmd.Flags().Int64("max-body-bytes", 256<<20, "maximum request body size")
	cmd.Flags().Float64("rate-limit", 0, "requests per second, 0 disables limiting")
	cmd.Flags().Int("rate-burst", 1, "rate limiter burst")
	cmd.Flags().Duration("read-timeout", 5*time.Minute, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", 10*time.Minute, "HTTP write timeout")
	cmd.Flags().Duration("shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
	cmd.Flags().String("audit-log", "", "append request audit records to this JSONL file")
	cmd.Flags().Int("max-retries", 5, "Postgres connection retries")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if len(cfg.Pool) == 0 && cfg.PGDSN == "" {
		return fmt.Errorf("either pool paths or a pg dsn is required")
	}
	if len(cfg.Pool) > 0 && cfg.PGDSN != "" {
		return fmt.Errorf("pool paths and pg dsn are mutually exclusive")
	}

	ctx, stop := signalContext()
	defer stop()

	window := pnl.Window{Start: cfg.StartDate, End: cfg.EndDate}
	start := time.Now()
	var resident *pnl.Pool
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN, postgres.ConnectOptions{MaxRetries: cfg.MaxRetries, RetryBackoff: cfg.RetryBackoff})
		if err != nil {
			return err
		}
		resident, err = store.LoadPool(ctx, window, cfg.AllowMisaligned)
		store.Close()
		if err != nil {
			return fmt.Errorf("load pool from postgres: %w", err)
		}
	} else {
		logger.Info("initializing pnl pool", zap.Strings("paths", cfg.Pool))
		resident, err = pnl.LoadPool(ctx, cfg.Pool, window, pnl.LoadOptions{
			AllowMisaligned: cfg.AllowMisaligned,
			Workers:         cfg.Workers,
			Logger:          logger,
		})
		if err != nil {
			return fmt.Errorf("load pool: %w", err)
		}
	}
	logger.Info("pool initialized",
		zap.Int("series", resident.Len()),
		zap.Int("dates", resident.NumDates()),
		zap.Duration("elapsed", time.Since(start)),
	)

	var audit storage.Storage = storage.Nop{}
	if cfg.AuditLog != "" {
		auditLog, err := storage.OpenAuditLog(cfg.AuditLog)
		if err != nil {
			return err
		}
		defer func() {
			if err := auditLog.Close(); err != nil {
				logger.Warn("close audit log", zap.Error(err))
			}
		}()
		audit = auditLog
	}

	correlator, err := service.NewCorrelator(resident, audit, logger)
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Port:            cfg.Port,
		MaxBodyBytes:    cfg.MaxBodyBytes,
		RateLimit:       cfg.RateLimit,
		RateBurst:       cfg.RateBurst,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, correlator, logger)

	logger.Info("server start", zap.Int("port", cfg.Port), zap.Float64("rate_limit", cfg.RateLimit), zap.String("audit_log", cfg.AuditLog))
	return srv.Run(ctx)
}
