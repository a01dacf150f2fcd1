package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pnlcorr/internal/client"
	"pnlcorr/internal/config"
	"pnlcorr/internal/pnl"
	"pnlcorr/internal/report"
)

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Submit pnl files to a server and print the top correlations",
		RunE:  runQuery,
	}

	cmd.Flags().StringSlice("pnl", nil, "pnl files or directories to correlate")
	cmd.Flags().String("server", "", "server address (host:port)")
	cmd.Flags().Int("top", 10, "correlations to keep per series")
	cmd.Flags().Int("start-date", 0, "first date of the window (YYYYMMDD)")
	cmd.Flags().Int("end-date", 0, "last date of the window (YYYYMMDD)")
	cmd.Flags().Bool("allow-misaligned", false, "accept files whose dates differ as long as lengths match")
	cmd.Flags().String("xlsx", "", "also write the result to this xlsx file")
	cmd.Flags().Int("width", 100, "terminal width for the table")

	return cmd
}

func runQuery(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuery(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if len(cfg.Pnl) == 0 {
		return fmt.Errorf("at least one pnl path is required")
	}
	c, err := client.New(cfg.Server, nil)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	window := pnl.Window{Start: cfg.StartDate, End: cfg.EndDate}
	pool, err := pnl.LoadPool(ctx, cfg.Pnl, window, pnl.LoadOptions{AllowMisaligned: cfg.AllowMisaligned, Logger: logger})
	if err != nil {
		return err
	}
	logger.Info("sending request", zap.String("server", cfg.Server), zap.Int("series", pool.Len()), zap.Int("top", cfg.Top))

	top, err := c.Query(ctx, pool, cfg.Top, window)
	if err != nil {
		var se *client.ServerError
		if errors.As(err, &se) {
			return fmt.Errorf("received the following error from server: %w", err)
		}
		return err
	}

	out, err := report.Render(top, cfg.Width)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)

	if cfg.XLSX != "" {
		if err := report.WriteXLSX(cfg.XLSX, top); err != nil {
			return err
		}
		logger.Info("wrote workbook", zap.String("path", cfg.XLSX))
	}
	return nil
}
