package main

import (
	"github.com/spf13/cobra"

	"pnlcorr/internal/config"
	"pnlcorr/internal/generate"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write synthetic pnl files",
		RunE:  runGenerate,
	}

	cmd.Flags().StringP("out", "o", "", "output directory")
	cmd.Flags().IntP("num", "n", 0, "number of files to write")
	cmd.Flags().BoolP("force", "f", false, "clear a non-empty output directory")
	cmd.Flags().Int("days", generate.DefaultDays, "weekdays per file")
	cmd.Flags().Int("instruments", generate.DefaultInstruments, "instruments traded by each alpha")
	cmd.Flags().Int("ideas", generate.DefaultIdeas, "independent return drivers")
	cmd.Flags().Int("start-date", generate.DefaultStartDate, "first date (YYYYMMDD)")
	cmd.Flags().Uint64("seed", 0, "random seed, 0 picks one")
	cmd.Flags().Int("workers", 0, "concurrent writers, 0 means GOMAXPROCS")

	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadGenerate(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signalContext()
	defer stop()

	return generate.Run(ctx, generate.Options{
		Dir:         cfg.Out,
		Num:         cfg.Num,
		Force:       cfg.Force,
		Days:        cfg.Days,
		Instruments: cfg.Instruments,
		Ideas:       cfg.Ideas,
		StartDate:   cfg.StartDate,
		Seed:        cfg.Seed,
		Workers:     cfg.Workers,
		Logger:      logger,
	})
}
