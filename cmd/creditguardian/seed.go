package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanshika/creditguardian/internal/config"
	"github.com/vanshika/creditguardian/internal/generator"
	"github.com/vanshika/creditguardian/internal/logging"
	"github.com/vanshika/creditguardian/internal/service"
)

func newSeedCmd() *cobra.Command {
	var (
		file    string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a YAML dataset into the configured account store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd.Context(), file, workers)
		},
	}
	cmd.Flags().StringVar(&file, "file", "seed-data/dataset.yaml", "YAML dataset written by datagen")
	cmd.Flags().IntVar(&workers, "workers", 4, "number of concurrent ingestion workers")
	return cmd
}

func runSeed(ctx context.Context, file string, workers int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cfg.Logging).With("component", "seed")

	dataset, err := generator.ReadDataset(file)
	if err != nil {
		return err
	}
	if len(dataset.Accounts) == 0 {
		return fmt.Errorf("dataset %s has no accounts", file)
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	b, err := openBackends(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Warn("closing backends failed", "error", err)
		}
	}()
	if b.inMemory {
		logger.Warn("account store is in memory; seeded data is discarded on exit", "driver", cfg.Storage.Driver)
	}

	start := time.Now()
	logger.Info("ingesting accounts", "count", len(dataset.Accounts), "workers", workers, "path", file)
	ingestor := service.NewBulkIngestor(service.NewDashboardService(b.accounts), workers)
	if err := ingestor.IngestAccounts(ctx, dataset.Inputs()); err != nil {
		return fmt.Errorf("ingest accounts: %w", err)
	}

	logger.Info("ingestion complete", "duration", time.Since(start).String(), "accounts", len(dataset.Accounts))
	return nil
}
