package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanshika/creditguardian/internal/config"
	"github.com/vanshika/creditguardian/internal/display"
	"github.com/vanshika/creditguardian/internal/generator"
	"github.com/vanshika/creditguardian/internal/logging"
	"github.com/vanshika/creditguardian/internal/metrics"
	"github.com/vanshika/creditguardian/internal/server"
	"github.com/vanshika/creditguardian/internal/service"
	"github.com/vanshika/creditguardian/internal/session"
)

func newServeCmd() *cobra.Command {
	var seedFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), seedFile)
		},
	}
	cmd.Flags().StringVar(&seedFile, "seed-file", "", "YAML dataset to load before serving")
	return cmd
}

func runServe(ctx context.Context, seedFile string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cfg.Logging)

	b, err := openBackends(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Warn("closing backends failed", "error", err)
		}
	}()

	dashboard := service.NewDashboardService(b.accounts)
	if err := seedAccounts(ctx, dashboard, b, cfg, seedFile); err != nil {
		return err
	}

	simulations := service.NewSimulationService(b.accounts, b.simulations, display.NewJitter(0))
	sessions := session.NewManager(b.sessions, session.Credentials{
		Username: cfg.Session.DemoUsername,
		Password: cfg.Session.DemoPassword,
		UserID:   cfg.Session.DemoUserID,
	}, cfg.Session.TTL)

	deps := server.RouterDependencies{
		Health:   server.StorageHealthService{Checks: b.checks},
		Sessions: sessions,
		RateLimit: server.RateLimitConfig{
			RPS:   cfg.HTTP.RateLimitRPS,
			Burst: cfg.HTTP.RateLimitBurst,
		},
		AllowedOrigins:   cfg.HTTP.AllowedOrigins(),
		AllowCredentials: true,
	}
	if cfg.HTTP.MetricsEnabled {
		registry := metrics.New()
		simulations.WithObserver(registry)
		deps.Metrics = registry
		deps.MetricsHandler = registry.Handler()
	}
	deps.API = server.NewAPIHandlers(
		logger.With("component", "api"),
		dashboard,
		simulations,
		service.NewPayoffService(b.accounts),
		sessions,
	)

	srv := server.New(logger, cfg.HTTP, server.NewRouter(logger, deps))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	return runErr
}

// seedAccounts loads seedFile, or the demo account when an in-memory store starts empty.
func seedAccounts(ctx context.Context, dashboard *service.DashboardService, b *backends, cfg config.Config, seedFile string) error {
	var inputs []service.AccountInput
	switch {
	case seedFile != "":
		dataset, err := generator.ReadDataset(seedFile)
		if err != nil {
			return err
		}
		inputs = dataset.Inputs()
	case b.inMemory:
		inputs = []service.AccountInput{generator.DemoAccount(cfg.Session.DemoUserID, time.Now()).Input()}
	default:
		return nil
	}
	return service.NewBulkIngestor(dashboard, 4).IngestAccounts(ctx, inputs)
}
