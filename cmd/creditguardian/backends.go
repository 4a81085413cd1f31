package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vanshika/creditguardian/internal/config"
	"github.com/vanshika/creditguardian/internal/graph"
	"github.com/vanshika/creditguardian/internal/repository"
	"github.com/vanshika/creditguardian/internal/server"
	"github.com/vanshika/creditguardian/internal/service"
	"github.com/vanshika/creditguardian/internal/session"
	"github.com/vanshika/creditguardian/internal/store"
)

type accountStore interface {
	service.AccountRepository
	server.Pinger
}

type simulationStore interface {
	service.SimulationRepository
	server.Pinger
}

// backends holds the storage selected by configuration.
type backends struct {
	accounts    accountStore
	simulations simulationStore
	sessions    session.Store
	checks      map[string]server.Pinger
	inMemory    bool
	closers     []func() error
}

func openBackends(ctx context.Context, logger *slog.Logger, cfg config.Config) (_ *backends, err error) {
	b := &backends{checks: map[string]server.Pinger{}}
	defer func() {
		if err != nil {
			_ = b.Close()
		}
	}()

	var memory *repository.Memory
	switch cfg.Storage.Driver {
	case config.StorageGraph:
		client, err := buildGraphClient(ctx, logger, cfg)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() error { return client.Close(context.Background()) })
		b.accounts = repository.New(client)
	default:
		memory = repository.NewMemory()
		b.accounts = memory
		b.inMemory = true
	}
	b.checks["accounts"] = b.accounts

	switch cfg.Storage.Simulations {
	case config.StorageSQLite:
		db, err := store.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open simulation store: %w", err)
		}
		b.closers = append(b.closers, db.Close)
		b.simulations = db
		b.checks["simulations"] = db
		logger.Info("saved simulations in sqlite", "path", cfg.Storage.SQLitePath)
	default:
		if memory == nil {
			memory = repository.NewMemory()
		}
		b.simulations = memory
	}

	switch cfg.Session.Driver {
	case config.SessionRedis:
		rs := session.NewRedisStore(session.RedisOptions{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
		})
		b.closers = append(b.closers, rs.Close)
		if err := rs.Ping(ctx); err != nil {
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Session.RedisAddr, err)
		}
		b.sessions = rs
		b.checks["sessions"] = rs
		logger.Info("sessions in redis", "addr", cfg.Session.RedisAddr)
	default:
		b.sessions = session.NewMemoryStore()
	}

	return b, nil
}

// Close releases backends in reverse order of opening.
func (b *backends) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

func buildGraphClient(ctx context.Context, logger *slog.Logger, cfg config.Config) (graph.Client, error) {
	if cfg.Graph.URI == "" {
		return nil, graph.ErrMissingURI
	}

	opts := graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	}
	client, err := graph.NewNeo4jClient(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.VerifyConnectivity(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, err
	}
	logger.Info("connected to graph", "uri", cfg.Graph.URI, "database", cfg.Graph.Database)
	return client, nil
}
