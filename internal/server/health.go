package server

import (
	"context"
	"errors"
	"fmt"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// Pinger is any backend that can confirm it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StorageHealthService pings every configured backend and reports all failures.
type StorageHealthService struct {
	Checks map[string]Pinger
}

// Probe implements the HealthService interface.
func (s StorageHealthService) Probe(ctx context.Context) error {
	var errs []error
	for name, p := range s.Checks {
		if p == nil {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
