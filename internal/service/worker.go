package service

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// BulkIngestor loads large account datasets with a bounded number of workers.
type BulkIngestor struct {
	service *DashboardService
	workers int
}

// NewBulkIngestor creates a new BulkIngestor instance with the provided concurrency.
func NewBulkIngestor(service *DashboardService, workers int) *BulkIngestor {
	if workers <= 0 {
		workers = 4
	}
	return &BulkIngestor{
		service: service,
		workers: workers,
	}
}

// IngestAccounts upserts every account. Failures do not stop the remaining
// accounts; they are joined into the returned error.
func (bi *BulkIngestor) IngestAccounts(ctx context.Context, accounts []AccountInput) error {
	return bi.run(ctx, len(accounts), func(idx int) error {
		return bi.service.UpsertAccount(ctx, accounts[idx])
	})
}

func (bi *BulkIngestor) run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(bi.workers)

	for i := 0; i < total; i++ {
		if ctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := workerFn(i); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.Join(errs...)
}
