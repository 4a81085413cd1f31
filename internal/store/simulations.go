// Package store keeps saved simulation history in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vanshika/creditguardian/internal/domain"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Simulations is a SQLite-backed simulation history.
type Simulations struct {
	db *sql.DB
}

// Open opens or creates the database at dbPath.
func Open(dbPath string) (*Simulations, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening store db: %w", err)
	}
	// single connection: writes are serialized
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Simulations{db: db}, nil
}

// Close closes the database.
func (s *Simulations) Close() error {
	return s.db.Close()
}

// Ping checks the database is usable.
func (s *Simulations) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveSimulation inserts or replaces a snapshot.
func (s *Simulations) SaveSimulation(ctx context.Context, sim domain.SavedSimulation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO simulations
		(simulation_id, user_id, base_score, projected_score, pay_down_debt,
		 opens_new_card, on_time_payment_months, missed_payments, closes_oldest_account, created_at_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sim.ID, sim.UserID, sim.BaseScore, sim.ProjectedScore, sim.PayDownDebt,
		boolToInt(sim.OpensNewCard), sim.OnTimePaymentMonths, sim.MissedPayments,
		boolToInt(sim.ClosesOldestAccount), sim.CreatedAt.UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert simulation %s: %w", sim.ID, err)
	}
	return tx.Commit()
}

// ListSimulations returns at most limit snapshots for userID, newest first.
// A non-positive limit returns all of them.
func (s *Simulations) ListSimulations(ctx context.Context, userID string, limit int) ([]domain.SavedSimulation, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT simulation_id, user_id, base_score, projected_score, pay_down_debt,
		opens_new_card, on_time_payment_months, missed_payments, closes_oldest_account, created_at_ns
		FROM simulations
		WHERE user_id = ?
		ORDER BY created_at_ns DESC, rowid DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query simulations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sims []domain.SavedSimulation
	for rows.Next() {
		var (
			sim             domain.SavedSimulation
			newCard, closes int
			createdAtNs     int64
		)
		if err := rows.Scan(&sim.ID, &sim.UserID, &sim.BaseScore, &sim.ProjectedScore, &sim.PayDownDebt,
			&newCard, &sim.OnTimePaymentMonths, &sim.MissedPayments, &closes, &createdAtNs); err != nil {
			return nil, err
		}
		sim.OpensNewCard = newCard != 0
		sim.ClosesOldestAccount = closes != 0
		sim.CreatedAt = time.Unix(0, createdAtNs).UTC()
		sims = append(sims, sim)
	}
	return sims, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
