package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS simulations (
	simulation_id          TEXT PRIMARY KEY,
	user_id                TEXT NOT NULL,
	base_score             INTEGER NOT NULL,
	projected_score        INTEGER NOT NULL,
	pay_down_debt          REAL NOT NULL DEFAULT 0,
	opens_new_card         INTEGER NOT NULL DEFAULT 0,
	on_time_payment_months INTEGER NOT NULL DEFAULT 0,
	missed_payments        INTEGER NOT NULL DEFAULT 0,
	closes_oldest_account  INTEGER NOT NULL DEFAULT 0,
	created_at_ns          INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_simulations_user_created ON simulations(user_id, created_at_ns DESC);
`
