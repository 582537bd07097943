package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the PostgreSQL schema. Used by the dbtool command against a
// pgx connection; the table shapes mirror the SQLite schema with native
// timestamp and uuid types.
func InitPostgresSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init postgres schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init postgres schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS day_plans (
			id UUID PRIMARY KEY,
			plan_date TIMESTAMPTZ NOT NULL,
			title TEXT NOT NULL,
			status TEXT NOT NULL,
			default_transport TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS stops (
			id UUID PRIMARY KEY,
			plan_id UUID NOT NULL REFERENCES day_plans(id) ON DELETE CASCADE,
			sequence INTEGER NOT NULL,
			name TEXT NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			lat DOUBLE PRECISION NOT NULL,
			lng DOUBLE PRECISION NOT NULL,
			place_id TEXT NOT NULL DEFAULT '',
			stop_type TEXT NOT NULL,
			source TEXT NOT NULL,
			scheduled_arrival TIMESTAMPTZ,
			scheduled_departure TIMESTAMPTZ,
			stay_duration_minutes INTEGER NOT NULL DEFAULT 0,
			notes TEXT NOT NULL DEFAULT '',
			calendar_event_id TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS legs (
			id UUID PRIMARY KEY,
			plan_id UUID NOT NULL REFERENCES day_plans(id) ON DELETE CASCADE,
			from_stop_id UUID NOT NULL,
			to_stop_id UUID NOT NULL,
			sequence INTEGER NOT NULL,
			transport_mode TEXT NOT NULL,
			distance_meters INTEGER NOT NULL,
			duration_seconds INTEGER NOT NULL,
			polyline TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS route_cache (
			cache_key TEXT PRIMARY KEY,
			distance_meters INTEGER NOT NULL,
			duration_seconds INTEGER NOT NULL,
			polyline TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_stops_plan_sequence ON stops(plan_id, sequence);`,
		`CREATE INDEX IF NOT EXISTS idx_legs_plan_sequence ON legs(plan_id, sequence);`,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init postgres schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init postgres schema: commit tx: %w", err)
	}

	return nil
}
