package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"daytrip-itinerary-service/internal/domain"

	"github.com/google/uuid"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return fmt.Errorf("init schema: enable foreign keys: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createDayPlansQuery := `
	CREATE TABLE IF NOT EXISTS day_plans (
		id TEXT PRIMARY KEY,
		plan_date TEXT NOT NULL,
		title TEXT NOT NULL,
		status TEXT NOT NULL,
		default_transport TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	createStopsQuery := `
	CREATE TABLE IF NOT EXISTS stops (
		id TEXT PRIMARY KEY,
		plan_id TEXT NOT NULL REFERENCES day_plans(id) ON DELETE CASCADE,
		sequence INTEGER NOT NULL,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		lat REAL NOT NULL,
		lng REAL NOT NULL,
		place_id TEXT NOT NULL DEFAULT '',
		stop_type TEXT NOT NULL,
		source TEXT NOT NULL,
		scheduled_arrival TEXT,
		scheduled_departure TEXT,
		stay_duration_minutes INTEGER NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		calendar_event_id TEXT NOT NULL DEFAULT ''
	);
	`

	createLegsQuery := `
	CREATE TABLE IF NOT EXISTS legs (
		id TEXT PRIMARY KEY,
		plan_id TEXT NOT NULL REFERENCES day_plans(id) ON DELETE CASCADE,
		from_stop_id TEXT NOT NULL,
		to_stop_id TEXT NOT NULL,
		sequence INTEGER NOT NULL,
		transport_mode TEXT NOT NULL,
		distance_meters INTEGER NOT NULL,
		duration_seconds INTEGER NOT NULL,
		polyline TEXT NOT NULL DEFAULT ''
	);
	`

	createRouteCacheQuery := `
	CREATE TABLE IF NOT EXISTS route_cache (
		cache_key TEXT PRIMARY KEY,
		distance_meters INTEGER NOT NULL,
		duration_seconds INTEGER NOT NULL,
		polyline TEXT NOT NULL,
		expires_at INTEGER NOT NULL
	);
	`

	createStopIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_stops_plan_sequence
	ON stops(plan_id, sequence);
	`

	createLegIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_legs_plan_sequence
	ON legs(plan_id, sequence);
	`

	statements := []string{
		createDayPlansQuery,
		createStopsQuery,
		createLegsQuery,
		createRouteCacheQuery,
		createStopIndexQuery,
		createLegIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type StopSeed struct {
	Name                string  `json:"name"`
	Address             string  `json:"address"`
	Lat                 float64 `json:"lat"`
	Lng                 float64 `json:"lng"`
	StopType            string  `json:"stop_type"`
	ScheduledArrival    string  `json:"scheduled_arrival,omitempty"`
	StayDurationMinutes int     `json:"stay_duration_minutes"`
}

type PlanSeed struct {
	PlanDate         string     `json:"plan_date"`
	Title            string     `json:"title"`
	DefaultTransport string     `json:"default_transport"`
	Stops            []StopSeed `json:"stops"`
}

// Populate the database with day plans from a JSON file. Seeding is
// idempotent on plan title and date: plans that already exist are skipped.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed plans: read %q: %w", jsonPath, err)
	}

	var data []PlanSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed plans: parse json: %w", err)
	}

	ctx := context.Background()
	repo := NewSqlitePlanRepository(db)

	for i, seed := range data {
		title := strings.TrimSpace(seed.Title)
		if title == "" {
			return fmt.Errorf("seed plans: plan at index %d: title cannot be empty", i+1)
		}
		planDate, err := time.Parse("2006-01-02", seed.PlanDate)
		if err != nil {
			return fmt.Errorf("seed plans: plan %q: parse plan_date: %w", title, err)
		}
		mode := domain.TransportMode(seed.DefaultTransport)
		if !mode.Valid() {
			return fmt.Errorf("seed plans: plan %q: invalid default_transport %q", title, seed.DefaultTransport)
		}

		var exists int
		err = db.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM day_plans WHERE title = ? AND plan_date = ?;`,
			title, planDate.UTC().Format(time.RFC3339),
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("seed plans: plan %q: check existing: %w", title, err)
		}
		if exists > 0 {
			continue
		}

		plan, err := repo.CreatePlan(ctx, domain.DayPlan{
			PlanDate:         planDate,
			Title:            title,
			Status:           domain.PlanStatusDraft,
			DefaultTransport: mode,
		})
		if err != nil {
			return fmt.Errorf("seed plans: plan %q: %w", title, err)
		}

		for j, ss := range seed.Stops {
			stop := domain.Stop{
				ID:                  uuid.New(),
				PlanID:              plan.ID,
				Name:                strings.TrimSpace(ss.Name),
				Address:             ss.Address,
				Location:            domain.Location{Lat: ss.Lat, Lng: ss.Lng},
				StopType:            domain.StopType(ss.StopType),
				Source:              domain.StopSourceManual,
				StayDurationMinutes: ss.StayDurationMinutes,
			}
			if ss.ScheduledArrival != "" {
				arr, err := time.Parse(time.RFC3339, ss.ScheduledArrival)
				if err != nil {
					return fmt.Errorf("seed plans: plan %q stop %d: parse scheduled_arrival: %w", title, j+1, err)
				}
				stop.ScheduledArrival = &arr
			}
			if err := stop.Validate(); err != nil {
				return fmt.Errorf("seed plans: plan %q stop %d: %w", title, j+1, err)
			}
			if _, err := repo.CreateStop(ctx, stop); err != nil {
				return fmt.Errorf("seed plans: plan %q stop %d: %w", title, j+1, err)
			}
		}
	}

	return nil
}
