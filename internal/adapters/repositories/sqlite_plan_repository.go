package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"daytrip-itinerary-service/internal/domain"

	"github.com/google/uuid"
)

// SQLite-backed implementation of the PlanRepository port.
//
// Times are stored as RFC 3339 strings in UTC. Legs are derived data: any
// stop mutation clears the plan's legs so a stale route is never served.
type SqlitePlanRepository struct{ DB *sql.DB }

func NewSqlitePlanRepository(db *sql.DB) *SqlitePlanRepository {
	return &SqlitePlanRepository{DB: db}
}

func (s *SqlitePlanRepository) CreatePlan(ctx context.Context, plan domain.DayPlan) (domain.DayPlan, error) {
	if s.DB == nil {
		return domain.DayPlan{}, errors.New("sqlite plan repository: DB is nil")
	}

	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	if plan.Status == "" {
		plan.Status = domain.PlanStatusDraft
	}
	now := time.Now().UTC().Truncate(time.Second)
	plan.CreatedAt = now
	plan.UpdatedAt = now

	query := `
	INSERT INTO day_plans (
		id,
		plan_date,
		title,
		status,
		default_transport,
		created_at,
		updated_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`
	_, err := s.DB.ExecContext(ctx, query,
		plan.ID.String(),
		plan.PlanDate.UTC().Format(time.RFC3339),
		plan.Title,
		string(plan.Status),
		string(plan.DefaultTransport),
		plan.CreatedAt.Format(time.RFC3339),
		plan.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return domain.DayPlan{}, fmt.Errorf("create plan: insert: %w", err)
	}

	plan.Stops = []domain.Stop{}
	plan.Legs = []domain.Leg{}
	return plan, nil
}

func (s *SqlitePlanRepository) GetPlan(ctx context.Context, planID uuid.UUID) (domain.DayPlan, error) {
	if s.DB == nil {
		return domain.DayPlan{}, errors.New("sqlite plan repository: DB is nil")
	}

	query := `
	SELECT
		id,
		plan_date,
		title,
		status,
		default_transport,
		created_at,
		updated_at
	FROM day_plans
	WHERE id = ?;
	`
	var (
		plan                                    domain.DayPlan
		id, planDate, status, mode, created, up string
	)
	row := s.DB.QueryRowContext(ctx, query, planID.String())
	err := row.Scan(&id, &planDate, &plan.Title, &status, &mode, &created, &up)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DayPlan{}, fmt.Errorf("get plan %s: %w", planID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.DayPlan{}, fmt.Errorf("get plan %s: scan: %w", planID, err)
	}

	plan.ID, err = uuid.Parse(id)
	if err != nil {
		return domain.DayPlan{}, fmt.Errorf("get plan %s: parse id: %w", planID, err)
	}
	plan.Status = domain.PlanStatus(status)
	plan.DefaultTransport = domain.TransportMode(mode)
	if plan.PlanDate, err = parseTime(planDate); err != nil {
		return domain.DayPlan{}, fmt.Errorf("get plan %s: parse plan_date: %w", planID, err)
	}
	if plan.CreatedAt, err = parseTime(created); err != nil {
		return domain.DayPlan{}, fmt.Errorf("get plan %s: parse created_at: %w", planID, err)
	}
	if plan.UpdatedAt, err = parseTime(up); err != nil {
		return domain.DayPlan{}, fmt.Errorf("get plan %s: parse updated_at: %w", planID, err)
	}

	if plan.Stops, err = s.GetStops(ctx, planID); err != nil {
		return domain.DayPlan{}, err
	}
	if plan.Legs, err = s.getLegs(ctx, planID); err != nil {
		return domain.DayPlan{}, err
	}
	return plan, nil
}

func (s *SqlitePlanRepository) ListPlans(ctx context.Context) ([]domain.DayPlanSummary, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite plan repository: DB is nil")
	}

	query := `
	SELECT
		p.id,
		p.plan_date,
		p.title,
		p.status,
		COUNT(s.id)
	FROM day_plans p
	LEFT JOIN stops s ON s.plan_id = p.id
	GROUP BY p.id
	ORDER BY p.plan_date, p.id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list plans: query: %w", err)
	}
	defer rows.Close()

	summaries := make([]domain.DayPlanSummary, 0, 16)
	for rows.Next() {
		var (
			sm               domain.DayPlanSummary
			id, date, status string
		)
		if err := rows.Scan(&id, &date, &sm.Title, &status, &sm.StopCount); err != nil {
			return nil, fmt.Errorf("list plans: scan row: %w", err)
		}
		if sm.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("list plans: parse id: %w", err)
		}
		if sm.PlanDate, err = parseTime(date); err != nil {
			return nil, fmt.Errorf("list plans: parse plan_date: %w", err)
		}
		sm.Status = domain.PlanStatus(status)
		summaries = append(summaries, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list plans: row iteration: %w", err)
	}
	return summaries, nil
}

func (s *SqlitePlanRepository) UpdatePlan(ctx context.Context, plan domain.DayPlan) (domain.DayPlan, error) {
	if s.DB == nil {
		return domain.DayPlan{}, errors.New("sqlite plan repository: DB is nil")
	}

	query := `
	UPDATE day_plans
	SET title = ?, status = ?, default_transport = ?, updated_at = ?
	WHERE id = ?;
	`
	res, err := s.DB.ExecContext(ctx, query,
		plan.Title,
		string(plan.Status),
		string(plan.DefaultTransport),
		time.Now().UTC().Format(time.RFC3339),
		plan.ID.String(),
	)
	if err != nil {
		return domain.DayPlan{}, fmt.Errorf("update plan %s: exec: %w", plan.ID, err)
	}
	if err := requireAffected(res, plan.ID); err != nil {
		return domain.DayPlan{}, fmt.Errorf("update plan: %w", err)
	}
	return s.GetPlan(ctx, plan.ID)
}

func (s *SqlitePlanRepository) DeletePlan(ctx context.Context, planID uuid.UUID) error {
	if s.DB == nil {
		return errors.New("sqlite plan repository: DB is nil")
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM day_plans WHERE id = ?;`, planID.String())
	if err != nil {
		return fmt.Errorf("delete plan %s: exec: %w", planID, err)
	}
	if err := requireAffected(res, planID); err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}

func (s *SqlitePlanRepository) GetStops(ctx context.Context, planID uuid.UUID) ([]domain.Stop, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite plan repository: DB is nil")
	}
	return queryStops(ctx, s.DB, planID)
}

func (s *SqlitePlanRepository) CreateStop(ctx context.Context, stop domain.Stop) (domain.Stop, error) {
	if s.DB == nil {
		return domain.Stop{}, errors.New("sqlite plan repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("create stop: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM day_plans WHERE id = ?;`, stop.PlanID.String()).Scan(&exists)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("create stop: check plan: %w", err)
	}
	if exists == 0 {
		return domain.Stop{}, fmt.Errorf("create stop: plan %s: %w", stop.PlanID, domain.ErrNotFound)
	}

	if stop.ID == uuid.Nil {
		stop.ID = uuid.New()
	}
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sequence) + 1, 0) FROM stops WHERE plan_id = ?;`,
		stop.PlanID.String(),
	).Scan(&stop.Sequence)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("create stop: next sequence: %w", err)
	}

	query := `
	INSERT INTO stops (
		id,
		plan_id,
		sequence,
		name,
		address,
		lat,
		lng,
		place_id,
		stop_type,
		source,
		scheduled_arrival,
		scheduled_departure,
		stay_duration_minutes,
		notes,
		calendar_event_id
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	_, err = tx.ExecContext(ctx, query,
		stop.ID.String(),
		stop.PlanID.String(),
		stop.Sequence,
		stop.Name,
		stop.Address,
		stop.Location.Lat,
		stop.Location.Lng,
		stop.PlaceID,
		string(stop.StopType),
		string(stop.Source),
		fmtTimePtr(stop.ScheduledArrival),
		fmtTimePtr(stop.ScheduledDeparture),
		stop.StayDurationMinutes,
		stop.Notes,
		stop.CalendarEventID,
	)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("create stop: insert: %w", err)
	}

	if err := clearLegs(ctx, tx, stop.PlanID); err != nil {
		return domain.Stop{}, fmt.Errorf("create stop: %w", err)
	}
	if err := touchPlan(ctx, tx, stop.PlanID); err != nil {
		return domain.Stop{}, fmt.Errorf("create stop: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Stop{}, fmt.Errorf("create stop: commit tx: %w", err)
	}
	return stop, nil
}

func (s *SqlitePlanRepository) UpdateStop(ctx context.Context, stop domain.Stop) (domain.Stop, error) {
	if s.DB == nil {
		return domain.Stop{}, errors.New("sqlite plan repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("update stop: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	UPDATE stops
	SET name = ?,
	    address = ?,
	    lat = ?,
	    lng = ?,
	    place_id = ?,
	    stop_type = ?,
	    source = ?,
	    scheduled_arrival = ?,
	    scheduled_departure = ?,
	    stay_duration_minutes = ?,
	    notes = ?,
	    calendar_event_id = ?
	WHERE id = ? AND plan_id = ?;
	`
	res, err := tx.ExecContext(ctx, query,
		stop.Name,
		stop.Address,
		stop.Location.Lat,
		stop.Location.Lng,
		stop.PlaceID,
		string(stop.StopType),
		string(stop.Source),
		fmtTimePtr(stop.ScheduledArrival),
		fmtTimePtr(stop.ScheduledDeparture),
		stop.StayDurationMinutes,
		stop.Notes,
		stop.CalendarEventID,
		stop.ID.String(),
		stop.PlanID.String(),
	)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("update stop %s: exec: %w", stop.ID, err)
	}
	if err := requireAffected(res, stop.ID); err != nil {
		return domain.Stop{}, fmt.Errorf("update stop: %w", err)
	}

	err = tx.QueryRowContext(ctx,
		`SELECT sequence FROM stops WHERE id = ?;`, stop.ID.String(),
	).Scan(&stop.Sequence)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("update stop %s: read sequence: %w", stop.ID, err)
	}

	if err := clearLegs(ctx, tx, stop.PlanID); err != nil {
		return domain.Stop{}, fmt.Errorf("update stop: %w", err)
	}
	if err := touchPlan(ctx, tx, stop.PlanID); err != nil {
		return domain.Stop{}, fmt.Errorf("update stop: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Stop{}, fmt.Errorf("update stop: commit tx: %w", err)
	}
	return stop, nil
}

func (s *SqlitePlanRepository) DeleteStop(ctx context.Context, planID, stopID uuid.UUID) error {
	if s.DB == nil {
		return errors.New("sqlite plan repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete stop: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var seq int
	err = tx.QueryRowContext(ctx,
		`SELECT sequence FROM stops WHERE id = ? AND plan_id = ?;`,
		stopID.String(), planID.String(),
	).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("delete stop %s: %w", stopID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete stop %s: read sequence: %w", stopID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM stops WHERE id = ? AND plan_id = ?;`,
		stopID.String(), planID.String(),
	); err != nil {
		return fmt.Errorf("delete stop %s: exec: %w", stopID, err)
	}

	// Keep the remaining sequences contiguous.
	if _, err := tx.ExecContext(ctx,
		`UPDATE stops SET sequence = sequence - 1 WHERE plan_id = ? AND sequence > ?;`,
		planID.String(), seq,
	); err != nil {
		return fmt.Errorf("delete stop %s: renumber: %w", stopID, err)
	}

	if err := clearLegs(ctx, tx, planID); err != nil {
		return fmt.Errorf("delete stop: %w", err)
	}
	if err := touchPlan(ctx, tx, planID); err != nil {
		return fmt.Errorf("delete stop: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete stop: commit tx: %w", err)
	}
	return nil
}

func (s *SqlitePlanRepository) ReplaceLegs(ctx context.Context, planID uuid.UUID, order []uuid.UUID, legs []domain.Leg) error {
	if s.DB == nil {
		return errors.New("sqlite plan repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace legs: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := queryStops(ctx, tx, planID)
	if err != nil {
		return fmt.Errorf("replace legs: %w", err)
	}
	if len(current) == 0 {
		var exists int
		err = tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM day_plans WHERE id = ?;`, planID.String()).Scan(&exists)
		if err != nil {
			return fmt.Errorf("replace legs: check plan: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("replace legs: plan %s: %w", planID, domain.ErrNotFound)
		}
	}
	if err := verifyPermutation(current, order); err != nil {
		return fmt.Errorf("replace legs: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `UPDATE stops SET sequence = ? WHERE id = ? AND plan_id = ?;`)
	if err != nil {
		return fmt.Errorf("replace legs: prepare renumber: %w", err)
	}
	defer stmt.Close()
	for i, stopID := range order {
		if _, err := stmt.ExecContext(ctx, i, stopID.String(), planID.String()); err != nil {
			return fmt.Errorf("replace legs: renumber stop %s: %w", stopID, err)
		}
	}

	if err := clearLegs(ctx, tx, planID); err != nil {
		return fmt.Errorf("replace legs: %w", err)
	}

	insert := `
	INSERT INTO legs (
		id,
		plan_id,
		from_stop_id,
		to_stop_id,
		sequence,
		transport_mode,
		distance_meters,
		duration_seconds,
		polyline
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	legStmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("replace legs: prepare insert: %w", err)
	}
	defer legStmt.Close()
	for i, l := range legs {
		id := l.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		_, err := legStmt.ExecContext(ctx,
			id.String(),
			planID.String(),
			l.FromStopID.String(),
			l.ToStopID.String(),
			i,
			string(l.TransportMode),
			l.DistanceMeters,
			l.DurationSeconds,
			l.Polyline,
		)
		if err != nil {
			return fmt.Errorf("replace legs: insert leg %d: %w", i, err)
		}
	}

	if err := touchPlan(ctx, tx, planID); err != nil {
		return fmt.Errorf("replace legs: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace legs: commit tx: %w", err)
	}
	return nil
}

func (s *SqlitePlanRepository) getLegs(ctx context.Context, planID uuid.UUID) ([]domain.Leg, error) {
	query := `
	SELECT
		id,
		plan_id,
		from_stop_id,
		to_stop_id,
		sequence,
		transport_mode,
		distance_meters,
		duration_seconds,
		polyline
	FROM legs
	WHERE plan_id = ?
	ORDER BY sequence;
	`
	rows, err := s.DB.QueryContext(ctx, query, planID.String())
	if err != nil {
		return nil, fmt.Errorf("get legs %s: query: %w", planID, err)
	}
	defer rows.Close()

	legs := make([]domain.Leg, 0, 8)
	for rows.Next() {
		var (
			l                           domain.Leg
			id, pid, fromID, toID, mode string
		)
		err := rows.Scan(&id, &pid, &fromID, &toID, &l.Sequence, &mode, &l.DistanceMeters, &l.DurationSeconds, &l.Polyline)
		if err != nil {
			return nil, fmt.Errorf("get legs %s: scan row: %w", planID, err)
		}
		if l.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("get legs %s: parse id: %w", planID, err)
		}
		if l.PlanID, err = uuid.Parse(pid); err != nil {
			return nil, fmt.Errorf("get legs %s: parse plan_id: %w", planID, err)
		}
		if l.FromStopID, err = uuid.Parse(fromID); err != nil {
			return nil, fmt.Errorf("get legs %s: parse from_stop_id: %w", planID, err)
		}
		if l.ToStopID, err = uuid.Parse(toID); err != nil {
			return nil, fmt.Errorf("get legs %s: parse to_stop_id: %w", planID, err)
		}
		l.TransportMode = domain.TransportMode(mode)
		legs = append(legs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get legs %s: row iteration: %w", planID, err)
	}
	return legs, nil
}

// querier lets stop reads run against the pool or an open transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryStops(ctx context.Context, q querier, planID uuid.UUID) ([]domain.Stop, error) {
	query := `
	SELECT
		id,
		plan_id,
		sequence,
		name,
		address,
		lat,
		lng,
		place_id,
		stop_type,
		source,
		scheduled_arrival,
		scheduled_departure,
		stay_duration_minutes,
		notes,
		calendar_event_id
	FROM stops
	WHERE plan_id = ?
	ORDER BY sequence;
	`
	rows, err := q.QueryContext(ctx, query, planID.String())
	if err != nil {
		return nil, fmt.Errorf("get stops %s: query: %w", planID, err)
	}
	defer rows.Close()

	stops := make([]domain.Stop, 0, 8)
	for rows.Next() {
		var (
			st                     domain.Stop
			id, pid, stopType, src string
			arrival, departure     sql.NullString
		)
		err := rows.Scan(
			&id, &pid, &st.Sequence, &st.Name, &st.Address,
			&st.Location.Lat, &st.Location.Lng, &st.PlaceID,
			&stopType, &src, &arrival, &departure,
			&st.StayDurationMinutes, &st.Notes, &st.CalendarEventID,
		)
		if err != nil {
			return nil, fmt.Errorf("get stops %s: scan row: %w", planID, err)
		}
		if st.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("get stops %s: parse id: %w", planID, err)
		}
		if st.PlanID, err = uuid.Parse(pid); err != nil {
			return nil, fmt.Errorf("get stops %s: parse plan_id: %w", planID, err)
		}
		st.StopType = domain.StopType(stopType)
		st.Source = domain.StopSource(src)
		if st.ScheduledArrival, err = parseTimePtr(arrival); err != nil {
			return nil, fmt.Errorf("get stops %s: parse scheduled_arrival: %w", planID, err)
		}
		if st.ScheduledDeparture, err = parseTimePtr(departure); err != nil {
			return nil, fmt.Errorf("get stops %s: parse scheduled_departure: %w", planID, err)
		}
		stops = append(stops, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get stops %s: row iteration: %w", planID, err)
	}
	return stops, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func clearLegs(ctx context.Context, e execer, planID uuid.UUID) error {
	if _, err := e.ExecContext(ctx, `DELETE FROM legs WHERE plan_id = ?;`, planID.String()); err != nil {
		return fmt.Errorf("clear legs: %w", err)
	}
	return nil
}

func touchPlan(ctx context.Context, e execer, planID uuid.UUID) error {
	_, err := e.ExecContext(ctx,
		`UPDATE day_plans SET updated_at = ? WHERE id = ?;`,
		time.Now().UTC().Format(time.RFC3339), planID.String(),
	)
	if err != nil {
		return fmt.Errorf("touch plan: %w", err)
	}
	return nil
}

func verifyPermutation(current []domain.Stop, order []uuid.UUID) error {
	if len(order) != len(current) {
		return fmt.Errorf("order has %d ids, plan has %d stops: %w",
			len(order), len(current), domain.ErrValidation)
	}
	known := make(map[uuid.UUID]bool, len(current))
	for _, s := range current {
		known[s.ID] = true
	}
	seen := make(map[uuid.UUID]bool, len(order))
	for _, id := range order {
		if !known[id] {
			return fmt.Errorf("order references unknown stop %s: %w", id, domain.ErrValidation)
		}
		if seen[id] {
			return fmt.Errorf("order repeats stop %s: %w", id, domain.ErrValidation)
		}
		seen[id] = true
	}
	return nil
}

func requireAffected(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func fmtTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func parseTimePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
