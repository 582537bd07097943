package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"daytrip-itinerary-service/internal/domain"
)

func newTestRepo(t *testing.T) *SqlitePlanRepository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, InitSchema(db))
	return NewSqlitePlanRepository(db)
}

func newTestPlan(t *testing.T, repo *SqlitePlanRepository) domain.DayPlan {
	t.Helper()
	plan, err := repo.CreatePlan(context.Background(), domain.DayPlan{
		PlanDate:         time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		Title:            "Lisbon day trip",
		DefaultTransport: domain.TransportDriving,
	})
	require.NoError(t, err)
	return plan
}

func addStop(t *testing.T, repo *SqlitePlanRepository, planID uuid.UUID, name string) domain.Stop {
	t.Helper()
	stop, err := repo.CreateStop(context.Background(), domain.Stop{
		PlanID:   planID,
		Name:     name,
		Location: domain.Location{Lat: 38.7223, Lng: -9.1393},
		StopType: domain.StopTypeWaypoint,
		Source:   domain.StopSourceManual,
	})
	require.NoError(t, err)
	return stop
}

func TestCreatePlanSetsServerFields(t *testing.T) {
	repo := newTestRepo(t)
	plan := newTestPlan(t, repo)

	assert.NotEqual(t, uuid.Nil, plan.ID)
	assert.Equal(t, domain.PlanStatusDraft, plan.Status)
	assert.False(t, plan.CreatedAt.IsZero())

	got, err := repo.GetPlan(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.Title, got.Title)
	assert.Empty(t, got.Stops)
	assert.Empty(t, got.Legs)
}

func TestGetPlanNotFound(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.GetPlan(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateStopAssignsContiguousSequences(t *testing.T) {
	repo := newTestRepo(t)
	plan := newTestPlan(t, repo)

	a := addStop(t, repo, plan.ID, "a")
	b := addStop(t, repo, plan.ID, "b")
	c := addStop(t, repo, plan.ID, "c")

	assert.Equal(t, 0, a.Sequence)
	assert.Equal(t, 1, b.Sequence)
	assert.Equal(t, 2, c.Sequence)
}

func TestCreateStopUnknownPlan(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.CreateStop(context.Background(), domain.Stop{
		PlanID:   uuid.New(),
		Name:     "nowhere",
		Location: domain.Location{Lat: 1, Lng: 1},
		StopType: domain.StopTypeWaypoint,
		Source:   domain.StopSourceManual,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteStopRenumbersAndClearsLegs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	plan := newTestPlan(t, repo)

	a := addStop(t, repo, plan.ID, "a")
	b := addStop(t, repo, plan.ID, "b")
	c := addStop(t, repo, plan.ID, "c")

	order := []uuid.UUID{a.ID, b.ID, c.ID}
	legs := []domain.Leg{
		{PlanID: plan.ID, FromStopID: a.ID, ToStopID: b.ID, TransportMode: domain.TransportDriving, DistanceMeters: 100, DurationSeconds: 60},
		{PlanID: plan.ID, FromStopID: b.ID, ToStopID: c.ID, TransportMode: domain.TransportDriving, DistanceMeters: 200, DurationSeconds: 120},
	}
	require.NoError(t, repo.ReplaceLegs(ctx, plan.ID, order, legs))

	require.NoError(t, repo.DeleteStop(ctx, plan.ID, b.ID))

	got, err := repo.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	require.Len(t, got.Stops, 2)
	assert.Equal(t, a.ID, got.Stops[0].ID)
	assert.Equal(t, 0, got.Stops[0].Sequence)
	assert.Equal(t, c.ID, got.Stops[1].ID)
	assert.Equal(t, 1, got.Stops[1].Sequence)
	assert.Empty(t, got.Legs, "stale legs must be dropped on stop mutation")
}

func TestReplaceLegsReordersStops(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	plan := newTestPlan(t, repo)

	a := addStop(t, repo, plan.ID, "a")
	b := addStop(t, repo, plan.ID, "b")
	c := addStop(t, repo, plan.ID, "c")

	order := []uuid.UUID{c.ID, a.ID, b.ID}
	legs := []domain.Leg{
		{PlanID: plan.ID, FromStopID: c.ID, ToStopID: a.ID, TransportMode: domain.TransportWalking, DistanceMeters: 300, DurationSeconds: 240, Polyline: "p1"},
		{PlanID: plan.ID, FromStopID: a.ID, ToStopID: b.ID, TransportMode: domain.TransportWalking, DistanceMeters: 500, DurationSeconds: 420, Polyline: "p2"},
	}
	require.NoError(t, repo.ReplaceLegs(ctx, plan.ID, order, legs))

	got, err := repo.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	require.Len(t, got.Stops, 3)
	assert.Equal(t, []uuid.UUID{c.ID, a.ID, b.ID},
		[]uuid.UUID{got.Stops[0].ID, got.Stops[1].ID, got.Stops[2].ID})
	require.Len(t, got.Legs, 2)
	assert.Equal(t, "p1", got.Legs[0].Polyline)
	assert.Equal(t, 420, got.Legs[1].DurationSeconds)
	assert.NoError(t, got.ValidateStructure())
}

func TestReplaceLegsRejectsBadPermutation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	plan := newTestPlan(t, repo)

	a := addStop(t, repo, plan.ID, "a")
	b := addStop(t, repo, plan.ID, "b")

	t.Run("unknown stop id", func(t *testing.T) {
		err := repo.ReplaceLegs(ctx, plan.ID, []uuid.UUID{a.ID, uuid.New()}, nil)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("duplicated stop id", func(t *testing.T) {
		err := repo.ReplaceLegs(ctx, plan.ID, []uuid.UUID{a.ID, a.ID}, nil)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("wrong length", func(t *testing.T) {
		err := repo.ReplaceLegs(ctx, plan.ID, []uuid.UUID{b.ID}, nil)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	// A failed replace must leave the original ordering intact.
	got, err := repo.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	require.Len(t, got.Stops, 2)
	assert.Equal(t, a.ID, got.Stops[0].ID)
	assert.Equal(t, b.ID, got.Stops[1].ID)
}

func TestReplaceLegsUnknownPlan(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.ReplaceLegs(context.Background(), uuid.New(), nil, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeletePlanCascades(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	plan := newTestPlan(t, repo)
	addStop(t, repo, plan.ID, "a")

	require.NoError(t, repo.DeletePlan(ctx, plan.ID))

	_, err := repo.GetPlan(ctx, plan.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var count int
	err = repo.DB.QueryRow(`SELECT COUNT(1) FROM stops WHERE plan_id = ?;`, plan.ID.String()).Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count, "stops must cascade with the plan")
}

func TestUpdateStopRoundTripsSchedule(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	plan := newTestPlan(t, repo)
	stop := addStop(t, repo, plan.ID, "museum")

	arrival := time.Date(2026, 9, 12, 10, 0, 0, 0, time.UTC)
	stop.ScheduledArrival = &arrival
	stop.StayDurationMinutes = 45
	stop.Notes = "buy tickets ahead"

	updated, err := repo.UpdateStop(ctx, stop)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Sequence)

	stops, err := repo.GetStops(ctx, plan.ID)
	require.NoError(t, err)
	require.Len(t, stops, 1)
	require.NotNil(t, stops[0].ScheduledArrival)
	assert.True(t, stops[0].ScheduledArrival.Equal(arrival))
	assert.Nil(t, stops[0].ScheduledDeparture)
	assert.Equal(t, 45, stops[0].StayDurationMinutes)
}

func TestListPlansOrdersByDate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	later, err := repo.CreatePlan(ctx, domain.DayPlan{
		PlanDate:         time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Title:            "later",
		DefaultTransport: domain.TransportWalking,
	})
	require.NoError(t, err)
	earlier, err := repo.CreatePlan(ctx, domain.DayPlan{
		PlanDate:         time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Title:            "earlier",
		DefaultTransport: domain.TransportWalking,
	})
	require.NoError(t, err)
	addStop(t, repo, earlier.ID, "a")

	summaries, err := repo.ListPlans(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, earlier.ID, summaries[0].ID)
	assert.Equal(t, 1, summaries[0].StopCount)
	assert.Equal(t, later.ID, summaries[1].ID)
	assert.Equal(t, 0, summaries[1].StopCount)
}
