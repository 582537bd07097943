package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationValidate(t *testing.T) {
	assert.NoError(t, Location{Lat: 33.4484, Lng: -112.074}.Validate())
	assert.NoError(t, Location{Lat: -90, Lng: 180}.Validate())
	assert.ErrorIs(t, Location{Lat: 91, Lng: 0}.Validate(), ErrValidation)
	assert.ErrorIs(t, Location{Lat: 0, Lng: -181}.Validate(), ErrValidation)
}

func TestLocationKeyRounding(t *testing.T) {
	a := Location{Lat: 33.448201, Lng: -112.073999}
	b := Location{Lat: 33.448203, Lng: -112.074001}
	assert.Equal(t, a.Key(), b.Key())

	c := Location{Lat: 33.4485, Lng: -112.074}
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestPlanStatusTransitions(t *testing.T) {
	p := DayPlan{Status: PlanStatusDraft}

	require.NoError(t, p.TransitionTo(PlanStatusConfirmed))
	require.NoError(t, p.TransitionTo(PlanStatusCompleted))

	err := p.TransitionTo(PlanStatusDraft)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, PlanStatusCompleted, p.Status)
}

func TestPlanStatusSameStatusAllowed(t *testing.T) {
	p := DayPlan{Status: PlanStatusConfirmed}
	assert.NoError(t, p.TransitionTo(PlanStatusConfirmed))
}

func TestValidateStructure(t *testing.T) {
	s0 := Stop{ID: uuid.New(), Sequence: 0}
	s1 := Stop{ID: uuid.New(), Sequence: 1}
	s2 := Stop{ID: uuid.New(), Sequence: 2}

	plan := DayPlan{
		Stops: []Stop{s0, s1, s2},
		Legs: []Leg{
			{FromStopID: s0.ID, ToStopID: s1.ID, Sequence: 0},
			{FromStopID: s1.ID, ToStopID: s2.ID, Sequence: 1},
		},
	}
	require.NoError(t, plan.ValidateStructure())

	// Leg count mismatch.
	plan.Legs = plan.Legs[:1]
	assert.ErrorIs(t, plan.ValidateStructure(), ErrValidation)

	// Legs must match the stop order exactly.
	plan.Legs = []Leg{
		{FromStopID: s1.ID, ToStopID: s0.ID},
		{FromStopID: s1.ID, ToStopID: s2.ID},
	}
	assert.ErrorIs(t, plan.ValidateStructure(), ErrValidation)
}

func TestValidateStructureEmptyAndSingle(t *testing.T) {
	assert.NoError(t, DayPlan{}.ValidateStructure())
	assert.NoError(t, DayPlan{Stops: []Stop{{Sequence: 0}}}.ValidateStructure())
}

func TestStopWindowDefaultsToStayDuration(t *testing.T) {
	arrival := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	s := Stop{ScheduledArrival: &arrival, StayDurationMinutes: 45}

	start, end, ok := s.Window()
	require.True(t, ok)
	assert.Equal(t, arrival, start)
	assert.Equal(t, arrival.Add(45*time.Minute), end)

	_, _, ok = Stop{}.Window()
	assert.False(t, ok)
}

func TestStopValidate(t *testing.T) {
	arrival := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	departure := arrival.Add(-time.Hour)

	good := Stop{
		Location: Location{Lat: 1, Lng: 2},
		StopType: StopTypeWaypoint,
		Source:   StopSourceManual,
	}
	assert.NoError(t, good.Validate())

	bad := good
	bad.ScheduledArrival = &arrival
	bad.ScheduledDeparture = &departure
	assert.ErrorIs(t, bad.Validate(), ErrValidation)

	bad = good
	bad.StayDurationMinutes = -1
	assert.ErrorIs(t, bad.Validate(), ErrValidation)

	bad = good
	bad.StopType = "teleport"
	assert.ErrorIs(t, bad.Validate(), ErrValidation)
}
