// Package domain contains the core entities of the day-trip itinerary
// service. It has no dependencies on adapters or transport layers and is
// imported by every other internal package.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// DayPlan is the aggregate root for a single day of travel.
// A plan exclusively owns its ordered stops and the legs connecting them;
// deleting a plan cascades to both.
type DayPlan struct {
	ID               uuid.UUID
	PlanDate         time.Time
	Title            string
	Status           PlanStatus
	DefaultTransport TransportMode
	Stops            []Stop
	Legs             []Leg
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DayPlanSummary is the list-view projection of a plan.
type DayPlanSummary struct {
	ID        uuid.UUID
	PlanDate  time.Time
	Title     string
	Status    PlanStatus
	StopCount int
}

// ValidateStructure verifies the stop/leg shape invariants:
// stop sequences are 0-based and contiguous, there are exactly
// max(0, len(stops)-1) legs, and each leg connects consecutive stops
// in sequence order.
func (p DayPlan) ValidateStructure() error {
	for i, s := range p.Stops {
		if s.Sequence != i {
			return validationf("stop %s has sequence %d, want %d", s.ID, s.Sequence, i)
		}
	}

	wantLegs := 0
	if len(p.Stops) > 1 {
		wantLegs = len(p.Stops) - 1
	}
	if len(p.Legs) != wantLegs {
		return validationf("plan has %d legs, want %d for %d stops", len(p.Legs), wantLegs, len(p.Stops))
	}

	for i, l := range p.Legs {
		if l.FromStopID != p.Stops[i].ID || l.ToStopID != p.Stops[i+1].ID {
			return validationf("leg %d does not connect stops %s -> %s", i, p.Stops[i].ID, p.Stops[i+1].ID)
		}
	}
	return nil
}

// TransitionTo moves the plan status forward. Backward transitions
// (e.g. completed -> draft) are rejected.
func (p *DayPlan) TransitionTo(next PlanStatus) error {
	if !p.Status.CanTransitionTo(next) {
		return validationf("cannot transition plan status from %q to %q", p.Status, next)
	}
	p.Status = next
	return nil
}
