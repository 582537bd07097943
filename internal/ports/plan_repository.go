package ports

import (
	"context"

	"daytrip-itinerary-service/internal/domain"

	"github.com/google/uuid"
)

// Port: the persistence boundary for day plans, stops, and legs.
//
// Implementations must return domain.ErrNotFound (possibly wrapped) when the
// identified plan or stop does not exist.
type PlanRepository interface {
	// CreatePlan persists a new plan and returns it with server-side fields set.
	CreatePlan(ctx context.Context, plan domain.DayPlan) (domain.DayPlan, error)

	// GetPlan returns a plan with its stops and legs in sequence order.
	GetPlan(ctx context.Context, planID uuid.UUID) (domain.DayPlan, error)

	// ListPlans returns summaries of all plans ordered by plan date.
	ListPlans(ctx context.Context) ([]domain.DayPlanSummary, error)

	// UpdatePlan overwrites the mutable plan fields (title, status,
	// default transport) and returns the updated plan.
	UpdatePlan(ctx context.Context, plan domain.DayPlan) (domain.DayPlan, error)

	// DeletePlan removes a plan; its stops and legs are cascade-deleted.
	DeletePlan(ctx context.Context, planID uuid.UUID) error

	// GetStops returns the plan's stops in sequence order.
	GetStops(ctx context.Context, planID uuid.UUID) ([]domain.Stop, error)

	// CreateStop appends a stop at the end of the plan's sequence.
	// The plan's legs become stale until the next generate/accept.
	CreateStop(ctx context.Context, stop domain.Stop) (domain.Stop, error)

	// UpdateStop overwrites the mutable fields of a stop, scoped to its plan.
	UpdateStop(ctx context.Context, stop domain.Stop) (domain.Stop, error)

	// DeleteStop removes a stop by id, scoped to the given plan.
	DeleteStop(ctx context.Context, planID, stopID uuid.UUID) error

	// ReplaceLegs atomically rewrites the plan's stop ordering and legs:
	// stop sequences are renumbered to match order, the prior legs are
	// deleted, and the given legs inserted, all in one transaction.
	// order must be a permutation of the plan's current stop ids.
	ReplaceLegs(ctx context.Context, planID uuid.UUID, order []uuid.UUID, legs []domain.Leg) error
}
