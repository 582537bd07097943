package domain

import "github.com/google/uuid"

// Leg is the directed travel segment between two consecutive stops in a plan.
//
// Legs are derived data: they are recomputed whenever the adjacent stops or
// the transport mode change and are never edited independently.
type Leg struct {
	ID              uuid.UUID
	PlanID          uuid.UUID
	FromStopID      uuid.UUID
	ToStopID        uuid.UUID
	Sequence        int
	TransportMode   TransportMode
	DistanceMeters  int
	DurationSeconds int
	Polyline        string
}
