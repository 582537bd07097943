package domain

import "github.com/google/uuid"

// Conflict is an advisory annotation produced during itinerary generation.
// Conflicts never block generation; they are surfaced alongside a successful
// result for manual resolution and are not persisted.
type Conflict struct {
	Type    ConflictType
	StopIDs []uuid.UUID
	Message string
}

// GeneratedItinerary is the ephemeral result of a generation run: the
// ordered stops, the legs connecting them, aggregate totals, and any
// detected conflicts. It is owned by the caller and only the stop order
// and legs are persisted, on an explicit accept.
type GeneratedItinerary struct {
	Stops                []Stop
	Legs                 []Leg
	TotalDistanceMeters  int
	TotalDurationSeconds int
	Conflicts            []Conflict
}
