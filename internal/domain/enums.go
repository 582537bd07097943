package domain

// TransportMode is the travel mode used for a leg or a whole plan.
type TransportMode string

const (
	TransportWalking   TransportMode = "walking"
	TransportDriving   TransportMode = "driving"
	TransportTransit   TransportMode = "transit"
	TransportBicycling TransportMode = "bicycling"
)

func (m TransportMode) Valid() bool {
	switch m {
	case TransportWalking, TransportDriving, TransportTransit, TransportBicycling:
		return true
	}
	return false
}

// StopType classifies a stop's role within a plan.
// At most one origin and one destination may exist per plan.
type StopType string

const (
	StopTypeOrigin      StopType = "origin"
	StopTypeDestination StopType = "destination"
	StopTypeWaypoint    StopType = "waypoint"
	StopTypeRestStop    StopType = "rest_stop"
)

func (t StopType) Valid() bool {
	switch t {
	case StopTypeOrigin, StopTypeDestination, StopTypeWaypoint, StopTypeRestStop:
		return true
	}
	return false
}

// StopSource records where a stop came from.
type StopSource string

const (
	StopSourceCalendar StopSource = "calendar"
	StopSourceManual   StopSource = "manual"
	StopSourceDetected StopSource = "detected"
)

func (s StopSource) Valid() bool {
	switch s {
	case StopSourceCalendar, StopSourceManual, StopSourceDetected:
		return true
	}
	return false
}

// PlanStatus is the lifecycle state of a day plan.
// Transitions only move forward: draft -> confirmed -> completed.
type PlanStatus string

const (
	PlanStatusDraft     PlanStatus = "draft"
	PlanStatusConfirmed PlanStatus = "confirmed"
	PlanStatusCompleted PlanStatus = "completed"
)

func (s PlanStatus) Valid() bool {
	switch s {
	case PlanStatusDraft, PlanStatusConfirmed, PlanStatusCompleted:
		return true
	}
	return false
}

func (s PlanStatus) rank() int {
	switch s {
	case PlanStatusDraft:
		return 0
	case PlanStatusConfirmed:
		return 1
	case PlanStatusCompleted:
		return 2
	}
	return -1
}

// CanTransitionTo reports whether moving from s to next is a legal
// forward transition. Staying on the same status is allowed.
func (s PlanStatus) CanTransitionTo(next PlanStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	return next.rank() >= s.rank()
}

// ConflictType classifies a timing problem found during generation.
type ConflictType string

const (
	ConflictTimeOverlap            ConflictType = "time_overlap"
	ConflictInsufficientTravelTime ConflictType = "insufficient_travel_time"
)
