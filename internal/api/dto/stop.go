package dto

import (
	"time"

	"github.com/google/uuid"
)

type LocationDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// StopRequest is the create payload; the path identifies the plan.
type StopRequest struct {
	Name                string      `json:"name"`
	Address             string      `json:"address"`
	Location            LocationDTO `json:"location"`
	PlaceID             string      `json:"place_id"`
	StopType            string      `json:"stop_type"`
	Source              string      `json:"source"`
	ScheduledArrival    *time.Time  `json:"scheduled_arrival"`
	ScheduledDeparture  *time.Time  `json:"scheduled_departure"`
	StayDurationMinutes int         `json:"stay_duration_minutes"`
	Notes               string      `json:"notes"`
	CalendarEventID     string      `json:"calendar_event_id"`
}

// UpdateStopRequest applies a partial update; nil fields keep their stored
// values.
type UpdateStopRequest struct {
	Name                *string      `json:"name"`
	Address             *string      `json:"address"`
	Location            *LocationDTO `json:"location"`
	PlaceID             *string      `json:"place_id"`
	StopType            *string      `json:"stop_type"`
	Source              *string      `json:"source"`
	ScheduledArrival    *time.Time   `json:"scheduled_arrival"`
	ScheduledDeparture  *time.Time   `json:"scheduled_departure"`
	StayDurationMinutes *int         `json:"stay_duration_minutes"`
	Notes               *string      `json:"notes"`
	CalendarEventID     *string      `json:"calendar_event_id"`
}

type StopResponse struct {
	ID                  uuid.UUID   `json:"id"`
	PlanID              uuid.UUID   `json:"plan_id"`
	Sequence            int         `json:"sequence"`
	Name                string      `json:"name"`
	Address             string      `json:"address,omitempty"`
	Location            LocationDTO `json:"location"`
	PlaceID             string      `json:"place_id,omitempty"`
	StopType            string      `json:"stop_type"`
	Source              string      `json:"source"`
	ScheduledArrival    *time.Time  `json:"scheduled_arrival,omitempty"`
	ScheduledDeparture  *time.Time  `json:"scheduled_departure,omitempty"`
	StayDurationMinutes int         `json:"stay_duration_minutes"`
	Notes               string      `json:"notes,omitempty"`
	CalendarEventID     string      `json:"calendar_event_id,omitempty"`
}

type ListStopsResponse struct {
	Stops []StopResponse `json:"stops"`
}
