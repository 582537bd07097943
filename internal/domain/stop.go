package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stop is a single location visit within a day plan.
//
// Sequence is the 0-based position within the plan, unique and contiguous.
// ScheduledArrival/ScheduledDeparture are fixed time anchors: when set they
// are immutable constraints the sequencer must honor, never values it derives.
type Stop struct {
	ID                  uuid.UUID
	PlanID              uuid.UUID
	Sequence            int
	Name                string
	Address             string
	Location            Location
	PlaceID             string
	StopType            StopType
	Source              StopSource
	ScheduledArrival    *time.Time
	ScheduledDeparture  *time.Time
	StayDurationMinutes int
	Notes               string
	CalendarEventID     string
}

// Validate enforces structural rules common to create and update.
func (s Stop) Validate() error {
	if err := s.Location.Validate(); err != nil {
		return err
	}
	if !s.StopType.Valid() {
		return validationf("invalid stop_type %q", s.StopType)
	}
	if !s.Source.Valid() {
		return validationf("invalid source %q", s.Source)
	}
	if s.StayDurationMinutes < 0 {
		return validationf("stay_duration_minutes must not be negative")
	}
	if s.ScheduledArrival != nil && s.ScheduledDeparture != nil &&
		s.ScheduledDeparture.Before(*s.ScheduledArrival) {
		return validationf("scheduled_departure must not be before scheduled_arrival")
	}
	return nil
}

// HasFixedArrival reports whether the stop is anchored to a calendar time.
func (s Stop) HasFixedArrival() bool { return s.ScheduledArrival != nil }

// Window returns the occupied time interval [start, end) for conflict
// detection. A stop with no scheduled departure occupies
// [arrival, arrival + stay duration). Returns ok=false when the stop has
// no scheduled arrival at all.
func (s Stop) Window() (start, end time.Time, ok bool) {
	if s.ScheduledArrival == nil {
		return time.Time{}, time.Time{}, false
	}
	start = *s.ScheduledArrival
	if s.ScheduledDeparture != nil {
		end = *s.ScheduledDeparture
	} else {
		end = start.Add(time.Duration(s.StayDurationMinutes) * time.Minute)
	}
	return start, end, true
}

// EffectiveDeparture is the time the traveller leaves the stop: the explicit
// scheduled departure, or scheduled arrival plus stay duration.
// Returns ok=false when the stop carries no time anchor.
func (s Stop) EffectiveDeparture() (time.Time, bool) {
	if s.ScheduledDeparture != nil {
		return *s.ScheduledDeparture, true
	}
	if s.ScheduledArrival != nil {
		return s.ScheduledArrival.Add(time.Duration(s.StayDurationMinutes) * time.Minute), true
	}
	return time.Time{}, false
}
