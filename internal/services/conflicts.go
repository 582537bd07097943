package services

import (
	"fmt"
	"time"

	"daytrip-itinerary-service/internal/domain"

	"github.com/google/uuid"
)

// DetectConflicts walks an ordered stop sequence with its computed legs and
// flags temporal infeasibilities.
//
// Detection is advisory only: conflicts are data returned alongside a
// successful itinerary, never an error.
func DetectConflicts(stops []domain.Stop, legs []domain.Leg) []domain.Conflict {
	conflicts := []domain.Conflict{}

	// Insufficient travel time between consecutive anchored stops: leaving A
	// at its effective departure and travelling the computed leg must not
	// arrive after B's scheduled arrival.
	for i := 0; i+1 < len(stops) && i < len(legs); i++ {
		a, b := stops[i], stops[i+1]
		if b.ScheduledArrival == nil {
			continue
		}
		depart, ok := a.EffectiveDeparture()
		if !ok {
			continue
		}
		travel := time.Duration(legs[i].DurationSeconds) * time.Second
		if b.ScheduledArrival.Before(depart.Add(travel)) {
			conflicts = append(conflicts, domain.Conflict{
				Type:    domain.ConflictInsufficientTravelTime,
				StopIDs: []uuid.UUID{a.ID, b.ID},
				Message: fmt.Sprintf(
					"travel from %q to %q takes %s but only %s is scheduled",
					a.Name, b.Name, travel, b.ScheduledArrival.Sub(depart),
				),
			})
		}
	}

	// Overlapping scheduled windows between any two stops, consecutive or
	// not. Windows are half-open, so touching endpoints do not overlap.
	for i := 0; i < len(stops); i++ {
		aStart, aEnd, ok := stops[i].Window()
		if !ok {
			continue
		}
		for j := i + 1; j < len(stops); j++ {
			bStart, bEnd, ok := stops[j].Window()
			if !ok {
				continue
			}
			if aStart.Before(bEnd) && bStart.Before(aEnd) {
				conflicts = append(conflicts, domain.Conflict{
					Type:    domain.ConflictTimeOverlap,
					StopIDs: []uuid.UUID{stops[i].ID, stops[j].ID},
					Message: fmt.Sprintf(
						"scheduled windows of %q and %q overlap",
						stops[i].Name, stops[j].Name,
					),
				})
			}
		}
	}

	return conflicts
}
