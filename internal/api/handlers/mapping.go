package handlers

import (
	"daytrip-itinerary-service/internal/api/dto"
	"daytrip-itinerary-service/internal/domain"
	"daytrip-itinerary-service/internal/services"
)

func toPlanResponse(p domain.DayPlan) dto.PlanResponse {
	return dto.PlanResponse{
		ID:               p.ID,
		PlanDate:         p.PlanDate,
		Title:            p.Title,
		Status:           string(p.Status),
		DefaultTransport: string(p.DefaultTransport),
		Stops:            toStopResponses(p.Stops),
		Legs:             toLegResponses(p.Legs),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func toStopResponse(s domain.Stop) dto.StopResponse {
	return dto.StopResponse{
		ID:                  s.ID,
		PlanID:              s.PlanID,
		Sequence:            s.Sequence,
		Name:                s.Name,
		Address:             s.Address,
		Location:            dto.LocationDTO{Lat: s.Location.Lat, Lng: s.Location.Lng},
		PlaceID:             s.PlaceID,
		StopType:            string(s.StopType),
		Source:              string(s.Source),
		ScheduledArrival:    s.ScheduledArrival,
		ScheduledDeparture:  s.ScheduledDeparture,
		StayDurationMinutes: s.StayDurationMinutes,
		Notes:               s.Notes,
		CalendarEventID:     s.CalendarEventID,
	}
}

func toStopResponses(stops []domain.Stop) []dto.StopResponse {
	out := make([]dto.StopResponse, 0, len(stops))
	for _, s := range stops {
		out = append(out, toStopResponse(s))
	}
	return out
}

func toLegResponses(legs []domain.Leg) []dto.LegResponse {
	out := make([]dto.LegResponse, 0, len(legs))
	for _, l := range legs {
		out = append(out, dto.LegResponse{
			ID:              l.ID,
			FromStopID:      l.FromStopID,
			ToStopID:        l.ToStopID,
			Sequence:        l.Sequence,
			TransportMode:   string(l.TransportMode),
			DistanceMeters:  l.DistanceMeters,
			DurationSeconds: l.DurationSeconds,
			Polyline:        l.Polyline,
		})
	}
	return out
}

func toItineraryResponse(it *domain.GeneratedItinerary) dto.ItineraryResponse {
	conflicts := make([]dto.ConflictResponse, 0, len(it.Conflicts))
	for _, c := range it.Conflicts {
		conflicts = append(conflicts, dto.ConflictResponse{
			Type:    string(c.Type),
			StopIDs: c.StopIDs,
			Message: c.Message,
		})
	}
	return dto.ItineraryResponse{
		Stops:                toStopResponses(it.Stops),
		Legs:                 toLegResponses(it.Legs),
		TotalDistanceMeters:  it.TotalDistanceMeters,
		TotalDurationSeconds: it.TotalDurationSeconds,
		Conflicts:            conflicts,
	}
}

func toPreviewResponse(res *services.PreviewResult) dto.PreviewResponse {
	legs := make([]dto.PreviewLegResponse, 0, len(res.Legs))
	for _, l := range res.Legs {
		legs = append(legs, dto.PreviewLegResponse{
			FromIndex:       l.FromIndex,
			ToIndex:         l.ToIndex,
			DistanceMeters:  l.DistanceMeters,
			DurationSeconds: l.DurationSeconds,
			Polyline:        l.Polyline,
		})
	}
	return dto.PreviewResponse{
		Legs:                 legs,
		Order:                res.Order,
		TotalDistanceMeters:  res.TotalDistanceMeters,
		TotalDurationSeconds: res.TotalDurationSeconds,
	}
}
