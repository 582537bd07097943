package handlers

import (
	"net/http"
	"strings"

	"daytrip-itinerary-service/internal/api/dto"
	"daytrip-itinerary-service/internal/domain"
	"daytrip-itinerary-service/internal/ports"

	"github.com/google/uuid"
)

// StopHandler exposes CRUD endpoints for the stops of a plan.
type StopHandler struct {
	Repo ports.PlanRepository
}

func (h *StopHandler) List(w http.ResponseWriter, r *http.Request) {
	planID, ok := pathUUID(w, r, "planID")
	if !ok {
		return
	}

	// Distinguish an empty plan from a missing one.
	if _, err := h.Repo.GetPlan(r.Context(), planID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	stops, err := h.Repo.GetStops(r.Context(), planID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.ListStopsResponse{Stops: toStopResponses(stops)})
}

func (h *StopHandler) Create(w http.ResponseWriter, r *http.Request) {
	planID, ok := pathUUID(w, r, "planID")
	if !ok {
		return
	}
	stop, ok := h.stopFromRequest(w, r, planID)
	if !ok {
		return
	}

	created, err := h.Repo.CreateStop(r.Context(), stop)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toStopResponse(created))
}

// Update applies a partial update onto the stored stop, so a payload that
// only carries notes leaves the schedule and stop type untouched.
func (h *StopHandler) Update(w http.ResponseWriter, r *http.Request) {
	planID, ok := pathUUID(w, r, "planID")
	if !ok {
		return
	}
	stopID, ok := pathUUID(w, r, "stopID")
	if !ok {
		return
	}
	var req dto.UpdateStopRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	stop, ok := h.findStop(w, r, planID, stopID)
	if !ok {
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			writeError(w, r, http.StatusUnprocessableEntity, "validation_error", "name cannot be empty")
			return
		}
		stop.Name = name
	}
	if req.Address != nil {
		stop.Address = *req.Address
	}
	if req.Location != nil {
		stop.Location = domain.Location{Lat: req.Location.Lat, Lng: req.Location.Lng}
	}
	if req.PlaceID != nil {
		stop.PlaceID = *req.PlaceID
	}
	if req.StopType != nil {
		stop.StopType = domain.StopType(*req.StopType)
	}
	if req.Source != nil {
		stop.Source = domain.StopSource(*req.Source)
	}
	if req.ScheduledArrival != nil {
		stop.ScheduledArrival = req.ScheduledArrival
	}
	if req.ScheduledDeparture != nil {
		stop.ScheduledDeparture = req.ScheduledDeparture
	}
	if req.StayDurationMinutes != nil {
		stop.StayDurationMinutes = *req.StayDurationMinutes
	}
	if req.Notes != nil {
		stop.Notes = *req.Notes
	}
	if req.CalendarEventID != nil {
		stop.CalendarEventID = *req.CalendarEventID
	}
	if err := stop.Validate(); err != nil {
		writeDomainError(w, r, err)
		return
	}

	updated, err := h.Repo.UpdateStop(r.Context(), stop)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toStopResponse(updated))
}

func (h *StopHandler) Delete(w http.ResponseWriter, r *http.Request) {
	planID, ok := pathUUID(w, r, "planID")
	if !ok {
		return
	}
	stopID, ok := pathUUID(w, r, "stopID")
	if !ok {
		return
	}
	if err := h.Repo.DeleteStop(r.Context(), planID, stopID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// findStop loads the stored stop identified by the path, writing 404 when
// the plan or stop does not exist.
func (h *StopHandler) findStop(w http.ResponseWriter, r *http.Request, planID, stopID uuid.UUID) (domain.Stop, bool) {
	stops, err := h.Repo.GetStops(r.Context(), planID)
	if err != nil {
		writeDomainError(w, r, err)
		return domain.Stop{}, false
	}
	for _, s := range stops {
		if s.ID == stopID {
			return s, true
		}
	}
	writeDomainError(w, r, domain.ErrNotFound)
	return domain.Stop{}, false
}

// stopFromRequest decodes and validates the create payload. Defaults:
// stop_type waypoint, source manual.
func (h *StopHandler) stopFromRequest(w http.ResponseWriter, r *http.Request, planID uuid.UUID) (domain.Stop, bool) {
	var req dto.StopRequest
	if !decodeJSON(w, r, &req) {
		return domain.Stop{}, false
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "validation_error", "name is required")
		return domain.Stop{}, false
	}
	if req.StopType == "" {
		req.StopType = string(domain.StopTypeWaypoint)
	}
	if req.Source == "" {
		req.Source = string(domain.StopSourceManual)
	}

	stop := domain.Stop{
		PlanID:              planID,
		Name:                name,
		Address:             req.Address,
		Location:            domain.Location{Lat: req.Location.Lat, Lng: req.Location.Lng},
		PlaceID:             req.PlaceID,
		StopType:            domain.StopType(req.StopType),
		Source:              domain.StopSource(req.Source),
		ScheduledArrival:    req.ScheduledArrival,
		ScheduledDeparture:  req.ScheduledDeparture,
		StayDurationMinutes: req.StayDurationMinutes,
		Notes:               req.Notes,
		CalendarEventID:     req.CalendarEventID,
	}
	if err := stop.Validate(); err != nil {
		writeDomainError(w, r, err)
		return domain.Stop{}, false
	}
	return stop, true
}
