package handlers

import (
	"context"
	"net/http"

	"daytrip-itinerary-service/internal/api/dto"
	"daytrip-itinerary-service/internal/domain"
	"daytrip-itinerary-service/internal/services"

	"github.com/google/uuid"
)

// ItineraryService defines the generation operations the handler depends on.
// Defining the interface on the consumer side lets handler tests inject a
// fake without a routing provider or database.
type ItineraryService interface {
	Generate(ctx context.Context, planID uuid.UUID, optimize bool) (*domain.GeneratedItinerary, error)
	Accept(ctx context.Context, planID uuid.UUID, optimize bool) (*domain.GeneratedItinerary, error)
	Reorder(ctx context.Context, planID uuid.UUID, stopIDs []uuid.UUID) ([]domain.Stop, []domain.Leg, error)
	Preview(ctx context.Context, locations []domain.Location, mode domain.TransportMode, optimize bool) (*services.PreviewResult, error)
}

// ItineraryHandler exposes itinerary generation, acceptance, reorder, and
// ad-hoc route preview endpoints.
type ItineraryHandler struct {
	Service ItineraryService
}

// Generate computes an itinerary for the plan without persisting it.
func (h *ItineraryHandler) Generate(w http.ResponseWriter, r *http.Request) {
	planID, ok := pathUUID(w, r, "planID")
	if !ok {
		return
	}
	var req dto.GenerateRequest
	if !decodeJSONOrEmpty(w, r, &req) {
		return
	}

	it, err := h.Service.Generate(r.Context(), planID, req.Optimize)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toItineraryResponse(it))
}

// Accept computes an itinerary and commits its stop order and legs.
func (h *ItineraryHandler) Accept(w http.ResponseWriter, r *http.Request) {
	planID, ok := pathUUID(w, r, "planID")
	if !ok {
		return
	}
	var req dto.GenerateRequest
	if !decodeJSONOrEmpty(w, r, &req) {
		return
	}

	it, err := h.Service.Accept(r.Context(), planID, req.Optimize)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toItineraryResponse(it))
}

// Reorder applies a caller-chosen stop ordering and recomputes the legs.
func (h *ItineraryHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	planID, ok := pathUUID(w, r, "planID")
	if !ok {
		return
	}
	var req dto.ReorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.StopIDs) == 0 {
		writeError(w, r, http.StatusUnprocessableEntity, "validation_error", "stop_ids is required")
		return
	}

	stops, legs, err := h.Service.Reorder(r.Context(), planID, req.StopIDs)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.ReorderResponse{
		Stops: toStopResponses(stops),
		Legs:  toLegResponses(legs),
	})
}

// Preview computes routes for an ad-hoc list of locations without touching
// any stored plan.
func (h *ItineraryHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req dto.PreviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Stops) < 2 {
		writeError(w, r, http.StatusUnprocessableEntity, "validation_error", "at least two stops are required")
		return
	}
	mode := domain.TransportMode(req.Mode)
	if req.Mode == "" {
		mode = domain.TransportDriving
	}
	if !mode.Valid() {
		writeError(w, r, http.StatusUnprocessableEntity, "validation_error", "invalid transport_mode")
		return
	}

	locations := make([]domain.Location, len(req.Stops))
	for i, s := range req.Stops {
		locations[i] = domain.Location{Lat: s.Location.Lat, Lng: s.Location.Lng}
	}

	res, err := h.Service.Preview(r.Context(), locations, mode, req.Optimize)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toPreviewResponse(res))
}
