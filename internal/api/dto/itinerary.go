package dto

import "github.com/google/uuid"

type GenerateRequest struct {
	Optimize bool `json:"optimize_order"`
}

type LegResponse struct {
	ID              uuid.UUID `json:"id"`
	FromStopID      uuid.UUID `json:"from_stop_id"`
	ToStopID        uuid.UUID `json:"to_stop_id"`
	Sequence        int       `json:"sequence"`
	TransportMode   string    `json:"transport_mode"`
	DistanceMeters  int       `json:"distance_meters"`
	DurationSeconds int       `json:"duration_seconds"`
	Polyline        string    `json:"polyline,omitempty"`
}

type ConflictResponse struct {
	Type    string      `json:"type"`
	StopIDs []uuid.UUID `json:"stop_ids"`
	Message string      `json:"message"`
}

type ItineraryResponse struct {
	Stops                []StopResponse     `json:"stops"`
	Legs                 []LegResponse      `json:"legs"`
	TotalDistanceMeters  int                `json:"total_distance_meters"`
	TotalDurationSeconds int                `json:"total_duration_seconds"`
	Conflicts            []ConflictResponse `json:"conflicts"`
}

type ReorderRequest struct {
	StopIDs []uuid.UUID `json:"stop_ids"`
}

type ReorderResponse struct {
	Stops []StopResponse `json:"stops"`
	Legs  []LegResponse  `json:"legs"`
}

// PreviewStopDTO is an ad-hoc preview stop. The id is optional and echoes
// client-side identity; only the location feeds routing.
type PreviewStopDTO struct {
	ID       *uuid.UUID  `json:"id,omitempty"`
	Location LocationDTO `json:"location"`
}

type PreviewRequest struct {
	Stops    []PreviewStopDTO `json:"stops"`
	Mode     string           `json:"transport_mode"`
	Optimize bool             `json:"optimize_order"`
}

type PreviewLegResponse struct {
	FromIndex       int    `json:"from_index"`
	ToIndex         int    `json:"to_index"`
	DistanceMeters  int    `json:"distance_meters"`
	DurationSeconds int    `json:"duration_seconds"`
	Polyline        string `json:"polyline,omitempty"`
}

type PreviewResponse struct {
	Legs                 []PreviewLegResponse `json:"legs"`
	Order                []int                `json:"optimized_order,omitempty"`
	TotalDistanceMeters  int                  `json:"total_distance_meters"`
	TotalDurationSeconds int                  `json:"total_duration_seconds"`
}

// ErrorDetail is the machine-readable error payload.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
