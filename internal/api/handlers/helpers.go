package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"daytrip-itinerary-service/internal/api/dto"
	"daytrip-itinerary-service/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "encode response failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, r, status, dto.ErrorResponse{Error: dto.ErrorDetail{Code: code, Message: msg}})
}

// writeDomainError maps service and repository errors onto the HTTP error
// contract:
//
//	not found               -> 404 not_found
//	validation failure      -> 422 validation_error
//	sequencing contradiction-> 422 sequencing_error (with offending stop ids)
//	routing unavailable     -> 502 routing_unavailable
//	generation in progress  -> 409 generation_in_progress
//	anything else           -> 500 internal_error
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var seqErr *domain.SequencingError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", "resource not found")
	case errors.As(err, &seqErr):
		writeJSON(w, r, http.StatusUnprocessableEntity, dto.ErrorResponse{Error: dto.ErrorDetail{
			Code:    "sequencing_error",
			Message: seqErr.Reason,
			Details: map[string]any{"stop_ids": seqErr.StopIDs},
		}})
	case errors.Is(err, domain.ErrValidation):
		writeError(w, r, http.StatusUnprocessableEntity, "validation_error", err.Error())
	case errors.Is(err, domain.ErrRoutingUnavailable):
		writeError(w, r, http.StatusBadGateway, "routing_unavailable", "routing service unavailable")
	case errors.Is(err, domain.ErrGenerationInProgress):
		writeError(w, r, http.StatusConflict, "generation_in_progress", "generation already in progress for this plan")
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// decodeJSON parses the request body into v, rejecting unknown fields and
// trailing content.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "bad_request", "body must contain only one JSON object")
		return false
	}
	return true
}

// decodeJSONOrEmpty is decodeJSON for endpoints whose body is optional. An
// empty body leaves v at its zero value, so clients that omit the body get
// the defaults.
func decodeJSONOrEmpty(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		writeError(w, r, http.StatusBadRequest, "bad_request", "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "bad_request", "body must contain only one JSON object")
		return false
	}
	return true
}

// pathUUID parses a uuid path parameter; a malformed id is a 404, matching
// the behavior for ids that parse but match nothing.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, r, http.StatusNotFound, "not_found", "resource not found")
		return uuid.Nil, false
	}
	return id, true
}
