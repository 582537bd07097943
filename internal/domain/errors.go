package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned when the requested plan or stop does not exist.
// Handlers map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails a business rule.
// Handlers map this to HTTP 422.
var ErrValidation = errors.New("validation error")

// ErrRoutingUnavailable is returned when the external routing service failed
// or timed out after retries. Generation is all-or-nothing: no partial
// itinerary accompanies this error. Handlers map this to HTTP 502.
var ErrRoutingUnavailable = errors.New("routing unavailable")

// ErrGenerationInProgress is returned when a generation or accept request
// arrives while another one already holds the plan's lease. The request is
// rejected immediately rather than queued. Handlers map this to HTTP 409.
var ErrGenerationInProgress = errors.New("generation already in progress")

// SequencingError reports contradictory or unsatisfiable ordering
// constraints, e.g. two stops both marked origin. It carries the offending
// stop ids so the caller can fix the input; it is never retried.
type SequencingError struct {
	Reason  string
	StopIDs []uuid.UUID
}

func (e *SequencingError) Error() string {
	return fmt.Sprintf("sequencing: %s (stops %v)", e.Reason, e.StopIDs)
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
