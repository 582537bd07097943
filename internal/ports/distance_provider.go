package ports

import (
	"context"

	"daytrip-itinerary-service/internal/domain"
)

// RouteResult is the travel metric set for one directed leg.
type RouteResult struct {
	DistanceMeters  int
	DurationSeconds int
	Polyline        string
}

// MatrixCell is a distance/duration entry in an all-pairs travel matrix.
// Matrix lookups carry no polyline; they exist to feed the sequencer.
type MatrixCell struct {
	DistanceMeters  int
	DurationSeconds int
}

// Contract for retrieving travel metrics between two locations.
// Implementations wrap an external routing service and must return an error
// wrapping domain.ErrRoutingUnavailable when that service fails or times out.
type DistanceProvider interface {
	// Route returns distance, estimated duration, and an encoded polyline
	// for travel from one location to another.
	Route(ctx context.Context, from, to domain.Location, mode domain.TransportMode) (RouteResult, error)
}

// Optional extension of DistanceProvider that supports all-pairs lookups
// in a single external call.
type DistanceMatrixProvider interface {
	DistanceProvider
	// Matrix returns an NxN matrix of travel metrics between the given
	// locations; cell [i][j] is travel from locations[i] to locations[j]
	// and the diagonal is zero.
	Matrix(ctx context.Context, locations []domain.Location, mode domain.TransportMode) ([][]MatrixCell, error)
}
