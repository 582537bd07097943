package services

import (
	"context"
	"fmt"

	"daytrip-itinerary-service/internal/domain"
	"daytrip-itinerary-service/internal/ports"

	"golang.org/x/sync/errgroup"
)

// buildDurationMatrix returns all-pairs travel durations (seconds) for the
// given stops. A single matrix call is preferred when the provider supports
// it; otherwise the pairs are fetched individually with bounded concurrency.
func buildDurationMatrix(
	ctx context.Context,
	provider ports.DistanceProvider,
	stops []domain.Stop,
	mode domain.TransportMode,
	maxInFlight int,
) ([][]int, error) {
	locs := make([]domain.Location, len(stops))
	for i, s := range stops {
		locs[i] = s.Location
	}

	if mp, ok := provider.(ports.DistanceMatrixProvider); ok {
		cells, err := mp.Matrix(ctx, locs, mode)
		if err != nil {
			return nil, fmt.Errorf("build duration matrix: %w", err)
		}
		if len(cells) != len(locs) {
			return nil, fmt.Errorf("build duration matrix: got %d rows for %d locations", len(cells), len(locs))
		}
		out := make([][]int, len(cells))
		for i, row := range cells {
			if len(row) != len(locs) {
				return nil, fmt.Errorf("build duration matrix: row %d has %d cells for %d locations", i, len(row), len(locs))
			}
			out[i] = make([]int, len(row))
			for j, c := range row {
				out[i][j] = c.DurationSeconds
			}
		}
		return out, nil
	}

	out := make([][]int, len(locs))
	for i := range out {
		out[i] = make([]int, len(locs))
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxInFlight)
	for i := range locs {
		for j := range locs {
			if i == j {
				continue
			}
			i, j := i, j
			eg.Go(func() error {
				r, err := provider.Route(ctx, locs[i], locs[j], mode)
				if err != nil {
					return fmt.Errorf("build duration matrix: pair %d -> %d: %w", i, j, err)
				}
				out[i][j] = r.DurationSeconds
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
