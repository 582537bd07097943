package distance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"daytrip-itinerary-service/internal/adapters/cache"
	"daytrip-itinerary-service/internal/domain"
	"daytrip-itinerary-service/internal/platform/obs"
	"daytrip-itinerary-service/internal/ports"

	"github.com/sethvargo/go-retry"
	"googlemaps.github.io/maps"
)

// RouteCache is the persistence contract the provider uses to avoid repeated
// external lookups. Implementations live in adapters/cache.
type RouteCache interface {
	Get(ctx context.Context, key string) (ports.RouteResult, bool, error)
	Put(ctx context.Context, key string, r ports.RouteResult) error
}

// GoogleDistanceProvider implements DistanceProvider and
// DistanceMatrixProvider on top of the Google Maps Directions and Distance
// Matrix APIs.
//
// It coordinates:
//   - Route-metric caching keyed by rounded coordinates and mode
//   - External API calls with bounded exponential backoff
//
// The provider is safe for concurrent use.
type GoogleDistanceProvider struct {
	client     *maps.Client
	routeCache RouteCache
}

func NewGoogleDistanceProvider(apiKey string, routeCache RouteCache) (*GoogleDistanceProvider, error) {
	if apiKey == "" {
		return nil, errors.New("google maps api key is empty")
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &GoogleDistanceProvider{client: client, routeCache: routeCache}, nil
}

// Route returns travel metrics and an encoded polyline for one directed leg.
// Cached results are served without an external call.
func (p *GoogleDistanceProvider) Route(ctx context.Context, from, to domain.Location, mode domain.TransportMode) (_ ports.RouteResult, err error) {
	defer obs.Time(ctx, "google.Route")(&err)

	if err := from.Validate(); err != nil {
		return ports.RouteResult{}, fmt.Errorf("google route: origin: %w", err)
	}
	if err := to.Validate(); err != nil {
		return ports.RouteResult{}, fmt.Errorf("google route: destination: %w", err)
	}

	key := cache.Key(from, to, mode)
	if p.routeCache != nil {
		r, hit, err := p.routeCache.Get(ctx, key)
		if err != nil {
			return ports.RouteResult{}, fmt.Errorf("google route: read cache: %w", err)
		}
		if hit {
			return r, nil
		}
	}

	var routes []maps.Route
	err = p.withBackoff(ctx, func(ctx context.Context) error {
		var dErr error
		routes, _, dErr = p.client.Directions(ctx, &maps.DirectionsRequest{
			Origin:      latLng(from),
			Destination: latLng(to),
			Mode:        travelMode(mode),
		})
		return dErr
	})
	if err != nil {
		return ports.RouteResult{}, fmt.Errorf("google route %s -> %s: %w: %v",
			from.Key(), to.Key(), domain.ErrRoutingUnavailable, err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return ports.RouteResult{}, fmt.Errorf("google route %s -> %s: %w: no route returned",
			from.Key(), to.Key(), domain.ErrRoutingUnavailable)
	}

	leg := routes[0].Legs[0]
	result := ports.RouteResult{
		DistanceMeters:  leg.Distance.Meters,
		DurationSeconds: int(leg.Duration / time.Second),
		Polyline:        routes[0].OverviewPolyline.Points,
	}

	if p.routeCache != nil {
		if err := p.routeCache.Put(ctx, key, result); err != nil {
			slog.WarnContext(ctx, "route cache write failed", "key", key, "error", err)
		}
	}
	return result, nil
}

// Matrix returns all-pairs travel metrics in a single Distance Matrix call.
// Matrix cells feed the sequencer and carry no polyline.
func (p *GoogleDistanceProvider) Matrix(ctx context.Context, locations []domain.Location, mode domain.TransportMode) (_ [][]ports.MatrixCell, err error) {
	defer obs.Time(ctx, "google.Matrix")(&err)

	if len(locations) == 0 {
		return [][]ports.MatrixCell{}, nil
	}
	addrs := make([]string, len(locations))
	for i, l := range locations {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("google matrix: location %d: %w", i, err)
		}
		addrs[i] = latLng(l)
	}

	var resp *maps.DistanceMatrixResponse
	err = p.withBackoff(ctx, func(ctx context.Context) error {
		var mErr error
		resp, mErr = p.client.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
			Origins:      addrs,
			Destinations: addrs,
			Mode:         travelMode(mode),
		})
		return mErr
	})
	if err != nil {
		return nil, fmt.Errorf("google matrix: %w: %v", domain.ErrRoutingUnavailable, err)
	}
	if len(resp.Rows) != len(locations) {
		return nil, fmt.Errorf("google matrix: %w: got %d rows for %d locations",
			domain.ErrRoutingUnavailable, len(resp.Rows), len(locations))
	}

	out := make([][]ports.MatrixCell, len(locations))
	for i, row := range resp.Rows {
		if len(row.Elements) != len(locations) {
			return nil, fmt.Errorf("google matrix: %w: row %d has %d elements for %d locations",
				domain.ErrRoutingUnavailable, i, len(row.Elements), len(locations))
		}
		out[i] = make([]ports.MatrixCell, len(locations))
		for j, el := range row.Elements {
			if i == j {
				continue
			}
			if el.Status != "OK" {
				return nil, fmt.Errorf("google matrix: %w: element %d,%d status %s",
					domain.ErrRoutingUnavailable, i, j, el.Status)
			}
			out[i][j] = ports.MatrixCell{
				DistanceMeters:  el.Distance.Meters,
				DurationSeconds: int(el.Duration / time.Second),
			}
		}
	}
	return out, nil
}

// withBackoff retries transient failures with bounded exponential backoff
// while respecting context cancellation. Cancelled contexts stop retrying
// immediately.
func (p *GoogleDistanceProvider) withBackoff(ctx context.Context, call func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(3, retry.NewExponential(200*time.Millisecond))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		if err := call(ctx); err != nil {
			if ctx.Err() != nil {
				return err
			}
			return retry.RetryableError(err)
		}
		return nil
	})
}

func latLng(l domain.Location) string {
	return fmt.Sprintf("%f,%f", l.Lat, l.Lng)
}

func travelMode(mode domain.TransportMode) maps.Mode {
	switch mode {
	case domain.TransportWalking:
		return maps.TravelModeWalking
	case domain.TransportTransit:
		return maps.TravelModeTransit
	case domain.TransportBicycling:
		return maps.TravelModeBicycling
	default:
		return maps.TravelModeDriving
	}
}
