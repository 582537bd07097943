package distance

import (
	"context"
	"fmt"
	"sync"

	"daytrip-itinerary-service/internal/adapters/cache"
	"daytrip-itinerary-service/internal/domain"
	"daytrip-itinerary-service/internal/ports"
)

// MockDistanceProvider serves canned route metrics from an in-memory table.
// Tests register directed pairs with SetRoute and may force failures with
// FailRoute. The zero value is unusable; use NewMockDistanceProvider.
type MockDistanceProvider struct {
	mu     sync.Mutex
	routes map[string]ports.RouteResult
	fails  map[string]error
	calls  int
}

func NewMockDistanceProvider() *MockDistanceProvider {
	return &MockDistanceProvider{
		routes: make(map[string]ports.RouteResult),
		fails:  make(map[string]error),
	}
}

// SetRoute registers metrics for the directed pair from -> to.
func (m *MockDistanceProvider) SetRoute(from, to domain.Location, mode domain.TransportMode, r ports.RouteResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[cache.Key(from, to, mode)] = r
}

// FailRoute makes lookups for the directed pair from -> to return err.
func (m *MockDistanceProvider) FailRoute(from, to domain.Location, mode domain.TransportMode, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fails[cache.Key(from, to, mode)] = err
}

// Calls reports how many route lookups were made, including matrix cells.
func (m *MockDistanceProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockDistanceProvider) Route(ctx context.Context, from, to domain.Location, mode domain.TransportMode) (ports.RouteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookup(from, to, mode)
}

func (m *MockDistanceProvider) Matrix(ctx context.Context, locations []domain.Location, mode domain.TransportMode) ([][]ports.MatrixCell, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([][]ports.MatrixCell, len(locations))
	for i := range locations {
		out[i] = make([]ports.MatrixCell, len(locations))
		for j := range locations {
			if i == j {
				continue
			}
			r, err := m.lookup(locations[i], locations[j], mode)
			if err != nil {
				return nil, err
			}
			out[i][j] = ports.MatrixCell{
				DistanceMeters:  r.DistanceMeters,
				DurationSeconds: r.DurationSeconds,
			}
		}
	}
	return out, nil
}

// lookup requires m.mu to be held.
func (m *MockDistanceProvider) lookup(from, to domain.Location, mode domain.TransportMode) (ports.RouteResult, error) {
	m.calls++
	key := cache.Key(from, to, mode)
	if err, ok := m.fails[key]; ok {
		return ports.RouteResult{}, err
	}
	if r, ok := m.routes[key]; ok {
		return r, nil
	}
	return ports.RouteResult{}, fmt.Errorf("mock route %s: %w", key, domain.ErrRoutingUnavailable)
}
