// Package cache provides persistent caches for route metrics keyed by
// rounded coordinates and transport mode. Entries are immutable once stored
// and expire after a TTL; writes are idempotent upserts, so concurrent
// duplicate fills are harmless.
package cache

import "daytrip-itinerary-service/internal/domain"

// Key builds the cache key for a directed route lookup. Coordinates are
// rounded to 1e-5 degrees (see domain.Location.Key) so jittered floats map
// to the same entry.
func Key(from, to domain.Location, mode domain.TransportMode) string {
	return from.Key() + "|" + to.Key() + "|" + string(mode)
}
