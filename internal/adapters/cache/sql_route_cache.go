package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"daytrip-itinerary-service/internal/platform/obs"
	"daytrip-itinerary-service/internal/ports"
)

// SQLRouteCache is a Postgres-backed cache for route metrics.
type SQLRouteCache struct {
	DB  *sql.DB
	TTL time.Duration
}

func NewSQLRouteCache(db *sql.DB, ttl time.Duration) *SQLRouteCache {
	return &SQLRouteCache{DB: db, TTL: ttl}
}

// Get returns the cached result for key, reporting a miss for absent or
// expired entries.
func (c *SQLRouteCache) Get(ctx context.Context, key string) (_ ports.RouteResult, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.Get")(&err)

	if c.DB == nil {
		return ports.RouteResult{}, false, errors.New("route cache: db is nil")
	}
	if key == "" {
		return ports.RouteResult{}, false, errors.New("get route cache: key must not be empty")
	}

	q := `
	SELECT distance_meters, duration_seconds, polyline
	FROM route_cache
	WHERE cache_key = $1 AND expires_at > now();
	`

	var r ports.RouteResult
	err = c.DB.QueryRowContext(ctx, q, key).
		Scan(&r.DistanceMeters, &r.DurationSeconds, &r.Polyline)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.RouteResult{}, false, nil
	}
	if err != nil {
		return ports.RouteResult{}, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}
	return r, true, nil
}

// Put upserts a route result under key with a fresh expiry.
func (c *SQLRouteCache) Put(ctx context.Context, key string, r ports.RouteResult) error {
	if c.DB == nil {
		return errors.New("route cache: db is nil")
	}
	if key == "" {
		return errors.New("insert route cache: key must not be empty")
	}

	q := `
	INSERT INTO route_cache (cache_key, distance_meters, duration_seconds, polyline, expires_at)
	VALUES ($1, $2, $3, $4, now() + $5::interval)
	ON CONFLICT (cache_key) DO UPDATE
	SET distance_meters = EXCLUDED.distance_meters,
		duration_seconds = EXCLUDED.duration_seconds,
		polyline = EXCLUDED.polyline,
		expires_at = EXCLUDED.expires_at;
	`

	interval := fmt.Sprintf("%d seconds", int(c.TTL.Seconds()))
	if _, err := c.DB.ExecContext(ctx, q, key, r.DistanceMeters, r.DurationSeconds, r.Polyline, interval); err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}
	return nil
}
