package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"daytrip-itinerary-service/internal/ports"
)

// SQLite-backed cache for route metrics. Keys are expected to be built with
// Key (already rounded and mode-qualified) by the caller.
type SqliteRouteCache struct {
	DB  *sql.DB
	TTL time.Duration
}

func NewSqliteRouteCache(db *sql.DB, ttl time.Duration) *SqliteRouteCache {
	return &SqliteRouteCache{DB: db, TTL: ttl}
}

// Get returns the cached result for key, reporting a miss for absent or
// expired entries.
func (c *SqliteRouteCache) Get(ctx context.Context, key string) (ports.RouteResult, bool, error) {
	if c.DB == nil {
		return ports.RouteResult{}, false, errors.New("route cache: db is nil")
	}
	if key == "" {
		return ports.RouteResult{}, false, errors.New("get route cache: key must not be empty")
	}

	q := `
	SELECT distance_meters, duration_seconds, polyline
	FROM route_cache
	WHERE cache_key = ? AND expires_at > ?;
	`

	var r ports.RouteResult
	err := c.DB.QueryRowContext(ctx, q, key, time.Now().Unix()).
		Scan(&r.DistanceMeters, &r.DurationSeconds, &r.Polyline)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.RouteResult{}, false, nil
	}
	if err != nil {
		return ports.RouteResult{}, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}
	return r, true, nil
}

// Put stores a route result under key with a fresh expiry.
func (c *SqliteRouteCache) Put(ctx context.Context, key string, r ports.RouteResult) error {
	if c.DB == nil {
		return errors.New("route cache: db is nil")
	}
	if key == "" {
		return errors.New("insert route cache: key must not be empty")
	}

	q := `
	INSERT OR REPLACE INTO route_cache (
		cache_key,
		distance_meters,
		duration_seconds,
		polyline,
		expires_at
	)
	VALUES (?, ?, ?, ?, ?);
	`

	expires := time.Now().Add(c.TTL).Unix()
	if _, err := c.DB.ExecContext(ctx, q, key, r.DistanceMeters, r.DurationSeconds, r.Polyline, expires); err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}
	return nil
}
