package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"daytrip-itinerary-service/internal/ports"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "route:"

// RedisRouteCache stores route metrics in Redis with a native TTL, for
// deployments where several service instances share one cache.
type RedisRouteCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisRouteCache(client *redis.Client, ttl time.Duration) *RedisRouteCache {
	return &RedisRouteCache{Client: client, TTL: ttl}
}

type redisRouteEntry struct {
	DistanceMeters  int    `json:"distance_meters"`
	DurationSeconds int    `json:"duration_seconds"`
	Polyline        string `json:"polyline"`
}

// Get returns the cached result for key; expired entries are evicted by
// Redis itself and read as misses.
func (c *RedisRouteCache) Get(ctx context.Context, key string) (ports.RouteResult, bool, error) {
	if c.Client == nil {
		return ports.RouteResult{}, false, errors.New("route cache: redis client is nil")
	}
	if key == "" {
		return ports.RouteResult{}, false, errors.New("get route cache: key must not be empty")
	}

	raw, err := c.Client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.RouteResult{}, false, nil
	}
	if err != nil {
		return ports.RouteResult{}, false, fmt.Errorf("get route cache key=%q: %w", key, err)
	}

	var e redisRouteEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return ports.RouteResult{}, false, fmt.Errorf("get route cache key=%q: decode entry: %w", key, err)
	}
	return ports.RouteResult{
		DistanceMeters:  e.DistanceMeters,
		DurationSeconds: e.DurationSeconds,
		Polyline:        e.Polyline,
	}, true, nil
}

// Put stores a route result under key with the configured TTL.
func (c *RedisRouteCache) Put(ctx context.Context, key string, r ports.RouteResult) error {
	if c.Client == nil {
		return errors.New("route cache: redis client is nil")
	}
	if key == "" {
		return errors.New("insert route cache: key must not be empty")
	}

	raw, err := json.Marshal(redisRouteEntry{
		DistanceMeters:  r.DistanceMeters,
		DurationSeconds: r.DurationSeconds,
		Polyline:        r.Polyline,
	})
	if err != nil {
		return fmt.Errorf("insert route cache key=%q: encode entry: %w", key, err)
	}

	if err := c.Client.Set(ctx, redisKeyPrefix+key, raw, c.TTL).Err(); err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}
	return nil
}
