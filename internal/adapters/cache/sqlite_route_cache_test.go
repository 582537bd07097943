package cache

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"daytrip-itinerary-service/internal/ports"
)

func newTestSqliteCache(t *testing.T, ttl time.Duration) *SqliteRouteCache {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
	CREATE TABLE route_cache (
		cache_key TEXT PRIMARY KEY,
		distance_meters INTEGER NOT NULL,
		duration_seconds INTEGER NOT NULL,
		polyline TEXT NOT NULL,
		expires_at INTEGER NOT NULL
	);`)
	require.NoError(t, err)

	return NewSqliteRouteCache(db, ttl)
}

func TestSqliteRouteCachePutGet(t *testing.T) {
	c := newTestSqliteCache(t, time.Hour)
	ctx := context.Background()

	want := ports.RouteResult{DistanceMeters: 1200, DurationSeconds: 480, Polyline: "enc"}

	_, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Put(ctx, "k", want))

	got, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, want, got)
}

func TestSqliteRouteCacheExpiredEntryIsMiss(t *testing.T) {
	// A negative TTL writes entries that are already expired.
	c := newTestSqliteCache(t, -time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "k", ports.RouteResult{DistanceMeters: 1}))

	_, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestSqliteRouteCacheUpsertOverwrites(t *testing.T) {
	c := newTestSqliteCache(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "k", ports.RouteResult{DistanceMeters: 1, DurationSeconds: 1, Polyline: "a"}))
	want := ports.RouteResult{DistanceMeters: 2, DurationSeconds: 2, Polyline: "b"}
	require.NoError(t, c.Put(ctx, "k", want))

	got, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, want, got)
}
