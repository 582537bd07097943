package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GOOGLE_MAPS_API_KEY", "test-key")
	t.Setenv("REDIS_URL", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "data/app.db", cfg.DBPath)
	assert.Equal(t, 24*time.Hour, cfg.RouteCacheTTL)
	assert.Equal(t, 6, cfg.MaxInFlightLookups)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("GOOGLE_MAPS_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_MAPS_API_KEY")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GOOGLE_MAPS_API_KEY", "test-key")
	t.Setenv("PORT", "9999")
	t.Setenv("ROUTE_CACHE_TTL", "1h")
	t.Setenv("MAX_INFLIGHT_LOOKUPS", "3")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, time.Hour, cfg.RouteCacheTTL)
	assert.Equal(t, 3, cfg.MaxInFlightLookups)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadRejectsBadTTL(t *testing.T) {
	t.Setenv("GOOGLE_MAPS_API_KEY", "test-key")
	t.Setenv("ROUTE_CACHE_TTL", "sometimes")

	_, err := Load()
	assert.Error(t, err)
}
