// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the itinerary service.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DBPath is the SQLite database file path. Defaults to "data/app.db".
	DBPath string

	// SeedPath is an optional JSON file of demo plans loaded at startup.
	// Empty disables seeding.
	SeedPath string

	// GoogleMapsAPIKey authenticates against the routing service. Required.
	GoogleMapsAPIKey string

	// RedisURL selects the Redis route cache when set; empty falls back to
	// DatabaseURL, then to the SQLite cache.
	RedisURL string

	// DatabaseURL selects the Postgres route cache when set and RedisURL is
	// not. cmd/dbtool creates the schema it needs.
	DatabaseURL string

	// LogLevel controls the minimum slog level: debug, info, warn, error.
	LogLevel string

	// CORSOrigins lists allowed cross-origin request origins.
	CORSOrigins []string

	// RouteCacheTTL is how long cached route metrics stay valid.
	RouteCacheTTL time.Duration

	// MaxInFlightLookups caps concurrent external distance lookups.
	MaxInFlightLookups int
}

// Load reads configuration from environment variables.
// Returns an error naming any required variable that is missing or invalid.
func Load() (Config, error) {
	cfg := Config{
		Port:        Get("PORT", "8080"),
		DBPath:      Get("DB_PATH", "data/app.db"),
		SeedPath:    os.Getenv("SEED_PATH"),
		RedisURL:    os.Getenv("REDIS_URL"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    Get("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(Get("CORS_ORIGINS", "http://localhost:5173")),
	}

	cfg.GoogleMapsAPIKey = strings.TrimSpace(os.Getenv("GOOGLE_MAPS_API_KEY"))
	if cfg.GoogleMapsAPIKey == "" {
		return Config{}, fmt.Errorf("required environment variable not set: GOOGLE_MAPS_API_KEY")
	}

	ttl, err := time.ParseDuration(Get("ROUTE_CACHE_TTL", "24h"))
	if err != nil || ttl <= 0 {
		return Config{}, fmt.Errorf("ROUTE_CACHE_TTL must be a positive duration: %q", Get("ROUTE_CACHE_TTL", "24h"))
	}
	cfg.RouteCacheTTL = ttl

	inflight, err := strconv.Atoi(Get("MAX_INFLIGHT_LOOKUPS", "6"))
	if err != nil || inflight < 1 {
		return Config{}, fmt.Errorf("MAX_INFLIGHT_LOOKUPS must be a positive integer: %q", Get("MAX_INFLIGHT_LOOKUPS", "6"))
	}
	cfg.MaxInFlightLookups = inflight

	return cfg, nil
}

// Get returns the value of the environment variable named by key,
// or fallback if the variable is unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
