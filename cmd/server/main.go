// Package main is the entry point for the itinerary API server.
// Its sole responsibility is wiring dependencies together and starting the
// server. No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"daytrip-itinerary-service/internal/adapters/cache"
	"daytrip-itinerary-service/internal/adapters/distance"
	"daytrip-itinerary-service/internal/adapters/repositories"
	"daytrip-itinerary-service/internal/api"
	"daytrip-itinerary-service/internal/config"
	"daytrip-itinerary-service/internal/platform/db"
	"daytrip-itinerary-service/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	sqliteDB, err := openDB(cfg.DBPath)
	if err != nil {
		slog.Error("database open failed", "error", err)
		os.Exit(1)
	}
	defer sqliteDB.Close()

	if err := repositories.InitSchema(sqliteDB); err != nil {
		slog.Error("schema init failed", "error", err)
		os.Exit(1)
	}
	if cfg.SeedPath != "" {
		if err := repositories.SeedFromJSON(sqliteDB, cfg.SeedPath); err != nil {
			slog.Error("seeding failed", "error", err)
			os.Exit(1)
		}
	}

	routeCache, err := selectRouteCache(cfg, sqliteDB)
	if err != nil {
		slog.Error("route cache init failed", "error", err)
		os.Exit(1)
	}

	provider, err := distance.NewGoogleDistanceProvider(cfg.GoogleMapsAPIKey, routeCache)
	if err != nil {
		slog.Error("distance provider init failed", "error", err)
		os.Exit(1)
	}

	repo := repositories.NewSqlitePlanRepository(sqliteDB)
	generator := services.NewGenerator(repo, provider, cfg.MaxInFlightLookups)
	router := api.NewRouter(repo, generator, logger, cfg.CORSOrigins)

	// Write timeout allows for cold-cache generation of a full plan
	// (external API latency times number of legs).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func openDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %q: %w", dbPath, err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("verify sqlite connection to %q: %w", dbPath, err)
	}
	return db, nil
}

// selectRouteCache prefers Redis, then Postgres, and falls back to the
// SQLite cache sharing the application database.
func selectRouteCache(cfg config.Config, sqliteDB *sql.DB) (distance.RouteCache, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		slog.Info("using redis route cache")
		return cache.NewRedisRouteCache(client, cfg.RouteCacheTTL), nil
	}

	if cfg.DatabaseURL != "" {
		pg, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		slog.Info("using postgres route cache")
		return cache.NewSQLRouteCache(pg, cfg.RouteCacheTTL), nil
	}

	return cache.NewSqliteRouteCache(sqliteDB, cfg.RouteCacheTTL), nil
}
