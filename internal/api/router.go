package api

import (
	"log/slog"
	"net/http"

	"daytrip-itinerary-service/internal/api/handlers"
	"daytrip-itinerary-service/internal/ports"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root: handlers stay unaware of
// concrete adapters.
func NewRouter(repo ports.PlanRepository, itineraries handlers.ItineraryService, logger *slog.Logger, corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(newSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)

	if len(corsOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete},
			AllowedHeaders: []string{"Content-Type"},
		}).Handler)
	}

	planHandler := &handlers.PlanHandler{Repo: repo}
	stopHandler := &handlers.StopHandler{Repo: repo}
	itineraryHandler := &handlers.ItineraryHandler{Service: itineraries}

	r.Get("/health", handlers.Health)

	r.Route("/day-plans", func(r chi.Router) {
		r.Get("/", planHandler.List)
		r.Post("/", planHandler.Create)

		r.Route("/{planID}", func(r chi.Router) {
			r.Get("/", planHandler.Get)
			r.Patch("/", planHandler.Update)
			r.Delete("/", planHandler.Delete)

			r.Get("/stops", stopHandler.List)
			r.Post("/stops", stopHandler.Create)
			r.Post("/stops/reorder", itineraryHandler.Reorder)
			r.Patch("/stops/{stopID}", stopHandler.Update)
			r.Delete("/stops/{stopID}", stopHandler.Delete)

			r.Post("/generate", itineraryHandler.Generate)
			r.Post("/accept", itineraryHandler.Accept)
		})
	})

	r.Post("/routes/preview", itineraryHandler.Preview)

	return r
}
