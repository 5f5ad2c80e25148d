package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/albapepper/league-data/internal/api/auth"
	"github.com/albapepper/league-data/internal/api/handler"
	"github.com/albapepper/league-data/internal/config"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(h *handler.Handler, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Authorization", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "Location", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Routes ---

	r.Get("/", h.Root)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/season", h.GetActiveSeason)
		r.Get("/seasons", h.ListSeasons)

		r.Route("/seasons/{seasonID}", func(r chi.Router) {
			r.Get("/standings", h.GetStandings)

			r.Get("/leaders/players", h.GetPlayerLeaders)
			r.Get("/leaders/players/{category}", h.GetPlayerCategoryLeaders)
			r.Get("/leaders/teams", h.GetTeamLeaders)
			r.Get("/leaders/teams/{category}", h.GetTeamCategoryLeaders)

			r.Get("/teams/{teamID}", h.GetTeam)
			r.Get("/players", h.SearchPlayers)
			r.Get("/players/{playerID}", h.GetPlayer)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.Admin(cfg.AdminJWTSecret))
			r.Post("/seasons/{seasonID}/recompute", h.TriggerRecompute)
			r.Get("/jobs", h.ListJobs)
			r.Get("/jobs/stream", h.StreamJobs)
			r.Get("/jobs/{jobID}", h.GetJob)
		})
	})

	return r
}
