package http

import (
	"log/slog"

	"github.com/cmlabs-hris/production-dashboard-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/production-dashboard-go/internal/pkg/token"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// NewRouter wires the dashboard API. A nil tokenService leaves the API open.
func NewRouter(logger *slog.Logger, allowedOrigins []string, tokenService token.Service, dashboardHandler DashboardHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if tokenService != nil {
				r.Use(jwtauth.Verifier(tokenService.JWTAuth()))
				r.Use(middleware.TokenRequired(tokenService.JWTAuth()))
			}

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/", dashboardHandler.GetDashboard)
				r.Get("/filters", dashboardHandler.GetFilterOptions)
			})
		})
	})

	return r
}
