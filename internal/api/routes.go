package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lei/test-results/internal/view"
)

// NewRouter creates and configures the HTTP router. HTML pages are
// mounted only when pages is non-nil.
func NewRouter(handlers *Handlers, loggingMiddleware *LoggingMiddleware, pages *view.Pages) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - ORDER MATTERS!
	r.Use(middleware.RequestID)      // Generate request ID first
	r.Use(middleware.RealIP)         // Extract real IP
	r.Use(loggingMiddleware.Handler) // Add logger to context with request ID
	r.Use(CORSHeaders)               // Before Recoverer so 500s carry CORS headers
	r.Use(middleware.Recoverer)      // Panic recovery

	// Preflight
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", handlers.Health)
	r.Get("/health/ready", handlers.Ready)

	r.Route("/test-runs", func(r chi.Router) {
		r.Post("/", handlers.CreateTestRun)
		r.Get("/", handlers.ListTestRuns)
	})

	if pages != nil {
		r.Get("/", pages.Dashboard)
		r.Get("/test-run/{id}", pages.Detail)
	}

	return r
}
