package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/loanticker/internal/adapter/http/handler"
	"github.com/iho/loanticker/internal/adapter/http/middleware"
	"github.com/iho/loanticker/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	LoanHandler      *handler.LoanHandler
	PriceHandler     *handler.PriceHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	HTTPMetrics      *middleware.HTTPMetrics
	MetricsHandler   http.Handler
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.HTTPMetrics != nil {
		r.Use(cfg.HTTPMetrics.Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/loans", func(r chi.Router) {
			if cfg.IdempotencyStore != nil {
				r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger).Wrap)
			}

			r.Get("/", cfg.LoanHandler.List)
			r.Post("/", cfg.LoanHandler.Create)
			r.Get("/summary", cfg.LoanHandler.Summary)
			r.Get("/{id}", cfg.LoanHandler.Get)
			r.Put("/{id}", cfg.LoanHandler.Update)
			r.Delete("/{id}", cfg.LoanHandler.Delete)
			r.Patch("/{id}/status", cfg.LoanHandler.SetStatus)
		})

		if cfg.PriceHandler != nil {
			r.Route("/prices", func(r chi.Router) {
				r.Get("/", cfg.PriceHandler.List)
				r.Get("/ws", cfg.PriceHandler.Stream)
				r.Get("/{symbol}", cfg.PriceHandler.Get)
			})
		}
	})

	return r
}
