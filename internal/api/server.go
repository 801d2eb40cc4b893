// Package api provides the HTTP API server and handlers for the LiFocus server.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lifocus/lifocus-server/internal/ratelimit"
)

// HealthCheck probes one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

// Options tunes the HTTP layer.
type Options struct {
	AllowedOrigins []string
	// MaxUploadSize bounds multipart import bodies in bytes.
	MaxUploadSize int64
	// AuthRatePerMinute and AuthBurst limit /api/v1/auth requests per client IP.
	AuthRatePerMinute int
	AuthBurst         int
	// HealthChecks are reported by GET /health, keyed by component name.
	HealthChecks map[string]HealthCheck
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		AllowedOrigins:    []string{"*"},
		MaxUploadSize:     64 << 20,
		AuthRatePerMinute: 20,
		AuthBurst:         10,
	}
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services        *Services
	router          *chi.Mux
	api             huma.API
	opts            Options
	logger          *slog.Logger
	authRateLimiter *ratelimit.KeyedRateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, opts Options, logger *slog.Logger) *Server {
	defaults := DefaultOptions()
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = defaults.AllowedOrigins
	}
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = defaults.MaxUploadSize
	}
	if opts.AuthRatePerMinute <= 0 {
		opts.AuthRatePerMinute = defaults.AuthRatePerMinute
	}
	if opts.AuthBurst <= 0 {
		opts.AuthBurst = defaults.AuthBurst
	}

	s := &Server{
		services:        services,
		router:          chi.NewRouter(),
		opts:            opts,
		logger:          logger,
		authRateLimiter: ratelimit.New(float64(opts.AuthRatePerMinute)/60, opts.AuthBurst, 10*time.Minute),
	}

	s.setupMiddleware()

	s.api = humachi.New(s.router, newHumaConfig())
	RegisterErrorHandler(logger)

	s.setupRoutes()

	return s
}

// newHumaConfig returns the huma configuration shared by the server and tests.
func newHumaConfig() huma.Config {
	cfg := huma.DefaultConfig("LiFocus API", "1.0.0")
	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	cfg.Transformers = append(cfg.Transformers, EnvelopeTransformer)
	return cfg
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.authRateLimiter.Stop()
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", projectHeader},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(s.authRateLimit)
	s.router.Use(authMiddleware(s.services.Auth))
}

// authRateLimit applies the per-IP limiter to the auth endpoints only.
func (s *Server) authRateLimit(next http.Handler) http.Handler {
	limited := RateLimitMiddleware(s.authRateLimiter, s.logger)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/v1/auth/") {
			limited.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerProjectRoutes()
	s.registerNoteRoutes()
	s.registerExportRoutes()

	// Multipart upload stays on chi; huma would buffer the whole form.
	s.router.Post("/api/v1/notes/import", s.handleImportNotes)
}
