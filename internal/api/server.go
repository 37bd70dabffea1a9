// Package api provides the HTTP API server and handlers for the Secret Shows backend.
package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/secretshows/secretshows-server/internal/catalog"
	"github.com/secretshows/secretshows-server/internal/clock"
	"github.com/secretshows/secretshows-server/internal/config"
	"github.com/secretshows/secretshows-server/internal/logger"
	"github.com/secretshows/secretshows-server/internal/metrics"
	"github.com/secretshows/secretshows-server/internal/ratelimit"
	"github.com/secretshows/secretshows-server/internal/search"
	"github.com/secretshows/secretshows-server/internal/session"
)

// Services groups the domain components the handlers call into.
type Services struct {
	Catalog  *catalog.Source
	Sessions *session.Manager
	Search   *search.SearchIndex

	// Database is the durable session store, checked by /health. Nil for in-memory storage.
	Database Pinger
	// Clock anchors date filters and simulated delays. Defaults to the system clock.
	Clock clock.Clock
}

// Pinger is implemented by the durable session stores.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	config          *config.Config
	services        *Services
	router          *chi.Mux
	api             huma.API
	logger          *logger.Logger
	metrics         metrics.Recorder
	gatherer        prometheus.Gatherer
	authRateLimiter *ratelimit.Limiter
}

// NewServer creates a new HTTP server with all routes configured.
// A nil gatherer leaves /metrics unregistered; a nil recorder records nothing.
func NewServer(cfg *config.Config, services *Services, rec metrics.Recorder, gatherer prometheus.Gatherer, log *logger.Logger) *Server {
	if services.Clock == nil {
		services.Clock = clock.NewSystem()
	}
	if rec == nil {
		rec = metrics.Noop{}
	}

	router := chi.NewRouter()

	s := &Server{
		config:          cfg,
		services:        services,
		router:          router,
		logger:          log,
		metrics:         rec,
		gatherer:        gatherer,
		authRateLimiter: ratelimit.New(authLimit(cfg.Session.AuthRateLimit)),
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Secret Shows API", "1.0.0")
	humaConfig.Info.Description = "Catalog browsing and simulated session flows for Secret Shows."
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, e.g. for exporting the OpenAPI document.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.authRateLimiter.Stop()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.observe)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.router.Use(s.profileMiddleware)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	if s.gatherer != nil {
		s.router.Handle("/metrics", metrics.Handler(s.gatherer))
	}

	s.registerHealthRoutes()
	s.registerCatalogRoutes()
	s.registerSearchRoutes()
	s.registerSessionRoutes()
	s.registerBookingRoutes()
}

// register adds an operation whose domain errors are turned into API errors.
func register[I, O any](api huma.API, op huma.Operation, handler func(context.Context, *I) (*O, error)) {
	huma.Register(api, op, func(ctx context.Context, input *I) (*O, error) {
		output, err := handler(ctx, input)
		if err != nil {
			return nil, toStatusError(err)
		}
		return output, nil
	})
}
