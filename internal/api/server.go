// Package api provides the HTTP API server and handlers for Chaptermatic.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/chaptermatic/chaptermatic-server/internal/service"
	"github.com/chaptermatic/chaptermatic-server/internal/store"
)

// Services groups the business logic services used by the API server.
type Services struct {
	Chapter *service.ChapterService
	Search  *service.SearchService
}

// Options configures the HTTP surface.
type Options struct {
	Version     string
	CORSOrigins []string

	// TrustProxyHeaders installs chi's RealIP so X-Real-IP and X-Forwarded-For
	// replace RemoteAddr. Off unless a reverse proxy sets those headers.
	TrustProxyHeaders bool

	// Per-IP limit for chapter generation.
	GenerateRate     int
	GenerateInterval time.Duration
	GenerateBurst    int
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		Version:          "dev",
		CORSOrigins:      []string{"*"},
		GenerateRate:     30,
		GenerateInterval: time.Minute,
		GenerateBurst:    10,
	}
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           store.Store
	services        *Services
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	generateLimiter *RateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, opts Options, logger *slog.Logger) *Server {
	if opts.GenerateRate <= 0 || opts.GenerateInterval <= 0 {
		defaults := DefaultOptions()
		opts.GenerateRate, opts.GenerateInterval = defaults.GenerateRate, defaults.GenerateInterval
	}
	if opts.GenerateBurst <= 0 {
		opts.GenerateBurst = 1
	}

	router := chi.NewRouter()

	s := &Server{
		store:           st,
		services:        services,
		router:          router,
		logger:          logger,
		generateLimiter: NewRateLimiter(opts.GenerateRate, opts.GenerateInterval, opts.GenerateBurst),
	}

	s.setupMiddleware(opts)

	humaConfig := huma.DefaultConfig("Chaptermatic API", opts.Version)
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.generateLimiter.Stop()
}

func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(middleware.RequestID)
	if opts.TrustProxyHeaders {
		s.router.Use(middleware.RealIP)
	}
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerChapterRoutes()
}

// requestLogger logs each request through slog instead of chi's stdlib logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
