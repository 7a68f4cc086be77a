// Package server provides the HTTP server and routing for fundwatch.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/fundwatch/fundwatch/internal/database"
	"github.com/fundwatch/fundwatch/internal/returns"
)

// Config holds server configuration
type Config struct {
	Log     zerolog.Logger
	DB      *database.DB
	Repo    *returns.Repository
	Port    int
	DevMode bool
}

// Server represents the HTTP server
type Server struct {
	router   *chi.Mux
	server   *http.Server
	log      zerolog.Logger
	db       *database.DB
	handlers *Handlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		log:      cfg.Log.With().Str("component", "server").Logger(),
		db:       cfg.DB,
		handlers: NewHandlers(cfg.Repo, cfg.Log),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/dates", s.handlers.GetDates)
		r.Get("/returns", s.handlers.GetReturns)
		r.Get("/comparison", s.handlers.GetComparison)
		r.Get("/categories", s.handlers.GetCategorySummary)
	})
}

// loggingMiddleware logs each request with its duration
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request")
	})
}

// handleHealth reports service and database health. The default probe is a
// liveness ping; ?deep=true runs a full SQLite integrity check and is meant
// for operators, not load balancers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK

	deep, _ := strconv.ParseBool(r.URL.Query().Get("deep"))

	if s.db != nil {
		check := s.db.QuickCheck
		if deep {
			check = s.db.HealthCheck
		}
		if err := check(r.Context()); err != nil {
			s.log.Error().Err(err).Bool("deep", deep).Msg("Database health check failed")
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	respondJSON(w, code, map[string]string{"status": status})
}

// Start begins serving HTTP requests (blocking)
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router exposes the router, used by tests
func (s *Server) Router() http.Handler {
	return s.router
}
