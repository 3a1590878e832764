// Package server exposes schedules over a JSON HTTP API.
//
// Routes:
//
//	GET  /api/health         liveness, public
//	POST /api/hash           argon2id hash of a password
//	GET  /api/groups         referee groups visible to the caller
//	GET  /api/schedule       schedule as JSON, ?refs=Surname_First&group_by=referee|date
//	GET  /api/schedule.ics   schedule as iCalendar, ?refs=...
//	GET  /metrics            Prometheus metrics
//
// All routes but health and metrics require HTTP Basic auth against the
// configured users. Requested referees outside the caller's scope are dropped.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pfrederiksen/refsched/internal/access"
	"github.com/pfrederiksen/refsched/internal/crypto"
	"github.com/pfrederiksen/refsched/internal/logger"
	"github.com/pfrederiksen/refsched/internal/match"
	"github.com/pfrederiksen/refsched/internal/metrics"
	"github.com/pfrederiksen/refsched/internal/schedule"
	"github.com/rs/cors"
)

const shutdownTimeout = 10 * time.Second

// maxConcurrentHashes caps argon2id runs of /api/hash, each of which
// allocates the configured hash memory
const maxConcurrentHashes = 2

// ScheduleBuilder runs the portal searches for a set of referees
type ScheduleBuilder interface {
	Build(ctx context.Context, names []match.RefereeName) (*schedule.Schedule, error)
}

// Options configures a Server
type Options struct {
	Addr           string
	Schedules      ScheduleBuilder
	Access         *access.Authorizer
	Hasher         *crypto.Hasher
	Metrics        *metrics.Metrics
	LeagueNames    map[string]string
	AllowedOrigins []string
}

// Server is the HTTP API
type Server struct {
	opts    Options
	handler http.Handler
	now     func() time.Time
	hashing chan struct{} // bounds concurrent /api/hash work
}

// New creates a Server and its routes
func New(opts Options) *Server {
	if opts.Hasher == nil {
		opts.Hasher = crypto.NewHasher(crypto.DefaultParams)
	}
	s := &Server{
		opts:    opts,
		now:     time.Now,
		hashing: make(chan struct{}, maxConcurrentHashes),
	}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	router := mux.NewRouter()
	router.Use(s.requestID, s.observe)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.Handle("/hash", s.basicAuth(http.HandlerFunc(s.handleHash))).Methods("POST")
	api.Handle("/groups", s.basicAuth(http.HandlerFunc(s.handleGroups))).Methods("GET")
	api.Handle("/schedule", s.basicAuth(http.HandlerFunc(s.handleSchedule))).Methods("GET")
	api.Handle("/schedule.ics", s.basicAuth(http.HandlerFunc(s.handleScheduleICS))).Methods("GET")

	router.Handle("/metrics", s.opts.Metrics.Handler()).Methods("GET")

	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: len(s.opts.AllowedOrigins) > 0,
	})

	return c.Handler(router)
}

// Handler returns the API with middleware applied
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute, // schedule requests wait on the portal
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving HTTP: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down API server", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
