// Package server provides the HTTP API and the roster page for the duty roster service.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/dutyroster/internal/config"
	"github.com/hyperjump/dutyroster/internal/directory"
	"github.com/hyperjump/dutyroster/internal/publish"
	"github.com/hyperjump/dutyroster/internal/render"
	"github.com/hyperjump/dutyroster/internal/storage"
	"go.uber.org/zap"
)

// Publisher runs a publish; *publish.Publisher satisfies it.
type Publisher interface {
	Publish(ctx context.Context, src publish.Source) (*publish.Result, error)
}

// Server is the HTTP server for the roster API.
type Server struct {
	storage   storage.Storage
	directory *directory.Index
	publisher Publisher
	source    publish.Source
	renderer  *render.Renderer
	config    *config.ServerConfig
	location  *time.Location
	now       func() time.Time
	diskPaths []string
	logger    *zap.Logger
	server    *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithPublisher enables POST /api/v1/publish against src.
func WithPublisher(p Publisher, src publish.Source) Option {
	return func(s *Server) {
		s.publisher = p
		s.source = src
	}
}

// WithRenderer sets the renderer for the HTML page.
func WithRenderer(r *render.Renderer) Option {
	return func(s *Server) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithLocation sets the timezone that decides "today".
func WithLocation(loc *time.Location) Option {
	return func(s *Server) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDiskPaths lists the paths summed into the status disk usage.
func WithDiskPaths(paths ...string) Option {
	return func(s *Server) { s.diskPaths = paths }
}

// NewServer creates a server with the given dependencies. idx may be nil, which
// disables employee search.
func NewServer(store storage.Storage, idx *directory.Index, cfg *config.ServerConfig, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		storage:   store,
		directory: idx,
		config:    cfg,
		location:  time.UTC,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		if r, err := render.NewRenderer(); err == nil {
			s.renderer = r
		} else {
			logger.Error("Failed to build renderer", zap.Error(err))
		}
	}
	return s
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/roster", s.handleRoster)
		r.Get("/roster/now", s.handleRosterNow)
		r.Get("/employees", s.handleEmployees)
		r.Get("/snapshots", s.handleSnapshots)
		r.Get("/snapshots/{id}", s.handleSnapshot)
		r.Post("/publish", s.handlePublish)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
