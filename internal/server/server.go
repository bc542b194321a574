// Package server provides the HTTP API for the catalog search service.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/mulefish/search-toy/internal/config"
	"github.com/mulefish/search-toy/internal/search"
	"github.com/mulefish/search-toy/internal/storage"
)

// Server is the HTTP server for the search API.
type Server struct {
	engine *search.Engine
	store  storage.Store
	cfg    *config.Config
	logger *zap.Logger
	server *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(engine *search.Engine, store storage.Store, cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		engine: engine,
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

// Router builds the HTTP routes. Exposed so tests can exercise the full
// middleware stack without binding a port.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/search", s.handleSearch)
	r.Get("/api/v1/keyword", s.handleKeyword)
	r.Get("/api/v1/items", s.handleListItems)
	r.Get("/api/v1/items/{id}", s.handleGetItem)
	r.Get("/api/v1/status", s.handleStatus)
	r.Post("/api/v1/reload", s.handleReload)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.cfg.Server.Addr()
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
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
