// Package server provides the HTTP API for the card knowledge router.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kektech/cardbot/internal/config"
	"github.com/kektech/cardbot/internal/registry"
	"github.com/kektech/cardbot/internal/router"
)

// Server is the HTTP server for the router API.
type Server struct {
	router   *router.Router
	registry *registry.Registry
	config   config.ServerConfig
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies. registry may be
// nil when card endpoints are not wanted.
func NewServer(
	rt *router.Router,
	reg *registry.Registry,
	cfg config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		router:   rt,
		registry: reg,
		config:   cfg,
		logger:   logger,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/route", s.handleRoute)
	r.Get("/api/v1/cards/{asset}", s.handleGetCard)
	r.Put("/api/v1/cards", s.handleUpsertCard)
	r.Get("/health", s.handleHealth)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
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
