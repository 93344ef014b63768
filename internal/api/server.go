package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/survey/backend/internal/config"
)

// Server represents the API server
type Server struct {
	config config.ServerConfig
	server *http.Server
}

// NewServer creates a new API server around the routes built by SetupRoutes.
// The underlying http.Server is built here so Shutdown is safe to call from
// another goroutine at any time, even before ListenAndServe.
func NewServer(cfg config.ServerConfig, handler http.Handler) *Server {
	return &Server{
		config: cfg,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.GetHost(), cfg.Port),
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout(),
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      cfg.WriteTimeout(),
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.server.Addr
}

// ListenAndServe starts the HTTP server. After Shutdown it returns
// http.ErrServerClosed.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
