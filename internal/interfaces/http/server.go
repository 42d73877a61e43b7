// Package http exposes the chat engine, session store and catalog search over
// a gin-based REST API.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/turtacn/KeyIP-Chat/internal/config"
	"github.com/turtacn/KeyIP-Chat/internal/infrastructure/monitoring/logging"
)

// Server wraps the HTTP listener around the assembled router.
type Server struct {
	srv    *http.Server
	logger logging.Logger
}

// NewServer builds the server for an already-assembled handler.
func NewServer(cfg config.ServerConfig, handler http.Handler, logger logging.Logger) *Server {
	return &Server{
		logger: logger.Named("http"),
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start blocks serving requests until Shutdown is called or the listener
// fails.
func (s *Server) Start() error {
	s.logger.Info("http server listening", logging.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.srv.Shutdown(ctx)
}
