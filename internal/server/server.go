// Package server exposes the trend pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/saadjs/kcal-trends/internal/logger"
	"github.com/saadjs/kcal-trends/internal/pipeline"
)

// HealthCheck is one dependency probed by /healthz.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Server struct {
	addr    string
	pipe    *pipeline.Pipeline
	checks  []HealthCheck
	timeout time.Duration
	http    *http.Server
	handler http.Handler
}

// New builds a server for addr. timeout bounds each trend request; zero
// leaves it to the log sources.
func New(addr string, pipe *pipeline.Pipeline, timeout time.Duration, checks ...HealthCheck) (*Server, error) {
	if pipe == nil {
		return nil, fmt.Errorf("pipeline is required")
	}
	if addr == "" {
		addr = ":8080"
	}
	s := &Server{
		addr:    addr,
		pipe:    pipe,
		checks:  checks,
		timeout: timeout,
	}
	s.handler = s.routes()
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is canceled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", s.addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	}
}
