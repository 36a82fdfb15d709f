// Package api exposes the cached tender snapshot over HTTP.
//
// Routes:
//
//	GET /api/tenders        filtered, sorted, paginated list
//	GET /api/tenders/{id}   single tender or 404
//	GET /health             liveness
//	GET /ready              200 once a snapshot has been published, else 503
//	GET /metrics            Prometheus exposition
//
// Errors are returned as application/problem+json bodies.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Sternrassler/tenders-api/pkg/logging"
	"github.com/Sternrassler/tenders-api/pkg/metrics"
	"github.com/rs/zerolog"
)

// Config holds HTTP server settings.
type Config struct {
	// Address is the listen address, e.g. ":8080".
	Address string

	// RequestTimeout bounds the work done per request.
	RequestTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Address:         ":8080",
		RequestTimeout:  10 * time.Second,
		ShutdownTimeout: 15 * time.Second,
	}
}

// Server is the HTTP API server.
type Server struct {
	cfg      Config
	handlers *Handlers
	logger   zerolog.Logger
	http     *http.Server
}

// NewServer creates a server answering queries from reader.
func NewServer(cfg Config, reader TenderReader, ready ReadinessChecker, logger zerolog.Logger) (*Server, error) {
	if reader == nil {
		return nil, errors.New("tender reader is required")
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("request timeout must be positive (got %s)", cfg.RequestTimeout)
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultConfig().ShutdownTimeout
	}

	s := &Server{
		cfg:      cfg,
		handlers: NewHandlers(reader, ready, cfg.RequestTimeout),
		logger:   logging.WithComponent(logger, logging.ComponentAPI),
	}
	s.http = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tenders", s.handlers.ListTenders)
	mux.HandleFunc("GET /api/tenders/{id}", s.handlers.GetTender)
	mux.HandleFunc("GET /health", s.handlers.Health)
	mux.HandleFunc("GET /ready", s.handlers.Ready)
	mux.Handle("GET /metrics", metrics.Handler())

	return chain(mux, requestID(s.logger), accessLog, recoverer)
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("address", ln.Addr().String()).Msg("HTTP server listening")
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	s.logger.Info().Msg("HTTP server stopped")
	return nil
}
