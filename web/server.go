// Package web serves the machine over HTTP: a page that follows the machine
// live through datastar, plus JSON, diagram, health and metrics endpoints.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/amp-labs/fetchsim/fetchmachine"
	"github.com/amp-labs/fetchsim/inspect"
	"github.com/amp-labs/fetchsim/logger"
	"github.com/go-chi/chi/v5"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultShutdownTimeout = 5 * time.Second
	readHeaderTimeout      = 10 * time.Second
)

// ErrServe wraps a listener failure returned by Run.
var ErrServe = errors.New("http server failed")

// Server routes requests to a single machine.
type Server struct {
	machine         *fetchmachine.Machine
	hub             *inspect.Hub
	metrics         http.Handler
	shutdownTimeout time.Duration
	router          chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithHub streams inspection records from hub to connected pages. Without a
// hub the inspector panel is not rendered.
func WithHub(hub *inspect.Hub) Option {
	return func(s *Server) {
		s.hub = hub
	}
}

// WithMetricsHandler replaces the handler mounted at /metrics.
func WithMetricsHandler(handler http.Handler) Option {
	return func(s *Server) {
		if handler != nil {
			s.metrics = handler
		}
	}
}

// WithShutdownTimeout bounds how long Run waits for open requests once its
// context is done.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		if timeout > 0 {
			s.shutdownTimeout = timeout
		}
	}
}

// New builds the router for machine.
func New(machine *fetchmachine.Machine, opts ...Option) *Server {
	s := &Server{
		machine:         machine,
		metrics:         promhttp.Handler(),
		shutdownTimeout: defaultShutdownTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.router = s.routes()

	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestLogger)

	// Streams flush per event and must not be buffered by the compressor.
	r.Get("/updates", s.updates)
	r.Post("/fetch", s.fetch)
	r.Handle("/metrics", s.metrics)

	r.Group(func(r chi.Router) {
		r.Use(compress)

		r.Get("/", s.page)
		r.Get("/state", s.state)
		r.Get("/diagram", s.diagram)
		r.Get("/healthz", s.healthz)
	})

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Get(ctx).Info("http server listening", "addr", addr)

	var runErr error

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Get(ctx).Warn("http server shutdown incomplete", "error", err)
		}

		runErr = <-errCh
	case runErr = <-errCh:
	}

	if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
		return fmt.Errorf("%w: %w", ErrServe, runErr)
	}

	logger.Get(ctx).Info("http server stopped", "addr", addr)

	return nil
}

func compress(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}
