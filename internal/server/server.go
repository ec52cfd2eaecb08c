package server

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/courier/pkg/health"
	"github.com/dmitrymomot/courier/pkg/logger"
)

// Hook runs at startup or shutdown.
type Hook func(context.Context) error

type mount struct {
	handler http.Handler
	pattern string
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithReadinessCheck adds a named check to /readyz.
func WithReadinessCheck(name string, fn health.CheckFunc) Option {
	return func(s *Server) {
		s.checks[name] = fn
	}
}

// WithMetrics exposes g on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithMount mounts h under pattern, for example the dev mailbox.
func WithMount(pattern string, h http.Handler) Option {
	return func(s *Server) {
		s.mounts = append(s.mounts, mount{pattern: pattern, handler: h})
	}
}

// WithStartupHook adds a hook run before the listener accepts requests.
func WithStartupHook(h Hook) Option {
	return func(s *Server) {
		s.startup = append(s.startup, h)
	}
}

// WithShutdownHook adds a hook run after the listener stopped, in order.
func WithShutdownHook(h Hook) Option {
	return func(s *Server) {
		s.shutdown = append(s.shutdown, h)
	}
}

// Server is the ops HTTP server: probes, metrics and mounted tools.
type Server struct {
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	checks   health.Checks
	handler  http.Handler
	mounts   []mount
	startup  []Hook
	shutdown []Hook
	cfg      Config
}

// New builds the server and its routes.
func New(cfg Config, opts ...Option) *Server {
	cfg.Address = cmp.Or(cfg.Address, ":8080")
	cfg.ShutdownTimeout = cmp.Or(cfg.ShutdownTimeout, defaultShutdownTimeout)

	s := &Server{
		cfg:    cfg,
		logger: logger.NewNope(),
		checks: make(health.Checks),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID, recoverer(s.logger))

	r.Get("/healthz", health.LivenessHandler())
	r.Get("/readyz", health.ReadinessHandler(s.checks,
		health.WithLogger(s.logger),
		health.WithTimeout(s.cfg.HealthTimeout),
	))
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	for _, m := range s.mounts {
		r.Mount(m.pattern, m.handler)
	}
	return r
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run runs the startup hooks, serves until ctx is canceled or the process
// receives SIGINT or SIGTERM, then shuts down and runs the shutdown hooks.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener, without signal handling.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	for _, hook := range s.startup {
		if err := hook(ctx); err != nil {
			_ = ln.Close()
			return errors.Join(err, s.runShutdown())
		}
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer shutdownCancel()

	errs := []error{serveErr}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, s.runHooks(shutdownCtx))

	if err := errors.Join(errs...); err != nil {
		s.logger.Error("shutdown completed with errors", slog.Any("error", err))
		return err
	}
	s.logger.Info("shutdown completed")
	return nil
}

func (s *Server) runShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return s.runHooks(ctx)
}

func (s *Server) runHooks(ctx context.Context) error {
	var errs []error
	for _, hook := range s.shutdown {
		if err := hook(ctx); err != nil {
			s.logger.Error("shutdown hook failed", slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
