// Package preview serves the built site and rebuilds it when sources change.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/TotalLag/developer-docs/internal/config"
	"github.com/TotalLag/developer-docs/internal/logfields"
	"github.com/TotalLag/developer-docs/internal/site"
)

// Builder runs one build. *site.Generator satisfies it.
type Builder interface {
	Build(ctx context.Context) (*site.BuildReport, error)
}

// Server is the serve-mode loop: initial build, watcher, rebuild worker, HTTP.
type Server struct {
	builder  Builder
	cfg      *config.Config
	logger   *slog.Logger
	metrics  http.Handler
	listener net.Listener
	status   *buildStatus
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.logger = l } }

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option { return func(s *Server) { s.metrics = h } }

// WithListener serves on l instead of listening on the configured port.
func WithListener(l net.Listener) Option { return func(s *Server) { s.listener = l } }

func New(builder Builder, cfg *config.Config, opts ...Option) *Server {
	s := &Server{builder: builder, cfg: cfg, logger: slog.Default(), status: &buildStatus{}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run blocks until ctx is canceled. A failing initial build is reported on
// /healthz and does not stop the server.
func (s *Server) Run(ctx context.Context) error {
	s.rebuild(ctx, "initial")

	watcher, err := newWatcher(s.cfg, s.logger)
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	deb := newDebouncer(s.cfg.Watch.Debounce.Std())
	done := startRebuildWorker(ctx, deb.ch, func() { s.rebuild(ctx, "change") })
	stopWorker := func() {
		deb.close()
		<-done
	}

	sched, err := startSchedule(s.cfg.Serve.RebuildSchedule, deb.trigger, s.logger)
	if err != nil {
		stopWorker()
		return err
	}
	defer sched.stop()

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	ln := s.listener
	if ln == nil {
		ln, err = net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Serve.Port))
		if err != nil {
			stopWorker()
			return fmt.Errorf("listen on port %d: %w", s.cfg.Serve.Port, err)
		}
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()
	s.logger.Info("Preview server listening", slog.String("addr", ln.Addr().String()), logfields.Path(s.cfg.Dir.Output))

	loopErr := watcher.run(ctx, deb.trigger)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	stopWorker()

	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return loopErr
}

func (s *Server) rebuild(ctx context.Context, reason string) {
	s.logger.Info("Rebuilding site", slog.String("reason", reason))
	report, err := s.builder.Build(ctx)
	s.status.record(report, err)
	if err != nil {
		s.logger.Warn("Rebuild failed", logfields.Error(err))
	}
}

func absOrSelf(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
