// Package httpserver wraps http.Server with graceful shutdown and a
// readiness probe handler.
package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

var (
	// ErrStart indicates that the server failed to start.
	ErrStart = errors.New("failed to start HTTP server")
	// ErrShutdown indicates that graceful shutdown failed.
	ErrShutdown = errors.New("failed to shutdown HTTP server gracefully")
)

// Config describes the HTTP listener settings.
type Config struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Server wraps http.Server with graceful shutdown and logging.
type Server struct {
	cfg    Config
	log    *slog.Logger
	srv    *http.Server
	once   sync.Once
	mu     sync.Mutex
	closed bool
}

// New returns a configured Server.
func New(cfg Config, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{cfg: cfg, log: log}
}

// Run starts the HTTP server and blocks until shutdown, triggered either by
// context cancellation or by SIGINT/SIGTERM.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	if handler == nil {
		handler = http.NotFoundHandler()
	}

	s.mu.Lock()
	if s.srv != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, errors.New("server already running"))
	}
	s.srv = &http.Server{
		Addr:         s.cfg.Addr,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
		Handler:      handler,
	}
	srv := s.srv
	s.mu.Unlock()

	s.log.Info("http server listening", "addr", s.cfg.Addr)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case <-ctx.Done():
		_ = s.Shutdown(context.Background())
		runErr = <-errCh
	case <-stop:
		_ = s.Shutdown(context.Background())
		runErr = <-errCh
	case runErr = <-errCh:
	}

	if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
		return errors.Join(ErrStart, runErr)
	}
	return nil
}

// Shutdown stops the server gracefully. Safe for repeated calls.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		if s.srv == nil {
			return
		}
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
		err = s.srv.Shutdown(ctx)
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.log.Info("http server stopped")
	})

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Join(ErrShutdown, err)
	}
	return nil
}
