package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"sales-dashboard/internal/config"
)

const hookTimeout = 10 * time.Second

type shutdownHook struct {
	name string
	fn   func(ctx context.Context) error
}

// GracefulServer runs an http.Server until SIGINT/SIGTERM or the parent
// context ends, then drains it and runs the registered hooks.
type GracefulServer struct {
	server *http.Server
	logger *slog.Logger
	cfg    config.ServerConfig
	hooks  []shutdownHook
	mu     sync.Mutex
}

func NewGracefulServer(server *http.Server, logger *slog.Logger, cfg config.ServerConfig) *GracefulServer {
	return &GracefulServer{
		server: server,
		logger: logger,
		cfg:    cfg,
	}
}

func (gs *GracefulServer) RegisterShutdownHook(name string, fn func(ctx context.Context) error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.hooks = append(gs.hooks, shutdownHook{name: name, fn: fn})
}

func (gs *GracefulServer) ListenAndServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		gs.logger.Info("starting server",
			"addr", gs.server.Addr,
			"read_timeout", gs.cfg.ReadTimeout,
			"write_timeout", gs.cfg.WriteTimeout,
		)
		serverErrors <- gs.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		gs.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), gs.cfg.ShutdownTimeout)
		defer cancel()

		return gs.Shutdown(shutdownCtx)
	}
}

// Shutdown stops accepting requests, waits for in-flight ones, then runs the
// hooks concurrently. Hook errors are joined.
func (gs *GracefulServer) Shutdown(ctx context.Context) error {
	gs.logger.Info("starting graceful shutdown", "timeout", gs.cfg.ShutdownTimeout)

	var errs []error
	if err := gs.server.Shutdown(ctx); err != nil {
		gs.logger.Error("HTTP server shutdown failed", "error", err)
		errs = append(errs, fmt.Errorf("HTTP server shutdown failed: %w", err))
	} else {
		gs.logger.Info("HTTP server stopped gracefully")
	}

	gs.mu.Lock()
	hooks := append([]shutdownHook(nil), gs.hooks...)
	gs.mu.Unlock()

	var (
		wg    sync.WaitGroup
		errMu sync.Mutex
	)
	for _, hook := range hooks {
		wg.Add(1)
		go func() {
			defer wg.Done()

			hookCtx, cancel := context.WithTimeout(ctx, hookTimeout)
			defer cancel()

			if err := hook.fn(hookCtx); err != nil {
				gs.logger.Error("shutdown hook failed", "hook", hook.name, "error", err)
				errMu.Lock()
				errs = append(errs, fmt.Errorf("shutdown hook %s failed: %w", hook.name, err))
				errMu.Unlock()
				return
			}
			gs.logger.Debug("shutdown hook completed", "hook", hook.name)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		gs.logger.Info("graceful shutdown completed")
		errMu.Lock()
		defer errMu.Unlock()
		return errors.Join(errs...)
	case <-ctx.Done():
		gs.logger.Warn("shutdown timeout exceeded, forcing exit")
		return ctx.Err()
	}
}
