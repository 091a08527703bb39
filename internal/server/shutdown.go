package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ShutdownHook is a cleanup function called during graceful shutdown.
type ShutdownHook func(ctx context.Context) error

// GracefulShutdown runs a server until a shutdown signal arrives, then
// drains it and runs the registered cleanup hooks.
type GracefulShutdown struct {
	server        *Server
	logger        *zap.Logger
	timeout       time.Duration
	signals       []os.Signal
	mu            sync.Mutex
	shutdownHooks []ShutdownHook
	shutdownOnce  sync.Once
	shutdownChan  chan struct{}
	shutdownError error
}

// NewGracefulShutdown creates a shutdown handler listening for SIGINT and
// SIGTERM with a 30 second drain timeout.
func NewGracefulShutdown(server *Server, logger *zap.Logger) *GracefulShutdown {
	return &GracefulShutdown{
		server:       server,
		logger:       logger,
		timeout:      30 * time.Second,
		signals:      []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		shutdownChan: make(chan struct{}),
	}
}

// RegisterHook registers a cleanup hook. Hooks run in registration order
// before the HTTP server is shut down.
func (gs *GracefulShutdown) RegisterHook(hook ShutdownHook) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.shutdownHooks = append(gs.shutdownHooks, hook)
}

// Start runs the server and blocks until a shutdown signal or a server
// error.
func (gs *GracefulShutdown) Start() error {
	errChan := make(chan error, 1)
	go func() {
		gs.logger.Info("starting server", zap.String("address", gs.server.Addr()))
		if err := gs.server.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server failed: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, gs.signals...)

	select {
	case <-quit:
		gs.logger.Info("shutdown signal received")
		return gs.Shutdown()
	case err := <-errChan:
		return err
	}
}

// Shutdown drains the server and runs the hooks. Safe to call more than
// once; later calls wait for the first to finish.
func (gs *GracefulShutdown) Shutdown() error {
	gs.shutdownOnce.Do(func() {
		gs.logger.Info("shutting down", zap.Duration("timeout", gs.timeout))

		ctx, cancel := context.WithTimeout(context.Background(), gs.timeout)
		defer cancel()

		gs.mu.Lock()
		hooks := make([]ShutdownHook, len(gs.shutdownHooks))
		copy(hooks, gs.shutdownHooks)
		gs.mu.Unlock()

		for i, hook := range hooks {
			if err := hook(ctx); err != nil {
				gs.logger.Warn("shutdown hook failed", zap.Int("hook", i), zap.Error(err))
			}
		}

		if err := gs.server.Shutdown(ctx); err != nil {
			gs.shutdownError = fmt.Errorf("server shutdown error: %w", err)
			gs.logger.Error("server shutdown failed", zap.Error(err))
		} else {
			gs.logger.Info("server shutdown complete")
		}

		close(gs.shutdownChan)
	})

	<-gs.shutdownChan
	return gs.shutdownError
}
