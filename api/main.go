// Package api exposes the resolution engine and alias stores over HTTP.
package api

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/supplyline/resolve/internal/catalog"
	"github.com/supplyline/resolve/internal/config"
)

// RunServer starts the API server and handles graceful shutdown
func RunServer(cfg *config.Config, cat *catalog.Store, logger *slog.Logger) error {
	server := NewServer(cfg, cat, logger)

	// Channel to listen for interrupt signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Channel to handle server errors
	errCh := make(chan error)

	go func() {
		if err := server.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal or error
	select {
	case <-stop:
		logger.Info("shutting down server")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
		return err
	}

	logger.Info("server gracefully stopped")
	return nil
}
