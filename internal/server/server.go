// Package server constructs and starts the chat HTTP service with helpers
// that apply sensible production defaults.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// CreateServer creates and configures an HTTP server with the specified port and handler.
// It sets reasonable timeout values for production use.
func CreateServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// StartHub starts the hub loop in a separate goroutine. This should be
// called before starting the HTTP server.
func StartHub(hub *Hub) {
	go hub.Run()
	hub.log.Info("Hub started and ready to manage WebSocket connections")
}

// StartServer starts the HTTP server and blocks until it stops. A server
// closed by ShutdownServer is not reported as an error.
func StartServer(server *http.Server) error {
	slog.Info("Server listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ShutdownServer gracefully shuts down the HTTP server without interrupting active connections.
// It waits for active connections to close or until ctx is done.
func ShutdownServer(ctx context.Context, server *http.Server) error {
	slog.Info("Shutting down HTTP server...")

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
		return err
	}

	slog.Info("HTTP server shutdown completed")
	return nil
}
