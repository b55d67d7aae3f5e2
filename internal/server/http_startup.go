package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

const shutdownTimeout = 30 * time.Second

// Run runs the HTTP server until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	httpServer, err := s.setupHTTPServer()
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", httpServer.Addr, err)
	}

	s.displayServerInfo()

	return s.serve(ctx, httpServer, listener)
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer() (*http.Server, error) {
	tlsConfig, err := s.TLSConfig.ServerTLSConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to configure TLS: %w", err)
	}

	return &http.Server{
		Addr:              net.JoinHostPort(s.Host, s.Port),
		Handler:           s.Handler(),
		TLSConfig:         tlsConfig,
		ReadTimeout:       s.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.WriteTimeout,
		IdleTimeout:       s.IdleTimeout,
	}, nil
}

// serve accepts connections on listener and shuts down gracefully when ctx ends
func (s *Server) serve(ctx context.Context, server *http.Server, listener net.Listener) error {
	serverErrors := make(chan error, 1)

	go func() {
		s.Logger.Info("Starting HTTP server",
			"address", listener.Addr().String(),
			"tls_enabled", server.TLSConfig != nil)

		var err error
		if server.TLSConfig != nil {
			// Certificates are already loaded into TLSConfig
			err = server.ServeTLS(listener, "", "")
		} else {
			err = server.Serve(listener)
		}

		if err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err, ok := <-serverErrors:
		s.cleanupRateLimiter()
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.Logger.Info("Received shutdown signal, starting graceful shutdown")
		return s.performGracefulShutdown(server)
	}
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.cleanupRateLimiter()

	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}

// cleanupRateLimiter cleans up the rate limiter resources
func (s *Server) cleanupRateLimiter() {
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Debug("Rate limiter cleaned up")
	}
}
