package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/BioHazard786/roomrelay/internal/config"
	"github.com/BioHazard786/roomrelay/internal/metrics"
	"github.com/BioHazard786/roomrelay/internal/signaling"
)

// Server is the relay process: one hub plus the HTTP server in front of it.
type Server struct {
	cfg  *config.Server
	log  *slog.Logger
	hub  *signaling.Hub
	http *http.Server
}

// New builds a server with a fresh hub. Nothing runs until Serve.
func New(cfg *config.Server, logger *slog.Logger) *Server {
	hub := signaling.NewHub(logger, metrics.New())
	opts := signaling.ClientOptions{MaxMessagesPerSecond: cfg.MaxMessagesPerSecond}

	return &Server{
		cfg: cfg,
		log: logger,
		hub: hub,
		http: &http.Server{
			Handler:           NewMux(hub, opts, logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Hub returns the server's hub.
func (s *Server) Hub() *signaling.Hub {
	return s.hub
}

// Handler returns the HTTP handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe binds the configured port and serves until ctx is
// cancelled. A bind failure is returned immediately.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.ListenAddr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the hub and the HTTP server on ln. When ctx is cancelled the
// HTTP server is shut down gracefully and the hub is stopped.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer func() {
		stopHub()
		<-s.hub.Done()
	}()
	go s.hub.Run(hubCtx)

	s.log.Info("starting signaling server", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server exited: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.log.Error("http server shutdown failed", "err", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server exited after shutdown: %w", err)
	}
	return nil
}
