package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/camguard/camguard/host"
	"github.com/camguard/camguard/internal/config"
)

// Server owns the HTTP listener fronting a Host. Construct with New,
// run with Start; Start blocks until ctx is cancelled, a termination
// signal arrives, or the listener itself fails.
type Server struct {
	config     *config.Config
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds a Server wired to h, listening per cfg.Server.
func New(cfg *config.Config, h *host.Host, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	handler := &Handler{host: h}
	reconfigureRouter := newReconfigureRouter()

	engine.GET("/healthz", handler.HealthCheck)
	engine.GET("/status", handler.GetStatus)
	engine.POST("/sessions", handler.CreateSession)
	engine.DELETE("/sessions/:sessionId", handler.CloseSession)
	engine.POST("/sessions/:sessionId/operations/reconfigure",
		validateReconfigureBody(reconfigureRouter), handler.Operation)
	engine.POST("/sessions/:sessionId/operations/:op", handler.Operation)

	return &Server{
		config: cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:         cfg.ServerAddress(),
			Handler:      engine,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
}

// Start runs the HTTP listener until ctx is cancelled, SIGINT/SIGTERM is
// received, or the listener fails to start, then shuts it down gracefully.
func (s *Server) Start(ctx context.Context) error {
	shutdownCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting http listener", "addr", s.config.ServerAddress())
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			shutdownCh <- fmt.Errorf("listener failed: %w", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, shutting down")
	case sig := <-sigCh:
		s.logger.Info("signal received, shutting down", "signal", sig.String())
	case err := <-shutdownCh:
		return err
	}

	return s.Shutdown()
}

// Shutdown gracefully stops the HTTP listener, bounded by a 5s timeout.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down listener: %w", err)
	}
	s.logger.Info("http listener stopped")
	return nil
}
