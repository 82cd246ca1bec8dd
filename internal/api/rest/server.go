package rest

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/reservable/booking-risk-engine/internal/infrastructure/config"
)

// Server wraps the HTTP server with routing and graceful shutdown
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer builds the server. metricsHandler, when non-nil, is mounted at
// /metrics for Prometheus scraping.
func NewServer(cfg *config.ServerConfig, handler *Handler, metricsHandler http.Handler, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/risk/evaluations", handler.handleEvaluate)
	mux.HandleFunc("GET /api/v1/risk/evaluations/{id}", handler.handleGetAssessment)
	mux.HandleFunc("POST /api/v1/risk/evaluations/{id}/review", handler.handleReview)
	mux.HandleFunc("GET /api/v1/risk/evaluations/{id}/reviews", handler.handleListReviews)
	mux.HandleFunc("GET /api/v1/risk/whitelist", handler.handleListWhitelist)
	mux.HandleFunc("POST /api/v1/risk/whitelist", handler.handleCreateWhitelist)
	mux.HandleFunc("DELETE /api/v1/risk/whitelist/{id}", handler.handleDeactivateWhitelist)
	mux.HandleFunc("GET /healthz", handler.handleHealthz)

	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	var root http.Handler = mux
	root = withLogging(logger, root)
	root = withRecovery(logger, root)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      root,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: logger,
	}
}

// Start blocks serving requests until Shutdown or a fatal listener error
func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
