package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/quantarena/agent-league/internal/config"
	"github.com/quantarena/agent-league/internal/logger"
)

type Server struct {
	httpServer *http.Server
	config     *config.Config
	logger     *logger.Logger
}

func NewServer(handler *Handler, cfg *config.Config, log *logger.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Web.Port),
			Handler:      SetupRoutes(handler),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: log,
	}
}

func (s *Server) Start() error {
	s.logger.Info("web server starting", "port", s.config.Web.Port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
