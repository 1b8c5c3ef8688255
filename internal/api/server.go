package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"vigil-server/internal/api/handlers"
	"vigil-server/internal/api/middleware"
	"vigil-server/internal/config"
	"vigil-server/internal/services"
)

type Server struct {
	config *config.Config
	router *gin.Engine
	server *http.Server

	healthHandler    *handlers.HealthHandler
	cameraHandler    *handlers.CameraHandler
	analyticsHandler *handlers.AnalyticsHandler
	feedHandler      *handlers.FeedHandler
	systemHandler    *handlers.SystemHandler
}

func NewServer(cfg *config.Config, container *services.ServiceContainer) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	return &Server{
		config:           cfg,
		router:           router,
		healthHandler:    handlers.NewHealthHandler(container),
		cameraHandler:    handlers.NewCameraHandler(container),
		analyticsHandler: handlers.NewAnalyticsHandler(container),
		feedHandler:      handlers.NewFeedHandler(container),
		systemHandler:    handlers.NewSystemHandler(container),
	}
}

func (s *Server) Setup() error {
	s.setupMiddleware()

	s.setupRoutes()

	s.setupSwagger()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.router,
	}

	return nil
}

func (s *Server) Start() error {
	log.Info().Int("port", s.config.Port).Msg("Starting monitoring API")
	return s.server.ListenAndServe()
}

func (s *Server) Stop() error {
	log.Info().Msg("Stopping monitoring API")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Router exposes the engine for httptest-based handler tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.RequestContext())
}
