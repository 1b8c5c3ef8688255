package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"vigil-server/internal/api"
	"vigil-server/internal/config"
	"vigil-server/internal/logging"
	"vigil-server/internal/services"
)

// @title Vigil Monitoring API
// @version 1.0.0
// @description Local security-camera monitoring server with live feed fan-out, motion analytics and alert persistence
// @host localhost:5000
// @BasePath /
func main() {
	cfg := config.Load()

	logdyURL := logging.Setup(cfg)
	if logdyURL != "" {
		log.Info().Str("url", logdyURL).Msg("Logdy log viewer running")
	}

	log.Info().
		Str("server_id", cfg.ServerID).
		Str("version", cfg.Version).
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Bool("demo_mode", cfg.DemoMode).
		Str("classifier", cfg.Classifier).
		Msg("Starting monitoring server")

	container, err := services.NewServiceContainer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build services")
	}

	server := api.NewServer(cfg, container)
	if err := server.Setup(); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up server")
	}

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := container.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Service shutdown error")
	} else {
		log.Info().Msg("Shutdown complete")
	}
}
