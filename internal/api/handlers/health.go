package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vigil-server/internal/services"
)

type HealthHandler struct {
	container *services.ServiceContainer
	startedAt time.Time
}

func NewHealthHandler(container *services.ServiceContainer) *HealthHandler {
	return &HealthHandler{
		container: container,
		startedAt: time.Now(),
	}
}

// HealthCheck reports liveness
// @Summary Health check
// @Description Liveness probe with monitoring state
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"state":  h.container.Machine.State().String(),
		"uptime": time.Since(h.startedAt).String(),
	})
}

// ServerInfo describes the server instance
// @Summary Server info
// @Description Server identity, state and live-feed session count
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) ServerInfo(c *gin.Context) {
	cfg := h.container.Config
	c.JSON(http.StatusOK, gin.H{
		"server_id":       cfg.ServerID,
		"version":         cfg.Version,
		"environment":     cfg.Environment,
		"state":           h.container.Machine.State().String(),
		"viewer_sessions": h.container.Hub.Count(),
		"alerting":        h.container.AlertingConnected(),
		"demo_mode":       cfg.DemoMode,
	})
}
