package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"vigil-server/internal/models"
	"vigil-server/internal/services"
)

type SystemHandler struct {
	container *services.ServiceContainer
}

func NewSystemHandler(container *services.ServiceContainer) *SystemHandler {
	return &SystemHandler{container: container}
}

// State returns the monitoring state
// @Summary Monitoring state
// @Description Current state of the monitoring state machine. Available even after self-destruct.
// @Tags system
// @Produce json
// @Success 200 {object} models.StateResponse
// @Router /system/state [get]
func (h *SystemHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, models.StateResponse{State: h.container.Machine.State().String()})
}

// SelfDestruct irreversibly destroys the system
// @Summary Self-destruct
// @Description Disconnects all viewers, stops frame ingestion and purges the alert store. Requires an explicit confirmation flag; irreversible.
// @Tags system
// @Accept json
// @Produce json
// @Param request body models.SelfDestructRequest true "Confirmation"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Router /system/self-destruct [post]
func (h *SystemHandler) SelfDestruct(c *gin.Context) {
	var req models.SelfDestructRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if !req.Confirm {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "self-destruct requires confirm=true"})
		return
	}

	if err := h.container.Machine.SelfDestruct(); err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}

	log.Warn().Msg("Self-destruct completed")
	c.JSON(http.StatusOK, SuccessResponse{Message: "system destroyed"})
}

// Stats reports broadcaster and pipeline internals
// @Summary System stats
// @Description Viewer session count and per-camera ingestion status
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /system/stats [get]
func (h *SystemHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state":           h.container.Machine.State().String(),
		"viewer_sessions": h.container.Hub.Count(),
		"pipeline_active": h.container.Pipeline.Running(),
		"cameras":         h.container.Pipeline.Status(),
		"alerting":        h.container.AlertingConnected(),
	})
}
