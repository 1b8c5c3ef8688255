package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"vigil-server/internal/models"
	"vigil-server/internal/services"
)

type CameraHandler struct {
	container *services.ServiceContainer
}

func NewCameraHandler(container *services.ServiceContainer) *CameraHandler {
	return &CameraHandler{container: container}
}

// Control starts or stops camera monitoring
// @Summary Control camera monitoring
// @Description Start or stop the monitoring pipeline. The action is validated against the current state; starting twice or acting after self-destruct fails.
// @Tags camera
// @Accept json
// @Produce json
// @Param request body models.CameraControlRequest true "Control action"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Router /camera [post]
func (h *CameraHandler) Control(c *gin.Context) {
	var req models.CameraControlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("Invalid camera control request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var err error
	message := "monitoring started"
	switch req.Action {
	case "start":
		err = h.container.Machine.Start()
	case "stop":
		err = h.container.Machine.Stop()
		message = "monitoring stopped"
	}
	if err != nil {
		log.Warn().Err(err).Str("action", req.Action).Msg("Camera control rejected")
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}

	log.Info().Str("action", req.Action).Msg("Camera control applied")
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// List reports every configured camera
// @Summary List cameras
// @Description Per-camera ingestion status
// @Tags camera
// @Produce json
// @Success 200 {array} models.CameraStatus
// @Router /cameras [get]
func (h *CameraHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.container.Pipeline.Status())
}
