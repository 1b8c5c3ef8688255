package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"vigil-server/internal/models"
	"vigil-server/internal/services"
)

type AnalyticsHandler struct {
	container *services.ServiceContainer
}

func NewAnalyticsHandler(container *services.ServiceContainer) *AnalyticsHandler {
	return &AnalyticsHandler{container: container}
}

// Get returns the analytics snapshot
// @Summary Analytics snapshot
// @Description Point-in-time consistent counters and alert rate. Remains available after self-destruct.
// @Tags analytics
// @Produce json
// @Success 200 {object} models.AnalyticsSnapshot
// @Router /analytics [get]
func (h *AnalyticsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.container.Analytics.Snapshot())
}

// Reset zeroes the analytics counters
// @Summary Reset analytics
// @Description Only permitted while the system is idle
// @Tags analytics
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 409 {object} ErrorResponse
// @Router /analytics/reset [post]
func (h *AnalyticsHandler) Reset(c *gin.Context) {
	if err := h.container.Analytics.Reset(); err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "analytics reset"})
}

// Alerts lists recent alert records
// @Summary Recent alerts
// @Description Newest-first alert records from the store
// @Tags analytics
// @Produce json
// @Param limit query int false "maximum records" default(50)
// @Success 200 {array} models.AlertRecord
// @Router /alerts [get]
func (h *AnalyticsHandler) Alerts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	records, err := h.container.AlertStore.Recent(c.Request.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read alert store")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if records == nil {
		records = []models.AlertRecord{}
	}
	c.JSON(http.StatusOK, records)
}
