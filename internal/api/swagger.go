package api

import (
	"net/http"

	_ "vigil-server/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (s *Server) setupSwagger() {
	s.router.GET("/api/info", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"title":       "Vigil Monitoring API",
			"version":     s.config.Version,
			"description": "Local security-camera monitoring server with live feed fan-out, motion analytics and alert persistence",
			"swagger_ui":  "/docs/index.html",
			"endpoints": gin.H{
				"health":    "/health",
				"info":      "/",
				"camera":    "/camera",
				"analytics": "/analytics",
				"alerts":    "/alerts",
				"feed":      "/feed",
				"system":    "/system",
			},
			"server_id": s.config.ServerID,
			"port":      s.config.Port,
		})
	})

	s.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	s.router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})
}
