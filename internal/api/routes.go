package api

func (s *Server) setupRoutes() {
	s.router.GET("/", s.healthHandler.ServerInfo)
	s.router.GET("/health", s.healthHandler.HealthCheck)

	s.router.POST("/camera", s.cameraHandler.Control)
	s.router.GET("/cameras", s.cameraHandler.List)

	analytics := s.router.Group("/analytics")
	{
		analytics.GET("", s.analyticsHandler.Get)
		analytics.POST("/reset", s.analyticsHandler.Reset)
	}
	s.router.GET("/alerts", s.analyticsHandler.Alerts)

	feed := s.router.Group("/feed")
	{
		feed.GET("/ws", s.feedHandler.Stream)
		feed.DELETE("/sessions/:session_id", s.feedHandler.Unsubscribe)
		feed.GET("/sessions/:session_id/stats", s.feedHandler.SessionStats)
	}

	system := s.router.Group("/system")
	{
		system.GET("/state", s.systemHandler.State)
		system.GET("/stats", s.systemHandler.Stats)
		system.POST("/self-destruct", s.systemHandler.SelfDestruct)
	}
}
