package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires /healthz and the /api/v1 group. Only the API group
// sits behind the bearer token.
func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.store.Len()})
	})

	v1 := s.engine.Group("/api/v1")
	if s.cfg.BearerToken != "" {
		v1.Use(bearerAuthMiddleware(s.cfg.BearerToken))
	}
	v1.GET("/periods", s.handlePeriods)

	datasets := v1.Group("/datasets")
	{
		datasets.POST("", s.handleUpload)
		datasets.GET("/:id", s.handleGetDataset)
		datasets.DELETE("/:id", s.handleDeleteDataset)
		datasets.GET("/:id/views/:view", s.handleView)
		datasets.GET("/:id/views/:view/chart.png", s.handleChart)
		datasets.GET("/:id/export", s.handleExport)
	}
}
