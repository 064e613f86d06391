package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"safety-service/internal/logging"
)

func NewRouter(h *Handler, logger *logging.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(logger))

	api := r.Group("/api")
	{
		api.POST("/sos/:user_id", h.TriggerSOS)
		api.GET("/sos/:user_id/recent", h.RecentAlerts)
		api.POST("/sos/alerts/:alert_id/resolve", h.ResolveAlert)

		api.POST("/location/:user_id/live", h.UpdateLocation)
		api.GET("/location/:user_id/history", h.LocationHistory)
	}

	r.GET("/ws/global", h.SubscribeGlobal)
	r.GET("/ws/user/:user_id", h.SubscribeUser)

	r.GET("/health", func(c *gin.Context) {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"status": "unhealthy", "database": "disconnected"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "connected"})
	})

	return r
}
