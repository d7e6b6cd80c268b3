package middlewares

import (
	"net/http"

	"bitbucket.org/mmdatafocus/pricewatch_backend/config"
	"github.com/gin-gonic/gin"
)

// ReadinessMiddleware answers the startup probe and holds back every other request with 503
// until the database is connected. Redis is optional and never gates traffic.
func ReadinessMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.URL.Path {
		case "/healthz":
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		case "/metrics":
			c.Next()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Service Unavailable"})
			return
		}
		c.Next()
	}
}
