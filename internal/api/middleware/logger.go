package middleware

import (
	"time"

	"sellmaster/internal/logger"

	"github.com/gin-gonic/gin"
)

// Logger writes one line per request through the application logger, so
// request logs and sync-run logs share a single stream and format.
func Logger(logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		line := logger.Info
		if status >= 500 {
			line = logger.Error
		}
		line("%s %s %d %s %s", c.Request.Method, path, status, time.Since(start), c.ClientIP())
	}
}
