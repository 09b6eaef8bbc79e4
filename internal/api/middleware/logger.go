package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"energy-trading/internal/metrics"
)

// Logger returns a gin middleware that emits one structured log line per
// request and feeds the Prometheus request metrics.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()

		metrics.ObserveRequest(c.Request.Method, path, status, duration)
		slog.Info("http request",
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", duration.Milliseconds())
	}
}
