package middleware

import (
	"github.com/gin-gonic/gin"

	coreport "github.com/cvmatch/cvmatch-backend/internal/domain/port/core"
)

// RequestLogger middleware logs every API request with latency and status
func RequestLogger(logger coreport.Logger, timeProvider coreport.TimeProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := timeProvider.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		fields := map[string]any{
			"method":     c.Request.Method,
			"path":       path,
			"status":     c.Writer.Status(),
			"latency_ms": timeProvider.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		if c.Writer.Status() >= 500 {
			logger.Error("API request failed", fields)
			return
		}
		logger.Info("API request", fields)
	}
}
