package middleware

import (
	"time"

	"finflow/internal/logging"

	"github.com/gin-gonic/gin"
)

// RequestLogger writes one line per request at a level matching its status.
func RequestLogger(log *logging.Logger) gin.HandlerFunc {
	log = log.WithComponent(logging.ComponentHTTP)
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("request", attrs...)
		case status >= 400:
			log.Warn("request", attrs...)
		default:
			log.Info("request", attrs...)
		}
	}
}
