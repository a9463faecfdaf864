package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/low-k3YLTD/equine-oracle-backend/pkg/logger"
)

// LoggerMiddleware emits one access-log line per request after the handler
// chain completes. The request id comes from the request context set by
// RequestIDMiddleware.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		if raw != "" {
			path = path + "?" + raw
		}

		logger.LogRequest(c.Request.Context(), c.Request.Method, path, c.Writer.Status(), latency, c.ClientIP())
	}
}
