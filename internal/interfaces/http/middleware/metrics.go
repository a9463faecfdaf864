package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/low-k3YLTD/equine-oracle-backend/pkg/metrics"
)

// MetricsMiddleware records request latency per route. The route template
// (not the raw path) keys the histogram so path parameters do not explode
// label cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
