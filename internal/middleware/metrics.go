// Package middleware holds gin middleware that depends on internal
// services.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hallplan/exam-scheduler-api/internal/service"
)

// Metrics records one observation per request. The route template is
// used as the path label so path parameters don't explode cardinality;
// requests that matched no route share a single bucket.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}

		started := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(started))
	}
}
