package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tirs/dashboard/internal/service"
)

// Metrics records one observation per request against the route template,
// so /users/42 and /users/7 land in the same series.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			// Unmatched routes (404s) all share one bucket to keep
			// cardinality bounded.
			route = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
