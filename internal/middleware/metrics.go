package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/terreiro-erp-api/internal/service"
)

// UnmatchedRoute labels requests that hit no registered route.
const UnmatchedRoute = "unmatched"

// Metrics records latency and status per route template. Paths listed in
// skip, such as the scrape endpoint itself, are not observed.
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, path := range skip {
		skipped[path] = struct{}{}
	}
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		route := c.FullPath()
		if _, ok := skipped[route]; ok {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		if route == "" {
			route = UnmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
