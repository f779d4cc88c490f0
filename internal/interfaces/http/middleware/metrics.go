package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/socialhomes/CaseClock/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request counts and latencies.  The path label uses the
// route template, not the raw URL, so case ids do not explode cardinality.
func Metrics(metrics *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
