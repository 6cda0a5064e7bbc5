package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hrops-platform/scheduling-service/pkg/metrics"
)

// metricsExcludedPaths are not worth a time series of their own. Skipping
// /metrics also avoids the scrape showing up in its own numbers.
var metricsExcludedPaths = map[string]bool{
	"/metrics": true,
	"/health":  true,
	"/ready":   true,
}

// MetricsMiddleware records request count, duration and in-flight gauge
// for every handled request. The route template is used as the path
// label so /shifts/:id does not explode cardinality.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsExcludedPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		m.IncrementHTTPRequestsInFlight()
		defer m.DecrementHTTPRequestsInFlight()

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			// No route matched, fall back to the raw path.
			path = c.Request.URL.Path
		}
		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

// MetricsEndpoint serves the Prometheus scrape endpoint.
func MetricsEndpoint(m *metrics.Metrics) gin.HandlerFunc {
	handler := m.Handler()
	return func(c *gin.Context) {
		handler.ServeHTTP(c.Writer, c.Request)
	}
}
