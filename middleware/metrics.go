package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route, and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	scoreSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "score_submissions_total",
			Help: "Score submissions by outcome (accepted, banned, rejected).",
		},
		[]string{"outcome"},
	)
)

// PrometheusMiddleware records request counts and latencies. The route
// template (not the raw path) labels the series, so /user/:name stays one
// series regardless of the player.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		httpRequestsTotal.WithLabelValues(
			c.Request.Method, route, strconv.Itoa(c.Writer.Status()),
		).Inc()
		httpRequestDuration.WithLabelValues(
			c.Request.Method, route,
		).Observe(time.Since(start).Seconds())
	}
}

// CountScoreSubmission bumps the submission outcome counter.
func CountScoreSubmission(outcome string) {
	scoreSubmissionsTotal.WithLabelValues(outcome).Inc()
}
