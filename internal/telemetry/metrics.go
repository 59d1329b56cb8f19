// Package telemetry defines the Prometheus collectors exported on /metrics.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "axpro"

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
		},
		[]string{"method", "route"},
	)

	sheetFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sheet",
			Name:      "fetch_total",
			Help:      "Sheet CSV fetches by outcome",
		},
		[]string{"outcome"},
	)

	sheetFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sheet",
			Name:      "fetch_duration_seconds",
			Help:      "Sheet CSV fetch latency",
			Buckets:   prometheus.DefBuckets,
		},
	)

	fallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregates",
			Name:      "fallback_total",
			Help:      "Aggregations served from fabricated data, by reason",
		},
		[]string{"reason"},
	)

	estimatedRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregates",
			Name:      "estimated_rows_total",
			Help:      "Estimated rows produced, by estimation mode",
		},
		[]string{"mode"},
	)

	activityCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "activity",
			Name:      "cache_lookups_total",
			Help:      "Message activity cache lookups by result",
		},
		[]string{"result"},
	)
)

// ObserveSheetFetch records one sheet fetch attempt.
func ObserveSheetFetch(outcome string, elapsed time.Duration) {
	sheetFetchTotal.WithLabelValues(outcome).Inc()
	sheetFetchDuration.Observe(elapsed.Seconds())
}

// RecordFallback counts an aggregation that fell back to fabricated rows.
func RecordFallback(reason string) {
	fallbackTotal.WithLabelValues(reason).Inc()
}

// RecordEstimatedRows adds n estimated rows produced under mode.
func RecordEstimatedRows(mode string, n int) {
	if n > 0 {
		estimatedRows.WithLabelValues(mode).Add(float64(n))
	}
}

// RecordCacheLookup counts a message activity cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	activityCacheTotal.WithLabelValues(result).Inc()
}

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
