package service

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the API surface.
type Metrics struct {
	RequestsTotal   prometheus.Counter
	RequestErrors   prometheus.Counter
	UpstreamCalls   prometheus.Counter
	UpstreamErrors  prometheus.Counter
	RequestDuration prometheus.Histogram
}

// NewMetrics registers the service metrics with reg. Pass
// prometheus.DefaultRegisterer in production; tests use a fresh registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "resonate_api_requests_total",
			Help: "The total number of API requests handled",
		}),
		RequestErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "resonate_api_request_errors_total",
			Help: "The total number of API requests that returned an error status",
		}),
		UpstreamCalls: factory.NewCounter(prometheus.CounterOpts{
			Name: "resonate_upstream_calls_total",
			Help: "The total number of calls made to upstream services",
		}),
		UpstreamErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "resonate_upstream_errors_total",
			Help: "The total number of upstream calls that failed",
		}),
		RequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "resonate_api_request_duration_seconds",
			Help:    "The duration of API request handling in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Instrument records request counts and latency for every route.
func (m *Metrics) Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		m.RequestsTotal.Inc()
		m.RequestDuration.Observe(time.Since(start).Seconds())
		if c.Writer.Status() >= 400 {
			m.RequestErrors.Inc()
		}
	}
}
