package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ReservationAdmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservation_admissions_total",
			Help: "Reservation submissions by outcome",
		},
		[]string{"outcome"},
	)
	ReservationTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservation_transitions_total",
			Help: "Reservation lifecycle transitions by name and outcome",
		},
		[]string{"transition", "outcome"},
	)
)

// Route returns the registered route pattern so that ids in the path do not
// explode label cardinality.
func Route(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return "unmatched"
}

func Middleware(c *gin.Context) {
	if c.Request.URL.Path == "/metrics" {
		c.Next()
		return
	}
	start := time.Now()
	c.Next()
	duration := time.Since(start).Seconds()
	route := Route(c)
	status := strconv.Itoa(c.Writer.Status())
	RequestTotal.WithLabelValues(c.Request.Method, route, status).Inc()
	RequestDuration.WithLabelValues(c.Request.Method, route).Observe(duration)
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
