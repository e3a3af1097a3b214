// Package metrics exposes Prometheus collectors for HTTP traffic and checkout.
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
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamticket_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "streamticket_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	checkoutLines = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamticket_checkout_lines_total",
			Help: "Checkout line items by outcome",
		},
		[]string{"outcome"},
	)

	ticketsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streamticket_tickets_issued_total",
		Help: "Tickets issued by committed checkouts",
	})

	checkoutFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streamticket_checkout_rollbacks_total",
		Help: "Checkouts rolled back because of a storage error",
	})

	eventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streamticket_events_dropped_total",
		Help: "Order events that could not be queued or written",
	})
)

// Middleware records request counts and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// RecordCheckoutLine counts one processed line item by outcome (fulfilled, skipped, failed).
func RecordCheckoutLine(outcome string) {
	checkoutLines.WithLabelValues(outcome).Inc()
}

// RecordTicketsIssued adds n committed tickets.
func RecordTicketsIssued(n int) {
	ticketsIssued.Add(float64(n))
}

// RecordCheckoutRollback counts one rolled back checkout.
func RecordCheckoutRollback() {
	checkoutFailures.Inc()
}

// RecordEventDropped counts one order event lost before reaching the broker.
func RecordEventDropped() {
	eventsDropped.Inc()
}
