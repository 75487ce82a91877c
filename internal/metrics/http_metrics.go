package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestCounter counts all HTTP requests with labels
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	// RequestDurationHistogram records request duration in seconds
	RequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	// UploadRowsProcessed counts inventory upload rows by outcome
	UploadRowsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_upload_rows_total",
			Help: "Total inventory upload rows processed by outcome",
		},
		[]string{"outcome"},
	)
)

// HTTPMetrics records request metrics for one service
type HTTPMetrics struct {
	ServiceName string
	initialized bool
}

// NewHTTPMetrics creates a metrics collector and registers the collectors
func NewHTTPMetrics(serviceName string) *HTTPMetrics {
	m := &HTTPMetrics{ServiceName: serviceName}
	m.register()
	return m
}

func (m *HTTPMetrics) register() {
	if !m.initialized {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDurationHistogram)
		prometheus.MustRegister(UploadRowsProcessed)
		m.initialized = true
	}
}

// Middleware records request count and duration per route template
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		RequestCounter.WithLabelValues(m.ServiceName, c.Request.Method, path, status).Inc()
		RequestDurationHistogram.WithLabelValues(m.ServiceName, c.Request.Method, path, status).
			Observe(time.Since(start).Seconds())
	}
}

// RecordUploadRows tracks reconciliation outcomes for one upload
func RecordUploadRows(updated, created, errored int) {
	UploadRowsProcessed.WithLabelValues("updated").Add(float64(updated))
	UploadRowsProcessed.WithLabelValues("created").Add(float64(created))
	UploadRowsProcessed.WithLabelValues("errored").Add(float64(errored))
}

// GetPrometheusHandler returns the handler for the /metrics endpoint
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}
