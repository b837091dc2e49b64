// Package metrics provides Prometheus collectors for the work-log service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// httpRequestsTotal counts handled requests.
	// Labels:
	//   - method: HTTP method
	//   - route: matched route pattern, or "static" for file serving
	//   - status: response status code
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worklog_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "worklog_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// imageFilesTotal counts upload file operations.
	// Labels:
	//   - op: "save" or "remove"
	//   - result: "ok", "missing", "rejected" or "error"
	imageFilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worklog_image_files_total",
			Help: "Total number of image file operations by outcome",
		},
		[]string{"op", "result"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(imageFilesTotal)
}

// ObserveRequest records one finished HTTP request.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordImageFile records the outcome of a save or remove on the upload directory.
func RecordImageFile(op, result string) {
	imageFilesTotal.WithLabelValues(op, result).Inc()
}
