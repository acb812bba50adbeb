package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "imager",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "imager",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// PhotoUploadsTotal counts stored images, labelled by outcome.
	PhotoUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "imager",
			Name:      "photo_uploads_total",
			Help:      "Photo uploads by result.",
		},
		[]string{"result"},
	)
)
