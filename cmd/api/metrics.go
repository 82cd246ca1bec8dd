package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Process-level Prometheus metrics for the API binary. Engine metrics flow
// through OpenTelemetry; these cover the HTTP surface for scrape-based
// alerting without an OTLP pipeline.

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "risk",
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "risk",
			Subsystem: "api",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
		},
		[]string{"method"},
	)
)

// metricsHandler wraps the Prometheus scrape endpoint with request counting
func metricsHandler() http.Handler {
	return promhttp.InstrumentHandlerDuration(httpRequestDuration,
		promhttp.InstrumentHandlerCounter(httpRequestsTotal, promhttp.Handler()))
}
