// Package metrics collects and exposes Prometheus metrics for the
// dashboard frontend: inbound request counts and latency, and the
// latency and status of outbound backend calls.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector registers and records the service metrics.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestLatency  prometheus.Histogram
	upstreamTotal   *prometheus.CounterVec
	upstreamLatency prometheus.Histogram
	sessionOutcomes *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dash_http_requests_total",
			Help: "Inbound HTTP requests by method and status code.",
		}, []string{"method", "status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dash_http_request_seconds",
			Help:    "Inbound HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dash_upstream_requests_total",
			Help: "Outbound backend API calls by method and status code.",
		}, []string{"method", "status_code"}),
		upstreamLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dash_upstream_request_seconds",
			Help:    "Outbound backend API call latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		sessionOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dash_session_resolutions_total",
			Help: "Session resolutions by outcome: authenticated, anonymous or rejected.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		c.requestsTotal,
		c.requestLatency,
		c.upstreamTotal,
		c.upstreamLatency,
		c.sessionOutcomes,
	)

	return c
}

// RecordRequest records one inbound request.
func (c *Collector) RecordRequest(method string, statusCode int, duration time.Duration) {
	c.requestsTotal.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	c.requestLatency.Observe(duration.Seconds())
}

// RecordUpstream records one outbound backend call. statusCode 0 marks a
// transport failure.
func (c *Collector) RecordUpstream(method string, statusCode int, duration time.Duration) {
	c.upstreamTotal.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	c.upstreamLatency.Observe(duration.Seconds())
}

// RecordSession records a session resolution outcome.
func (c *Collector) RecordSession(outcome string) {
	c.sessionOutcomes.WithLabelValues(outcome).Inc()
}

// Middleware instruments an http.Handler with request metrics.
func (c *Collector) Middleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		h.ServeHTTP(recorder, r)

		c.RecordRequest(r.Method, recorder.status, time.Since(start))
	})
}

// Handler returns the /metrics scrape handler for the given gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
