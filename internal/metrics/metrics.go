// Package metrics exposes prometheus collectors for the HTTP surfaces and
// the publishing workflow.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collectors struct {
	gatherer prometheus.Gatherer

	requests  *prometheus.CounterVec
	durations *prometheus.HistogramVec
	inFlight  prometheus.Gauge
	rejected  *prometheus.CounterVec
	published *prometheus.CounterVec
	pruned    prometheus.Counter
	commands  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Collectors {
	return NewWithRegistry(prometheus.NewRegistry())
}

func NewWithRegistry(reg *prometheus.Registry) *Collectors {
	c := &Collectors{
		gatherer: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lis_http_requests_total",
			Help: "Total number of HTTP requests processed",
		}, []string{"method", "route", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lis_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lis_http_inflight_requests",
			Help: "Number of HTTP requests currently being served",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lis_api_rejected_requests_total",
			Help: "API requests rejected before reaching a handler",
		}, []string{"reason"}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lis_pages_published_total",
			Help: "Revisions published, by page kind",
		}, []string{"kind"}),
		pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lis_renditions_pruned_total",
			Help: "Image renditions removed by pruning",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lis_commands_total",
			Help: "Command executions, by message type and result code",
		}, []string{"command", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lis_command_duration_seconds",
			Help:    "Command execution time in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
	}
	reg.MustRegister(c.requests, c.durations, c.inFlight, c.rejected, c.published, c.pruned, c.commands, c.latency)
	return c
}

// Handler serves the registry in the prometheus text format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// Instrument records count, latency and in-flight gauge for next. Routes are
// labelled by their pattern to keep cardinality low.
func (c *Collectors) Instrument(route string, next http.Handler) http.Handler {
	if c == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		c.inFlight.Inc()
		defer c.inFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		labels := prometheus.Labels{
			"method": r.Method,
			"route":  route,
			"status": strconv.Itoa(rec.status),
		}
		c.requests.With(labels).Inc()
		c.durations.With(labels).Observe(time.Since(start).Seconds())
	})
}

func (c *Collectors) Rejected(reason string) {
	if c != nil {
		c.rejected.WithLabelValues(reason).Inc()
	}
}

func (c *Collectors) Published(kind string) {
	if c != nil {
		c.published.WithLabelValues(kind).Inc()
	}
}

func (c *Collectors) Pruned(n int) {
	if c != nil {
		c.pruned.Add(float64(n))
	}
}

// Command records one execution. result is "ok" or the error code.
func (c *Collectors) Command(name, result string, took time.Duration) {
	if c == nil {
		return
	}
	c.commands.WithLabelValues(name, result).Inc()
	c.latency.WithLabelValues(name).Observe(took.Seconds())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
