package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the HTTP and report collectors. It implements the report
// service's Recorder.
type Metrics struct {
	requests   *prometheus.CounterVec
	inFlight   prometheus.Gauge
	duration   *prometheus.HistogramVec
	generated  prometheus.Counter
	deleted    prometheus.Counter
	genFailed  prometheus.Counter
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
}

// NewMetrics registers the collectors on reg. A nil reg gets a private
// registry so tests can build several instances.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "procdoc_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "procdoc_http_requests_in_flight",
			Help: "HTTP requests currently being served.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "procdoc_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		generated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "procdoc_reports_generated_total",
			Help: "Reports written to the output directory.",
		}),
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "procdoc_reports_deleted_total",
			Help: "Reports removed by delete or cleanup.",
		}),
		genFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "procdoc_report_generate_failures_total",
			Help: "Report generations that failed to render or save.",
		}),
		registerer: reg,
		gatherer:   reg,
	}
	reg.MustRegister(m.requests, m.inFlight, m.duration, m.generated, m.deleted, m.genFailed)
	return m
}

func (m *Metrics) Generated()    { m.generated.Inc() }
func (m *Metrics) Deleted(n int) { m.deleted.Add(float64(n)) }
func (m *Metrics) Failed()       { m.genFailed.Inc() }

// Middleware tracks request counts and latency by chi route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.inFlight.Inc()
		defer m.inFlight.Dec()
		start := time.Now()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{Registry: m.registerer})
}
