// Package metrics exposes Prometheus counters for sends, scheduler fires and
// HTTP traffic. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the console's collectors.
type Metrics struct {
	gatherer prometheus.Gatherer

	sendAttempts   *prometheus.CounterVec
	recipients     prometheus.Counter
	scheduledFires *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		gatherer: reg,
		sendAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "massmail_send_attempts_total",
			Help: "Mail API send calls by provider and result",
		}, []string{"provider", "result"}),
		recipients: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "massmail_recipients_counted_total",
			Help: "Unique recipients added to sender counters",
		}),
		scheduledFires: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "massmail_scheduled_fires_total",
			Help: "Scheduled email fires by outcome",
		}, []string{"outcome"}), // sent|failed|skipped|locked
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "massmail_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "massmail_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.sendAttempts, m.recipients, m.scheduledFires, m.httpRequests, m.httpDuration)
	return m
}

// ObserveSend records one mail API call and, on success, the counted recipients.
func (m *Metrics) ObserveSend(provider string, err error, recipients int) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.sendAttempts.WithLabelValues(provider, result).Inc()
	if err == nil {
		m.recipients.Add(float64(recipients))
	}
}

// ObserveFire records a scheduler fire outcome.
func (m *Metrics) ObserveFire(outcome string) {
	if m == nil {
		return
	}
	m.scheduledFires.WithLabelValues(outcome).Inc()
}

// Handler serves /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
