package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveSend(t *testing.T) {
	m := New()
	m.ObserveSend("gmail", nil, 3)
	m.ObserveSend("gmail", errors.New("quota"), 5)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.sendAttempts.WithLabelValues("gmail", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sendAttempts.WithLabelValues("gmail", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.recipients))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveSend("ses", nil, 1)
	m.ObserveFire("sent")
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/users/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", m.Handler())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/users/42", nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/users/{id}", "418")))

	m.ObserveFire("sent")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `massmail_scheduled_fires_total{outcome="sent"} 1`)
}
