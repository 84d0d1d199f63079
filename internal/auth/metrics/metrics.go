// Package metrics holds the Prometheus collectors for the authorization
// server. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "miniboss"

// Grant transitions.
const (
	TransitionStart      = "start"
	TransitionBind       = "bind"
	TransitionIssueCode  = "issue_code"
	TransitionExchange   = "exchange"
	TransitionIntrospect = "introspect"
)

// OutcomeOK labels a successful transition. Failures are labelled with
// their OAuth2 error code.
const OutcomeOK = "ok"

type Metrics struct {
	registry *prometheus.Registry

	grantTransitions *prometheus.CounterVec
	reaped           *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		grantTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grant_transitions_total",
			Help:      "Authorization grant state transitions by outcome.",
		}, []string{"transition", "outcome"}),
		reaped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "housekeeping_deleted_total",
			Help:      "Expired rows removed by the housekeeping worker.",
		}, []string{"table"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "code", "method"}),
	}
	reg.MustRegister(m.grantTransitions, m.reaped, m.httpDuration)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// GrantTransition counts one transition attempt.
func (m *Metrics) GrantTransition(transition, outcome string) {
	if m == nil {
		return
	}
	m.grantTransitions.WithLabelValues(transition, outcome).Inc()
}

// Reaped adds n deleted rows for table.
func (m *Metrics) Reaped(table string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.reaped.WithLabelValues(table).Add(float64(n))
}

// InstrumentHandler observes request latency for h under the given route
// label.
func (m *Metrics) InstrumentHandler(route string, h http.Handler) http.Handler {
	if m == nil {
		return h
	}
	obs := m.httpDuration.MustCurryWith(prometheus.Labels{"route": route})
	return promhttp.InstrumentHandlerDuration(obs, h)
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
