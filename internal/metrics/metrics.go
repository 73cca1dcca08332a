// Package metrics holds the Prometheus collectors for the RSVP service.
//
// Every collector is registered on the Metrics' own registry so tests and
// parallel servers never collide on the global default registry. All record
// methods are safe on a nil *Metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rsvp"

// Preference submission kinds.
const (
	KindInitial = "initial"
	KindUpdate  = "update"
)

// Preference submission results.
const (
	ResultApplied  = "applied"
	ResultRejected = "rejected"
	ResultError    = "error"
)

type Metrics struct {
	Registry *prometheus.Registry

	// TicketsCreated counts persisted tickets.
	// Labels: category (regular, vip)
	TicketsCreated *prometheus.CounterVec

	// CodeCollisions counts generated codes that were already taken.
	CodeCollisions prometheus.Counter

	// PreferenceSubmissions counts preference writes.
	// Labels: kind (initial, update), result (applied, rejected, error)
	PreferenceSubmissions *prometheus.CounterVec

	// HTTPRequests counts handled requests.
	// Labels: method, route, status
	HTTPRequests *prometheus.CounterVec

	// HTTPDuration measures handler latency.
	// Labels: method, route
	HTTPDuration *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		TicketsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tickets",
			Name:      "created_total",
			Help:      "Tickets persisted, by category",
		}, []string{"category"}),
		CodeCollisions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tickets",
			Name:      "code_collisions_total",
			Help:      "Generated ticket codes rejected as duplicates",
		}),
		PreferenceSubmissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "preferences",
			Name:      "submissions_total",
			Help:      "Preference submissions by kind and result",
		}, []string{"kind", "result"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) RecordTicketCreated(category string) {
	if m == nil {
		return
	}
	m.TicketsCreated.WithLabelValues(category).Inc()
}

func (m *Metrics) RecordCodeCollision() {
	if m == nil {
		return
	}
	m.CodeCollisions.Inc()
}

func (m *Metrics) RecordPreferenceSubmission(kind, result string) {
	if m == nil {
		return
	}
	m.PreferenceSubmissions.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
