// Package metrics exposes Prometheus counters for portal and API activity.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "refsched"

// Login results
const (
	LoginOK     = "ok"
	LoginFailed = "failed"
)

// Metrics holds the collectors registered for one process.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	portalLogins    *prometheus.CounterVec
	sessionRebuilds prometheus.Counter
	searches        *prometheus.CounterVec
	rowFailures     prometheus.Counter
	searchDuration  prometheus.Histogram
	httpRequests    *prometheus.CounterVec
}

// New registers the collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers the collectors on reg and serves them from gatherer
func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: gatherer,
		portalLogins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "portal_logins_total",
			Help:      "Portal login attempts by result.",
		}, []string{"result"}),
		sessionRebuilds: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_rebuilds_total",
			Help:      "Portal sessions built because none existed or the previous one was stale.",
		}),
		searches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Referee searches by outcome.",
		}, []string{"outcome"}),
		rowFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "row_failures_total",
			Help:      "Listing rows that could not be parsed.",
		}),
		searchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of one referee search including page parsing.",
			Buckets:   prometheus.DefBuckets,
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests by route and status code.",
		}, []string{"route", "code"}),
	}
}

// RecordLogin counts one login attempt
func (m *Metrics) RecordLogin(err error) {
	if m == nil {
		return
	}
	result := LoginOK
	if err != nil {
		result = LoginFailed
	}
	m.portalLogins.WithLabelValues(result).Inc()
}

// RecordSessionRebuild counts one session build
func (m *Metrics) RecordSessionRebuild() {
	if m == nil {
		return
	}
	m.sessionRebuilds.Inc()
}

// RecordSearch counts one search with its outcome, failed rows and duration
func (m *Metrics) RecordSearch(outcome string, failures int, took time.Duration) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(outcome).Inc()
	m.rowFailures.Add(float64(failures))
	m.searchDuration.Observe(took.Seconds())
}

// RecordRequest counts one API request
func (m *Metrics) RecordRequest(route string, code int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
