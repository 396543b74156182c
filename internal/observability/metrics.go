package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the content service. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPInflight        prometheus.Gauge

	ContentMutations *prometheus.CounterVec
	ContentReads     *prometheus.CounterVec
	VersionsCreated  prometheus.Counter
	Migrations       *prometheus.CounterVec

	ToolCalls       *prometheus.CounterVec
	EventsPublished *prometheus.CounterVec
}

var (
	metricsOnce   sync.Once
	sharedMetrics *Metrics
)

// NewMetrics registers the collectors on the default registry once and
// returns the shared set.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		sharedMetrics = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "content_http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "route", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "content_http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "route"},
			),
			HTTPInflight: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "content_http_inflight_requests",
					Help: "Requests currently being served",
				},
			),
			ContentMutations: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "content_mutations_total",
					Help: "Content write attempts by kind, operation and outcome",
				},
				[]string{"kind", "operation", "outcome"},
			),
			ContentReads: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "content_reads_total",
					Help: "Tracked content reads by kind",
				},
				[]string{"kind"},
			),
			VersionsCreated: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "content_template_versions_created_total",
					Help: "Template schema versions created",
				},
			),
			Migrations: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "content_activity_migrations_total",
					Help: "Explicit activity migrations by outcome",
				},
				[]string{"outcome"},
			),
			ToolCalls: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "content_agent_tool_calls_total",
					Help: "Agent tool calls by tool and outcome",
				},
				[]string{"tool", "outcome"},
			),
			EventsPublished: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "content_events_published_total",
					Help: "Realtime events published by event and result",
				},
				[]string{"event", "result"},
			),
		}
	})
	return sharedMetrics
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) InflightInc() {
	if m == nil {
		return
	}
	m.HTTPInflight.Inc()
}

func (m *Metrics) InflightDec() {
	if m == nil {
		return
	}
	m.HTTPInflight.Dec()
}

func (m *Metrics) RecordMutation(kind, operation, outcome string) {
	if m == nil {
		return
	}
	m.ContentMutations.WithLabelValues(kind, operation, outcome).Inc()
}

func (m *Metrics) RecordRead(kind string) {
	if m == nil {
		return
	}
	m.ContentReads.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordVersionCreated() {
	if m == nil {
		return
	}
	m.VersionsCreated.Inc()
}

func (m *Metrics) RecordMigration(outcome string) {
	if m == nil {
		return
	}
	m.Migrations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordToolCall(tool, outcome string) {
	if m == nil {
		return
	}
	m.ToolCalls.WithLabelValues(tool, outcome).Inc()
}

func (m *Metrics) RecordEvent(event string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(event, result).Inc()
}
