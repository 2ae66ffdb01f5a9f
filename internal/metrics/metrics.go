// Package metrics exposes render and session counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "roadmap"

// Metrics owns a private registry so several servers (and tests) can run in
// one process without duplicate registration panics.
type Metrics struct {
	registry       *prometheus.Registry
	rendersTotal   *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	wsConnections  prometheus.Gauge
	rateLimited    prometheus.Counter
}

// New registers the collectors. activeSessions is sampled on every scrape.
func New(activeSessions func() int) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rendersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "renders_total",
				Help:      "Total renders by topic and outcome.",
			},
			[]string{"topic", "outcome"},
		),
		renderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "render_duration_seconds",
				Help:      "Render duration in seconds by topic.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"topic"},
		),
		wsConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "websocket_connections",
				Help:      "Currently open websocket connections.",
			},
		),
		rateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_events_total",
				Help:      "Websocket events rejected by the per-session rate limit.",
			},
		),
	}

	m.registry.MustRegister(
		m.rendersTotal,
		m.renderDuration,
		m.wsConnections,
		m.rateLimited,
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_sessions",
				Help:      "Current active session count.",
			},
			func() float64 {
				if activeSessions == nil {
					return 0
				}
				return float64(activeSessions())
			},
		),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRender records one render.
func (m *Metrics) ObserveRender(topic, outcome string, elapsed time.Duration) {
	m.rendersTotal.WithLabelValues(topic, outcome).Inc()
	m.renderDuration.WithLabelValues(topic).Observe(elapsed.Seconds())
}

// ConnectionOpened and ConnectionClosed track open websocket connections.
func (m *Metrics) ConnectionOpened() { m.wsConnections.Inc() }

func (m *Metrics) ConnectionClosed() { m.wsConnections.Dec() }

// RateLimited counts one rejected websocket event.
func (m *Metrics) RateLimited() { m.rateLimited.Inc() }

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
