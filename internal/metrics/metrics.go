// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics exposes Prometheus instrumentation for rendering,
// batch generation, and the designer. All observer methods are nil-safe
// so packages can run without metrics wired.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every collector the service registers.
type Metrics struct {
	// Badge renders by context ("preview" or "batch")
	RendersTotal *prometheus.CounterVec

	// Single-badge render latency
	RenderDuration prometheus.Histogram

	// Badges produced by batch runs
	BadgesGenerated prometheus.Counter

	// Whole batch run latency by output format
	BatchDuration *prometheus.HistogramVec

	// Render cache lookups by result ("hit", "miss", "error")
	CacheEvents *prometheus.CounterVec

	// Designer sessions currently open
	SessionsActive prometheus.Gauge
}

// New creates a Metrics instance with all collectors registered on the
// default registry.
func New() *Metrics {
	return &Metrics{
		RendersTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "badgepress_renders_total",
			Help: "Total badge renders by calling context",
		}, []string{"context"}),

		RenderDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "badgepress_render_duration_seconds",
			Help:    "Duration of a single badge render",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		BadgesGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "badgepress_badges_generated_total",
			Help: "Total badges produced by batch generation",
		}),

		BatchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "badgepress_batch_duration_seconds",
			Help:    "Duration of a full batch generation run by output format",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"format"}),

		CacheEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "badgepress_render_cache_events_total",
			Help: "Render cache lookups by result",
		}, []string{"result"}),

		SessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "badgepress_designer_sessions_active",
			Help: "Designer sessions currently open",
		}),
	}
}

// ObserveRender records one badge render and its duration.
func (m *Metrics) ObserveRender(context string, d time.Duration) {
	if m != nil {
		m.RendersTotal.WithLabelValues(context).Inc()
		m.RenderDuration.Observe(d.Seconds())
	}
}

// ObserveBatch records a completed batch run.
func (m *Metrics) ObserveBatch(format string, badges int, d time.Duration) {
	if m != nil {
		m.BatchDuration.WithLabelValues(format).Observe(d.Seconds())
		m.BadgesGenerated.Add(float64(badges))
	}
}

// CacheEvent counts one render cache lookup result.
func (m *Metrics) CacheEvent(result string) {
	if m != nil {
		m.CacheEvents.WithLabelValues(result).Inc()
	}
}

// SetSessionsActive publishes the open designer session count.
func (m *Metrics) SetSessionsActive(n int) {
	if m != nil {
		m.SessionsActive.Set(float64(n))
	}
}
