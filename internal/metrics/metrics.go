// Package metrics exposes drag activity as Prometheus metrics.
//
// Metrics implements drag.Observer. Each instance owns its registry, so
// tests and multiple controllers do not collide on the default one.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the drag collectors.
type Metrics struct {
	registry *prometheus.Registry

	// GesturesStarted counts gestures by element.
	GesturesStarted *prometheus.CounterVec

	// GesturesEnded counts completed gestures by element.
	GesturesEnded *prometheus.CounterVec

	// Moves counts position changes during gestures by element.
	Moves *prometheus.CounterVec

	// Clamped counts moves that were pulled back inside the bounds.
	Clamped *prometheus.CounterVec

	// ActiveGestures is the number of gestures in progress.
	ActiveGestures prometheus.Gauge

	// ConfigReloads counts configuration reloads by status (ok/error).
	ConfigReloads *prometheus.CounterVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		GesturesStarted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drag_gestures_started_total",
				Help: "Total drag gestures started by element",
			},
			[]string{"element"},
		),
		GesturesEnded: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drag_gestures_ended_total",
				Help: "Total drag gestures ended by element",
			},
			[]string{"element"},
		),
		Moves: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drag_moves_total",
				Help: "Total position changes during drag gestures by element",
			},
			[]string{"element"},
		),
		Clamped: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drag_moves_clamped_total",
				Help: "Total moves constrained by a bounding rectangle by element",
			},
			[]string{"element"},
		),
		ActiveGestures: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "drag_gestures_active",
				Help: "Number of drag gestures in progress",
			},
		),
		ConfigReloads: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "config_reloads_total",
				Help: "Total configuration reloads by status",
			},
			[]string{"status"},
		),
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// GestureStarted implements drag.Observer.
func (m *Metrics) GestureStarted(element string) {
	m.GesturesStarted.WithLabelValues(element).Inc()
	m.ActiveGestures.Inc()
}

// PositionChanged implements drag.Observer.
func (m *Metrics) PositionChanged(element string, clamped bool) {
	m.Moves.WithLabelValues(element).Inc()
	if clamped {
		m.Clamped.WithLabelValues(element).Inc()
	}
}

// GestureEnded implements drag.Observer.
func (m *Metrics) GestureEnded(element string) {
	m.GesturesEnded.WithLabelValues(element).Inc()
	m.ActiveGestures.Dec()
}

// ConfigReloaded records the outcome of a configuration reload.
func (m *Metrics) ConfigReloaded(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ConfigReloads.WithLabelValues(status).Inc()
}
