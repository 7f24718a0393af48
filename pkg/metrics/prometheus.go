// Package metrics provides Prometheus metrics for the rating engine.
// Collection is optional: when no manager is installed every recorder is a
// no-op, so the engine never depends on a metrics endpoint being up.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager holds the engine's Prometheus collectors.
type Manager struct {
	namespace string
	subsystem string
	enabled   bool
	registry  *prometheus.Registry

	boutsJudged       *prometheus.CounterVec
	eliminations      prometheus.Counter
	redistributions   prometheus.Counter
	entrantsRemoved   prometheus.Counter
	entrantsTracked   prometheus.Gauge
	knockoutRemaining prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// NewManager creates a Manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "duelo",
		subsystem: "engine",
		enabled:   true,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.boutsJudged = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "bouts_judged_total",
		Help:      "Judged bouts by base result (A, B, tie).",
	}, []string{"result"})

	m.eliminations = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "eliminations_total",
		Help:      "Knockout eliminations recorded.",
	})

	m.redistributions = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "redistributions_total",
		Help:      "Elo redistributions applied after entrant removal.",
	})

	m.entrantsRemoved = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "entrants_removed_total",
		Help:      "Entrants removed from the ladder.",
	})

	m.entrantsTracked = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "entrants_tracked",
		Help:      "Entrants currently tracked in the store.",
	})

	m.knockoutRemaining = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "knockout_remaining",
		Help:      "Active entrants remaining in the knockout scope.",
	})

	return m
}

// Install makes m the global manager used by the package-level recorders.
func Install(m *Manager) {
	globalManager = m
}

// Handler exposes the manager's registry for scraping.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordBoutJudged counts one judged bout by base result.
func RecordBoutJudged(result string) {
	if globalManager != nil && globalManager.enabled {
		globalManager.boutsJudged.WithLabelValues(result).Inc()
	}
}

// RecordElimination counts one knockout elimination.
func RecordElimination() {
	if globalManager != nil && globalManager.enabled {
		globalManager.eliminations.Inc()
	}
}

// RecordRedistribution counts one applied Elo redistribution.
func RecordRedistribution() {
	if globalManager != nil && globalManager.enabled {
		globalManager.redistributions.Inc()
	}
}

// RecordEntrantRemoved counts one entrant removal.
func RecordEntrantRemoved() {
	if globalManager != nil && globalManager.enabled {
		globalManager.entrantsRemoved.Inc()
	}
}

// UpdateEntrantsTracked sets the tracked-entrant gauge.
func UpdateEntrantsTracked(count int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.entrantsTracked.Set(float64(count))
	}
}

// UpdateKnockoutRemaining sets the remaining-entrant gauge.
func UpdateKnockoutRemaining(count int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.knockoutRemaining.Set(float64(count))
	}
}
