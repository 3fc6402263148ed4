package observability

import (
	"context"

	"github.com/aretw0/gibbs/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// OutcomeSuccess labels calculations that produced a product.
const OutcomeSuccess = "success"

// Metrics holds the Prometheus collectors fed by reactor hooks.
type Metrics struct {
	transitions  *prometheus.CounterVec
	calculations *prometheus.CounterVec
	duration     prometheus.Histogram
	gibbs        *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil registerer leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gibbs_lifecycle_transitions_total",
				Help: "Total number of lifecycle calls per event type",
			},
			[]string{"event"},
		),
		calculations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gibbs_calculations_total",
				Help: "Total number of calculations by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gibbs_calculation_duration_seconds",
				Help:    "Duration of Calculate calls",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		gibbs: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gibbs_final_gibbs_energy",
				Help: "Gibbs energy of the last minimized product per unit",
			},
			[]string{"unit"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.transitions, m.calculations, m.duration, m.gibbs)
	}
	return m
}

// Hooks returns lifecycle hooks recording into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnLifecycle: func(_ context.Context, e *domain.LifecycleEvent) {
			m.transitions.WithLabelValues(string(e.Type)).Inc()
			if e.Type != domain.EventCalculate {
				return
			}
			m.calculations.WithLabelValues(Outcome(e.Err)).Inc()
			m.duration.Observe(e.Duration.Seconds())
		},
		OnMinimized: func(_ context.Context, e *domain.MinimizedEvent) {
			m.gibbs.WithLabelValues(e.Unit).Set(e.GibbsEnergy)
		},
	}
}

// Outcome maps a calculation error to its metric label.
func Outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	if kind := domain.KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}
