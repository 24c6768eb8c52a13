// Package metrics exposes Prometheus instruments for council activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "arcane_codex_council"

// Metrics holds the council counters. A nil *Metrics records nothing.
type Metrics struct {
	convened       *prometheus.CounterVec
	votes          *prometheus.CounterVec
	applied        *prometheus.CounterVec
	applyRejected  prometheus.Counter
	favorDelta     *prometheus.CounterVec
	effectsExpired prometheus.Counter
	weightedScore  prometheus.Histogram
}

// New registers the council metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		convened: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "convened_total",
				Help:      "councils convened, by outcome tier",
			},
			[]string{"outcome"},
		),
		votes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "votes_total",
				Help:      "votes cast, by god and position",
			},
			[]string{"god", "position"},
		),
		applied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "consequences_applied_total",
				Help:      "consequence applications, by outcome tier",
			},
			[]string{"outcome"},
		),
		applyRejected: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "consequences_duplicate_total",
				Help:      "consequence applications rejected as already applied",
			},
		),
		favorDelta: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "favor_delta_abs_total",
				Help:      "absolute favor moved, by god and direction",
			},
			[]string{"god", "direction"},
		),
		effectsExpired: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "effects_expired_total",
				Help:      "divine effects that ran out of turns",
			},
		),
		weightedScore: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "weighted_score",
				Help:      "weighted council score per convening",
				Buckets:   []float64{-10, -5, -2, 0, 2, 5, 10},
			},
		),
	}
}

// ObserveConvened records one convening and its votes.
func (m *Metrics) ObserveConvened(outcome string, weightedScore float64, votes map[string]string) {
	if m == nil {
		return
	}
	m.convened.WithLabelValues(outcome).Inc()
	m.weightedScore.Observe(weightedScore)
	for god, position := range votes {
		m.votes.WithLabelValues(god, position).Inc()
	}
}

// ObserveApplied records one consequence application.
func (m *Metrics) ObserveApplied(outcome string) {
	if m == nil {
		return
	}
	m.applied.WithLabelValues(outcome).Inc()
}

// ObserveDuplicateApply records an apply rejected by the idempotency guard.
func (m *Metrics) ObserveDuplicateApply() {
	if m == nil {
		return
	}
	m.applyRejected.Inc()
}

// ObserveFavorDelta records a favor change for god.
func (m *Metrics) ObserveFavorDelta(god string, delta int) {
	if m == nil || delta == 0 {
		return
	}
	direction := "up"
	if delta < 0 {
		direction = "down"
		delta = -delta
	}
	m.favorDelta.WithLabelValues(god, direction).Add(float64(delta))
}

// ObserveExpired records expired effects.
func (m *Metrics) ObserveExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.effectsExpired.Add(float64(n))
}
