// Package metrics exports generator run counters in the Prometheus format.
//
// A Metrics value is registered on its own registry and handed to the
// engine facade as its attempt observer. At the end of a run the registry
// can be written to a node_exporter textfile.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/choicegen/internal/ir"
)

const namespace = "choicegen"

// Metrics collects per-attempt outcomes of one process.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	reg *prometheus.Registry

	attempts   *prometheus.CounterVec
	decisions  *prometheus.CounterVec
	backtracks prometheus.Counter
	handoffs   prometheus.Counter
	perAttempt *prometheus.HistogramVec
}

// New creates the generator metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		reg: reg,
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_total",
			Help:      "Generation attempts by provider and outcome",
		}, []string{"mode", "outcome"}),
		decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Decisions recorded by provider",
		}, []string{"mode"}),
		backtracks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backtracks_total",
			Help:      "Exhaustive attempts discarded by exhaustion or pruning",
		}),
		handoffs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handoffs_total",
			Help:      "Replay attempts that switched to random decisions",
		}),
		perAttempt: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "decisions_per_attempt",
			Help:      "Decisions made by one attempt",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"mode"}),
	}
}

// ObserveAttempt records the outcome of one attempt.
func (m *Metrics) ObserveAttempt(kind ir.Kind, status ir.AttemptStatus, decisions int) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(string(kind), string(status)).Inc()
	m.decisions.WithLabelValues(string(kind)).Add(float64(decisions))
	m.perAttempt.WithLabelValues(string(kind)).Observe(float64(decisions))
	if status == ir.StatusBacktrack {
		m.backtracks.Inc()
	}
}

// ObserveHandoff records a replay-to-random switch.
func (m *Metrics) ObserveHandoff() {
	if m == nil {
		return
	}
	m.handoffs.Inc()
}

// Registry returns the registry the metrics live on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// WriteTextfile writes the current values to path in the text exposition
// format. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
