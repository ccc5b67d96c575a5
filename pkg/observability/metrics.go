package observability

import (
	"github.com/driftml/lattice/pkg/search"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects per-step beam search statistics.
type Metrics struct {
	steps          prometheus.Counter
	candidates     prometheus.Counter
	finishedStates prometheus.Counter
	activeStates   prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lattice_search_steps_total",
			Help: "Total number of beam search steps executed",
		}),
		candidates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lattice_search_candidates_total",
			Help: "Total number of candidate states produced by the transition function",
		}),
		finishedStates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lattice_search_finished_states_total",
			Help: "Total number of states that reached a terminal action",
		}),
		activeStates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lattice_search_active_states",
			Help:    "Number of states surviving on the beam after each step",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
	reg.MustRegister(m.steps, m.candidates, m.finishedStates, m.activeStates)
	return m
}

// Observer returns a step observer for search.WithStepObserver or
// lattice.WithStepObserver.
func (m *Metrics) Observer() func(search.StepStats) {
	return func(stats search.StepStats) {
		m.steps.Inc()
		m.candidates.Add(float64(stats.Candidates))
		m.finishedStates.Add(float64(stats.Finished))
		m.activeStates.Observe(float64(stats.Active))
	}
}
