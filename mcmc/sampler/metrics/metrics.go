// Package metrics exposes prometheus counters for sampler runs.
package metrics

import (
	prom "github.com/prometheus/client_golang/prometheus"
)

const (
	// GibbsLabel is the sampler label value of the Gibbs sampler.
	GibbsLabel = "gibbs"

	// MHLabel is the sampler label value of the Metropolis-Hastings sampler.
	MHLabel = "metropolis_hastings"

	acceptedLabel = "accepted"
	rejectedLabel = "rejected"

	namespace = "mcmc"
	subsystem = "sampler"
)

// Recorder records sampler events.
type Recorder interface {
	// IterationDone records a completed iteration (or Gibbs sweep) of the given sampler.
	IterationDone(sampler string)

	// ProposalDone records the outcome of a Metropolis-Hastings proposal.
	ProposalDone(accepted bool)

	// RunFailed records a run of the given sampler that ended with an error.
	RunFailed(sampler string)
}

// Metrics is a Recorder backed by prometheus counters.
type Metrics struct {
	iterations *prom.CounterVec
	proposals  *prom.CounterVec
	failures   *prom.CounterVec
}

// New creates a new *Metrics instance. Its counters are not exported until Register is called.
func New() *Metrics {
	return &Metrics{
		iterations: prom.NewCounterVec(
			prom.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "iterations_total",
				Help:      "Total number of completed iterations (or Gibbs sweeps).",
			},
			[]string{"sampler"},
		),
		proposals: prom.NewCounterVec(
			prom.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "proposals_total",
				Help:      "Total number of Metropolis-Hastings proposals by outcome.",
			},
			[]string{"outcome"},
		),
		failures: prom.NewCounterVec(
			prom.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "failed_runs_total",
				Help:      "Total number of sampler runs ended by an error.",
			},
			[]string{"sampler"},
		),
	}
}

// IterationDone increments the iteration count of the sampler.
func (m *Metrics) IterationDone(sampler string) {
	m.iterations.WithLabelValues(sampler).Inc()
}

// ProposalDone increments the accepted or rejected proposal count.
func (m *Metrics) ProposalDone(accepted bool) {
	if accepted {
		m.proposals.WithLabelValues(acceptedLabel).Inc()
		return
	}
	m.proposals.WithLabelValues(rejectedLabel).Inc()
}

// RunFailed increments the failed run count of the sampler.
func (m *Metrics) RunFailed(sampler string) {
	m.failures.WithLabelValues(sampler).Inc()
}

// Register registers the counters with the given registerer.
func (m *Metrics) Register(r prom.Registerer) error {
	for _, c := range []prom.Collector{m.iterations, m.proposals, m.failures} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Unregister unregisters the counters from the given registerer.
func (m *Metrics) Unregister(r prom.Registerer) {
	_ = r.Unregister(m.iterations)
	_ = r.Unregister(m.proposals)
	_ = r.Unregister(m.failures)
}

// NewNop returns a Recorder that discards all events.
func NewNop() Recorder {
	return nopRecorder{}
}

type nopRecorder struct{}

func (nopRecorder) IterationDone(string) {}

func (nopRecorder) ProposalDone(bool) {}

func (nopRecorder) RunFailed(string) {}

// OrNop returns the given recorder, or a no-op recorder if it is nil.
func OrNop(rec Recorder) Recorder {
	if rec == nil {
		return NewNop()
	}
	return rec
}
