package gibbs

import (
	cerrors "github.com/APanico12/MCMC/mcmc/common/errors"
	"github.com/APanico12/MCMC/mcmc/sampler/variate"
)

// failingSource delegates to a wrapped source until the n-th gamma draw, which fails.
type failingSource struct {
	variate.Source
	failAt  int
	nGammas int
}

func (s *failingSource) Gamma(shape, rate float64) (float64, error) {
	s.nGammas++
	if s.nGammas == s.failAt {
		return 0, cerrors.NewDomainError("rate", rate, "injected failure")
	}
	return s.Source.Gamma(shape, rate)
}

type countingRecorder struct {
	iterations map[string]int
	accepted   int
	rejected   int
	failures   map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		iterations: make(map[string]int),
		failures:   make(map[string]int),
	}
}

func (r *countingRecorder) IterationDone(sampler string) {
	r.iterations[sampler]++
}

func (r *countingRecorder) ProposalDone(accepted bool) {
	if accepted {
		r.accepted++
	} else {
		r.rejected++
	}
}

func (r *countingRecorder) RunFailed(sampler string) {
	r.failures[sampler]++
}
