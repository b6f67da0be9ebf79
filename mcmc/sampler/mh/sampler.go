// Package mh implements a random-walk Metropolis-Hastings sampler for scalar target densities.
package mh

import (
	"context"
	"math"

	cerrors "github.com/APanico12/MCMC/mcmc/common/errors"
	"github.com/APanico12/MCMC/mcmc/common/logging"
	"github.com/APanico12/MCMC/mcmc/sampler/history"
	"github.com/APanico12/MCMC/mcmc/sampler/metrics"
	"github.com/APanico12/MCMC/mcmc/sampler/variate"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// DefaultNIterations is the default number of iterations in a run.
	DefaultNIterations = 10000

	// DefaultInitialState is the default starting state of the chain.
	DefaultInitialState = 0.0

	// DefaultScale is the default proposal scale.
	DefaultScale = 1.0

	logIteration    = "iteration"
	logNIterations  = "n_iterations"
	logInitialState = "initial_state"
	logScale        = "scale"
)

// Parameters defines the parameters of a Metropolis-Hastings run.
type Parameters struct {
	// NIterations is the number of iterations per run.
	NIterations int

	// InitialState is the starting state of the chain.
	InitialState float64

	// Scale is the proposal scale.
	Scale float64
}

// NewDefaultParameters returns the default run parameters.
func NewDefaultParameters() *Parameters {
	return &Parameters{
		NIterations:  DefaultNIterations,
		InitialState: DefaultInitialState,
		Scale:        DefaultScale,
	}
}

// WithNIterations sets the number of iterations. Validate rejects a non-positive value.
func (p *Parameters) WithNIterations(nIterations int) *Parameters {
	p.NIterations = nIterations
	return p
}

// WithInitialState sets the initial state.
func (p *Parameters) WithInitialState(x float64) *Parameters {
	p.InitialState = x
	return p
}

// WithScale sets the proposal scale. Validate rejects a non-positive or non-finite value.
func (p *Parameters) WithScale(scale float64) *Parameters {
	p.Scale = scale
	return p
}

// Validate returns a *errors.ConfigurationError if the number of iterations or the scale is not
// positive, or a *errors.DomainError if the initial state is not finite.
func (p *Parameters) Validate() error {
	if p.NIterations <= 0 {
		return cerrors.NewConfigurationError(logNIterations, float64(p.NIterations),
			"must be > 0")
	}
	if math.IsNaN(p.Scale) || math.IsInf(p.Scale, 0) || p.Scale <= 0 {
		return cerrors.NewConfigurationError(logScale, p.Scale, "must be finite and > 0")
	}
	return cerrors.CheckFinite(logInitialState, p.InitialState)
}

// MarshalLogObject converts the parameters into an object (which will become json) for logging.
func (p *Parameters) MarshalLogObject(oe zapcore.ObjectEncoder) error {
	oe.AddInt(logNIterations, p.NIterations)
	oe.AddFloat64(logInitialState, p.InitialState)
	oe.AddFloat64(logScale, p.Scale)
	return nil
}

// State is the current position of the chain and its acceptance counters.
type State struct {
	Current    float64
	Accepted   int
	Iterations int
}

// AcceptanceRate returns the fraction of iterations whose proposal was accepted.
func (s State) AcceptanceRate() float64 {
	if s.Iterations == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(s.Iterations)
}

// MarshalLogObject converts the state into an object (which will become json) for logging.
func (s State) MarshalLogObject(oe zapcore.ObjectEncoder) error {
	oe.AddFloat64("current", s.Current)
	oe.AddInt("n_accepted", s.Accepted)
	oe.AddInt(logNIterations, s.Iterations)
	oe.AddFloat64("acceptance_rate", s.AcceptanceRate())
	return nil
}

// Sampler is a random-walk Metropolis-Hastings sampler. Each iteration logs the proposal to
// exactly one of the accepted or rejected sequences of its history: an accepted proposal becomes
// the current state, and a rejected one leaves the current state as is without logging it
// again.
type Sampler struct {
	target   Target
	proposal Proposal
	src      variate.Source
	params   *Parameters
	state    State
	history  *history.MH
	logger   *zap.Logger
	rec      metrics.Recorder
}

// NewSampler creates a new *Sampler. The target must have positive density at the initial
// state. The logger and recorder may be nil.
func NewSampler(
	target Target,
	proposal Proposal,
	src variate.Source,
	params *Parameters,
	logger *zap.Logger,
	rec metrics.Recorder,
) (*Sampler, error) {
	if target == nil {
		return nil, cerrors.NewConfigurationError("target", 0, "must not be nil")
	}
	if proposal == nil {
		return nil, cerrors.NewConfigurationError("proposal", 0, "must not be nil")
	}
	if src == nil {
		return nil, cerrors.NewConfigurationError("source", 0, "must not be nil")
	}
	if params == nil {
		return nil, cerrors.NewConfigurationError("parameters", 0, "must not be nil")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if _, err := evalCurrent(target, params.InitialState); err != nil {
		return nil, err
	}
	return &Sampler{
		target:   target,
		proposal: proposal,
		src:      src,
		params:   params,
		state:    State{Current: params.InitialState},
		history:  history.NewMH(),
		logger:   logging.OrNop(logger),
		rec:      metrics.OrNop(rec),
	}, nil
}

// State returns a copy of the current state.
func (s *Sampler) State() State {
	return s.state
}

// History returns the history of completed iterations.
func (s *Sampler) History() *history.MH {
	return s.history
}

// Run performs the number of iterations given in the parameters. The context is only checked
// between iterations. On error, the history keeps every iteration completed before it.
func (s *Sampler) Run(ctx context.Context) error {
	s.logger.Info("beginning Metropolis-Hastings run", zap.Object("params", s.params))
	for i := 0; i < s.params.NIterations; i++ {
		if err := ctx.Err(); err != nil {
			s.rec.RunFailed(metrics.MHLabel)
			s.logger.Info("stopping Metropolis-Hastings run",
				zap.Int(logIteration, s.state.Iterations),
				zap.Error(err),
			)
			return errors.Wrapf(err, "stopped after %d iterations", s.state.Iterations)
		}
		if err := s.Step(); err != nil {
			s.rec.RunFailed(metrics.MHLabel)
			s.logger.Error("Metropolis-Hastings iteration failed",
				zap.Int(logIteration, s.state.Iterations),
				zap.Error(err),
			)
			return err
		}
	}
	s.logger.Info("finished Metropolis-Hastings run", zap.Object("state", s.state))
	return nil
}

// Step performs a single iteration: propose, compute the acceptance ratio, and accept or reject.
func (s *Sampler) Step() error {
	iteration := s.state.Iterations
	proposed, err := s.proposal.Propose(s.state.Current, s.params.Scale)
	if err != nil {
		return atIteration(err, iteration, "proposing")
	}
	if err := cerrors.CheckFinite("proposed", proposed); err != nil {
		return atIteration(err, iteration, "proposing")
	}
	ratio, err := AcceptanceRatio(s.target, s.state.Current, proposed)
	if err != nil {
		return atIteration(err, iteration, "computing acceptance ratio")
	}

	accepted := s.src.Uniform01() < ratio
	if accepted {
		s.state.Current = proposed
		s.state.Accepted++
	}
	s.state.Iterations++
	s.history.Append(history.MHRecord{
		Iteration:       iteration,
		Proposed:        proposed,
		AcceptanceRatio: ratio,
		Accepted:        accepted,
		Current:         s.state.Current,
	})
	s.rec.IterationDone(metrics.MHLabel)
	s.rec.ProposalDone(accepted)
	if ce := s.logger.Check(zap.DebugLevel, "finished Metropolis-Hastings iteration"); ce != nil {
		ce.Write(
			zap.Int(logIteration, iteration),
			zap.Float64("proposed", proposed),
			zap.Float64("acceptance_ratio", ratio),
			zap.Bool("accepted", accepted),
		)
	}
	return nil
}

// AcceptanceRatio returns min(1, target(proposed)/target(current)). It returns a
// *errors.DomainError if the density at the current state is not finite and positive, or the
// density at the proposal is not finite and non-negative.
func AcceptanceRatio(target Target, current, proposed float64) (float64, error) {
	pCurrent, err := evalCurrent(target, current)
	if err != nil {
		return 0, err
	}
	pProposed := target(proposed)
	if err := cerrors.CheckNonNegative("target(proposed)", pProposed); err != nil {
		return 0, err
	}
	return math.Min(1, pProposed/pCurrent), nil
}

func evalCurrent(target Target, current float64) (float64, error) {
	p := target(current)
	if err := cerrors.CheckPositive("target(current)", p); err != nil {
		return 0, err
	}
	return p, nil
}

// atIteration attributes an error to the iteration.
func atIteration(err error, iteration int, action string) error {
	var de *cerrors.DomainError
	if errors.As(err, &de) {
		err = de.AtIteration(iteration)
	}
	return errors.Wrap(err, action)
}
