// Package gibbs implements a Gibbs sampler for the hierarchical normal model.
package gibbs

import (
	"context"

	cerrors "github.com/APanico12/MCMC/mcmc/common/errors"
	"github.com/APanico12/MCMC/mcmc/common/logging"
	"github.com/APanico12/MCMC/mcmc/sampler/history"
	"github.com/APanico12/MCMC/mcmc/sampler/metrics"
	"github.com/APanico12/MCMC/mcmc/sampler/model"
	"github.com/APanico12/MCMC/mcmc/sampler/variate"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// DefaultNSweeps is the default number of sweeps in a run.
	DefaultNSweeps = 1000

	logSweep   = "sweep"
	logNSweeps = "n_sweeps"
)

// Parameters defines the parameters of a Gibbs sampler run.
type Parameters struct {
	// NSweeps is the number of sweeps to run.
	NSweeps int
}

// NewDefaultParameters returns the default run parameters.
func NewDefaultParameters() *Parameters {
	return &Parameters{NSweeps: DefaultNSweeps}
}

// WithNSweeps sets the number of sweeps. Validate rejects a non-positive value.
func (p *Parameters) WithNSweeps(nSweeps int) *Parameters {
	p.NSweeps = nSweeps
	return p
}

// Validate returns a *errors.ConfigurationError if the number of sweeps is not positive.
func (p *Parameters) Validate() error {
	if p.NSweeps <= 0 {
		return cerrors.NewConfigurationError(logNSweeps, float64(p.NSweeps), "must be > 0")
	}
	return nil
}

// MarshalLogObject converts the parameters into an object (which will become json) for logging.
func (p *Parameters) MarshalLogObject(oe zapcore.ObjectEncoder) error {
	oe.AddInt(logNSweeps, p.NSweeps)
	return nil
}

// Sampler draws from the posterior of a hierarchical normal model by sweeping through the full
// conditional distributions of sigma2, sigma2_theta, mu, and each theta[t], in that order.
type Sampler struct {
	model   *model.HierarchicalNormal
	state   *State
	src     variate.Source
	history *history.Gibbs
	logger  *zap.Logger
	rec     metrics.Recorder

	// number of completed sweeps
	nSweeps int
}

// NewSampler creates a new *Sampler for the given model, starting from the given state, which
// the sampler mutates in place. The logger and recorder may be nil.
func NewSampler(
	m *model.HierarchicalNormal,
	state *State,
	src variate.Source,
	logger *zap.Logger,
	rec metrics.Recorder,
) (*Sampler, error) {
	if m == nil {
		return nil, cerrors.NewDomainError("model", 0, "must not be nil")
	}
	if src == nil {
		return nil, cerrors.NewConfigurationError("source", 0, "must not be nil")
	}
	if state == nil {
		return nil, cerrors.NewDomainError("state", 0, "must not be nil")
	}
	if err := state.Validate(m.T()); err != nil {
		return nil, err
	}
	return &Sampler{
		model:   m,
		state:   state,
		src:     src,
		history: history.NewGibbs(),
		logger:  logging.OrNop(logger),
		rec:     metrics.OrNop(rec),
	}, nil
}

// State returns the (live) current state of the chain.
func (s *Sampler) State() *State {
	return s.state
}

// History returns the history of completed sweeps.
func (s *Sampler) History() *history.Gibbs {
	return s.history
}

// NSweeps returns the number of completed sweeps.
func (s *Sampler) NSweeps() int {
	return s.nSweeps
}

// Run performs the number of sweeps given in the parameters. The context is only checked between
// sweeps. On error, the history keeps every sweep completed before it.
func (s *Sampler) Run(ctx context.Context, params *Parameters) error {
	if params == nil {
		return cerrors.NewConfigurationError(logNSweeps, 0, "parameters must not be nil")
	}
	if err := params.Validate(); err != nil {
		return err
	}
	s.logger.Info("beginning Gibbs run",
		zap.Object("model", s.model),
		zap.Object("params", params),
	)
	for i := 0; i < params.NSweeps; i++ {
		if err := ctx.Err(); err != nil {
			s.rec.RunFailed(metrics.GibbsLabel)
			s.logger.Info("stopping Gibbs run", zap.Int(logSweep, s.nSweeps), zap.Error(err))
			return errors.Wrapf(err, "stopped after %d sweeps", s.nSweeps)
		}
		if err := s.Sweep(); err != nil {
			s.rec.RunFailed(metrics.GibbsLabel)
			s.logger.Error("Gibbs sweep failed", zap.Int(logSweep, s.nSweeps), zap.Error(err))
			return err
		}
	}
	s.logger.Info("finished Gibbs run",
		zap.Int(logNSweeps, s.nSweeps),
		zap.Object("state", s.state),
	)
	return nil
}

// Sweep performs a single sweep, updating the state in place and appending it to the history.
// The draws are committed to the state only once all of them succeed, so after an error the state
// still matches the last recorded sweep.
func (s *Sampler) Sweep() error {
	sweep := s.nSweeps
	hp := s.model.Hyperparameters()
	next := s.state.Clone()

	shape, rate := Sigma2Posterior(s.model, next.Theta)
	sigma2, err := s.src.Gamma(shape, rate)
	if err != nil {
		return atSweep(err, sweep, history.ParamSigma2)
	}
	next.Sigma2 = sigma2

	shape, rate = Sigma2ThetaPosterior(hp, next.Theta)
	sigma2Theta, err := s.src.Gamma(shape, rate)
	if err != nil {
		return atSweep(err, sweep, history.ParamSigma2Theta)
	}
	next.Sigma2Theta = sigma2Theta

	mean, variance := MuPosterior(hp, next.Theta, next.Sigma2Theta)
	mu, err := s.src.Normal(mean, variance)
	if err != nil {
		return atSweep(err, sweep, history.ParamMu)
	}
	next.Mu = mu

	// the group means are conditionally independent given mu, sigma2, and sigma2_theta, but
	// are drawn in index order so the shared source yields a reproducible chain
	for t := range next.Theta {
		mean, variance = ThetaPosterior(s.model, t, next.Mu, next.Sigma2, next.Sigma2Theta)
		theta, err := s.src.Normal(mean, variance)
		if err != nil {
			return atSweep(err, sweep, history.ThetaParam(t))
		}
		next.Theta[t] = theta
	}

	copy(s.state.Theta, next.Theta)
	s.state.Mu, s.state.Sigma2, s.state.Sigma2Theta = next.Mu, next.Sigma2, next.Sigma2Theta

	s.history.Append(s.state.Record(sweep))
	s.nSweeps++
	s.rec.IterationDone(metrics.GibbsLabel)
	if ce := s.logger.Check(zap.DebugLevel, "finished Gibbs sweep"); ce != nil {
		ce.Write(zap.Int(logSweep, sweep), zap.Object("state", s.state))
	}
	return nil
}

// atSweep attributes an error drawing the given parameter to the sweep.
func atSweep(err error, sweep int, param string) error {
	var de *cerrors.DomainError
	if errors.As(err, &de) {
		err = de.AtIteration(sweep)
	}
	return errors.Wrapf(err, "drawing %s", param)
}
