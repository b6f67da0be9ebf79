package gibbs

import (
	"fmt"

	cerrors "github.com/APanico12/MCMC/mcmc/common/errors"
	"github.com/APanico12/MCMC/mcmc/common/logging"
	"github.com/APanico12/MCMC/mcmc/sampler/history"
	"github.com/APanico12/MCMC/mcmc/sampler/model"
	"github.com/APanico12/MCMC/mcmc/sampler/variate"
	"go.uber.org/zap/zapcore"
)

// State is the current position of the Gibbs chain. The sampler mutates it in place once per
// sweep; the caller owns it.
type State struct {
	// Theta are the T group means.
	Theta []float64

	// Mu is the grand mean.
	Mu float64

	// Sigma2 is the observation-level variance parameter.
	Sigma2 float64

	// Sigma2Theta is the between-group variance parameter.
	Sigma2Theta float64
}

// NewRandomState draws a starting state for the given model: each theta[t] ~ N(0, 1),
// sigma2 ~ Gamma(1, 1), sigma2_theta ~ Gamma(1, 1), and mu ~ N(mu0, tau2^2).
func NewRandomState(m *model.HierarchicalNormal, src variate.Source) (*State, error) {
	s := &State{Theta: make([]float64, m.T())}
	var err error
	for t := range s.Theta {
		if s.Theta[t], err = src.Normal(0, 1); err != nil {
			return nil, err
		}
	}
	if s.Sigma2, err = src.Gamma(1, 1); err != nil {
		return nil, err
	}
	if s.Sigma2Theta, err = src.Gamma(1, 1); err != nil {
		return nil, err
	}
	// tau2 is used as the standard deviation of the starting mu
	hp := m.Hyperparameters()
	if s.Mu, err = src.Normal(hp.Mu0, hp.Tau2*hp.Tau2); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate returns a *errors.DomainError if the state does not have nGroups group means, has
// non-finite values, or has non-positive variances.
func (s *State) Validate(nGroups int) error {
	if len(s.Theta) != nGroups {
		return cerrors.NewDomainError("theta", float64(len(s.Theta)),
			fmt.Sprintf("length does not match T (%d)", nGroups))
	}
	for t, theta := range s.Theta {
		if err := cerrors.CheckFinite(history.ThetaParam(t), theta); err != nil {
			return err
		}
	}
	if err := cerrors.CheckFinite(history.ParamMu, s.Mu); err != nil {
		return err
	}
	if err := cerrors.CheckPositive(history.ParamSigma2, s.Sigma2); err != nil {
		return err
	}
	return cerrors.CheckPositive(history.ParamSigma2Theta, s.Sigma2Theta)
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	cp := *s
	cp.Theta = append([]float64(nil), s.Theta...)
	return &cp
}

// Record returns a history record of the state after the given sweep.
func (s *State) Record(sweep int) history.GibbsRecord {
	return history.GibbsRecord{
		Sweep:       sweep,
		Theta:       append([]float64(nil), s.Theta...),
		Mu:          s.Mu,
		Sigma2:      s.Sigma2,
		Sigma2Theta: s.Sigma2Theta,
	}
}

// MarshalLogObject converts the state into an object (which will become json) for logging.
func (s *State) MarshalLogObject(oe zapcore.ObjectEncoder) error {
	oe.AddFloat64(history.ParamMu, s.Mu)
	oe.AddFloat64(history.ParamSigma2, s.Sigma2)
	oe.AddFloat64(history.ParamSigma2Theta, s.Sigma2Theta)
	return oe.AddArray(history.ParamTheta, logging.Float64s(s.Theta))
}
