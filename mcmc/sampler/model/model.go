// Package model defines the hierarchical normal model sampled by the Gibbs sampler.
package model

import (
	"fmt"

	cerrors "github.com/APanico12/MCMC/mcmc/common/errors"
	"go.uber.org/zap/zapcore"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultMu0 is the default prior mean of the grand mean.
	DefaultMu0 = 0.0

	// DefaultTau2 is the default prior variance of the grand mean.
	DefaultTau2 = 1000.0

	// DefaultAlpha is the default prior shape of the observation variance.
	DefaultAlpha = 1.0

	// DefaultBeta is the default prior rate of the observation variance.
	DefaultBeta = 1.0

	// DefaultAlphaTheta is the default prior shape of the between-group variance.
	DefaultAlphaTheta = 1.0

	// DefaultBetaTheta is the default prior rate of the between-group variance.
	DefaultBetaTheta = 1.0
)

// Hyperparameters are the prior parameters of the hierarchical normal model.
type Hyperparameters struct {
	// Mu0 is the prior mean of the grand mean mu.
	Mu0 float64

	// Tau2 is the prior variance of the grand mean mu.
	Tau2 float64

	// Alpha and Beta are the prior shape and rate of the observation variance.
	Alpha float64
	Beta  float64

	// AlphaTheta and BetaTheta are the prior shape and rate of the between-group variance.
	AlphaTheta float64
	BetaTheta  float64
}

// NewDefaultHyperparameters returns the default (weakly informative) hyperparameters.
func NewDefaultHyperparameters() *Hyperparameters {
	return &Hyperparameters{
		Mu0:        DefaultMu0,
		Tau2:       DefaultTau2,
		Alpha:      DefaultAlpha,
		Beta:       DefaultBeta,
		AlphaTheta: DefaultAlphaTheta,
		BetaTheta:  DefaultBetaTheta,
	}
}

// Validate returns a *errors.DomainError for the first invalid hyperparameter, if any.
func (hp *Hyperparameters) Validate() error {
	if err := cerrors.CheckFinite("mu0", hp.Mu0); err != nil {
		return err
	}
	positive := []struct {
		name  string
		value float64
	}{
		{"tau2", hp.Tau2},
		{"alpha", hp.Alpha},
		{"beta", hp.Beta},
		{"alpha_theta", hp.AlphaTheta},
		{"beta_theta", hp.BetaTheta},
	}
	for _, p := range positive {
		if err := cerrors.CheckPositive(p.name, p.value); err != nil {
			return err
		}
	}
	return nil
}

// MarshalLogObject converts the hyperparameters into an object (which will become json) for
// logging.
func (hp *Hyperparameters) MarshalLogObject(oe zapcore.ObjectEncoder) error {
	oe.AddFloat64("mu0", hp.Mu0)
	oe.AddFloat64("tau2", hp.Tau2)
	oe.AddFloat64("alpha", hp.Alpha)
	oe.AddFloat64("beta", hp.Beta)
	oe.AddFloat64("alpha_theta", hp.AlphaTheta)
	oe.AddFloat64("beta_theta", hp.BetaTheta)
	return nil
}

// HierarchicalNormal holds the observations y (T groups by R observations per group) and the
// hyperparameters of the model
//
//	y[t,r] ~ N(theta[t], sigma2)
//	theta[t] ~ N(mu, sigma2_theta)
//	mu ~ N(mu0, tau2)
//
// It is immutable once constructed.
type HierarchicalNormal struct {
	y      *mat.Dense
	params Hyperparameters
}

// New creates a new *HierarchicalNormal from the rows of observations, one row per group.
// Every row must have the same (non-zero) length.
func New(rows [][]float64, params *Hyperparameters) (*HierarchicalNormal, error) {
	if len(rows) == 0 {
		return nil, cerrors.NewDomainError("T", 0, "must be >= 1")
	}
	return NewWithDims(len(rows), len(rows[0]), rows, params)
}

// NewWithDims creates a new *HierarchicalNormal, checking that the rows of observations have
// the declared number of groups nGroups and observations per group nObs.
func NewWithDims(
	nGroups, nObs int, rows [][]float64, params *Hyperparameters,
) (*HierarchicalNormal, error) {
	if nGroups < 1 {
		return nil, cerrors.NewDomainError("T", float64(nGroups), "must be >= 1")
	}
	if nObs < 1 {
		return nil, cerrors.NewDomainError("R", float64(nObs), "must be >= 1")
	}
	if len(rows) != nGroups {
		return nil, cerrors.NewDomainError("T", float64(nGroups),
			fmt.Sprintf("does not match number of observation rows (%d)", len(rows)))
	}
	if params == nil {
		return nil, cerrors.NewDomainError("hyperparameters", 0, "must not be nil")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	data := make([]float64, 0, nGroups*nObs)
	for t, row := range rows {
		if len(row) != nObs {
			return nil, cerrors.NewDomainError(fmt.Sprintf("y[%d]", t), float64(len(row)),
				fmt.Sprintf("row length does not match R (%d)", nObs))
		}
		for r, v := range row {
			if err := cerrors.CheckFinite(fmt.Sprintf("y[%d,%d]", t, r), v); err != nil {
				return nil, err
			}
		}
		data = append(data, row...)
	}
	return &HierarchicalNormal{
		y:      mat.NewDense(nGroups, nObs, data),
		params: *params,
	}, nil
}

// T returns the number of groups.
func (m *HierarchicalNormal) T() int {
	t, _ := m.y.Dims()
	return t
}

// R returns the number of observations per group.
func (m *HierarchicalNormal) R() int {
	_, r := m.y.Dims()
	return r
}

// Observation returns y[t,r].
func (m *HierarchicalNormal) Observation(t, r int) float64 {
	return m.y.At(t, r)
}

// Row returns a copy of the observations of group t.
func (m *HierarchicalNormal) Row(t int) []float64 {
	return mat.Row(nil, t, m.y)
}

// RowSum returns the sum of the observations of group t.
func (m *HierarchicalNormal) RowSum(t int) float64 {
	return floats.Sum(m.y.RawRowView(t))
}

// Rows returns a copy of all the observations, one row per group.
func (m *HierarchicalNormal) Rows() [][]float64 {
	rows := make([][]float64, m.T())
	for t := range rows {
		rows[t] = m.Row(t)
	}
	return rows
}

// Hyperparameters returns a copy of the model's hyperparameters.
func (m *HierarchicalNormal) Hyperparameters() Hyperparameters {
	return m.params
}

// MarshalLogObject converts the model into an object (which will become json) for logging.
func (m *HierarchicalNormal) MarshalLogObject(oe zapcore.ObjectEncoder) error {
	oe.AddInt("T", m.T())
	oe.AddInt("R", m.R())
	return oe.AddObject("hyperparameters", &m.params)
}

// DefaultObservations returns the default data set of 6 groups with 7 observations each.
func DefaultObservations() [][]float64 {
	return [][]float64{
		{68, 42, 69, 64, 39, 66, 29},
		{49, 52, 41, 56, 40, 43, 20},
		{41, 40, 26, 33, 42, 27, 35},
		{33, 27, 48, 54, 42, 56, 19},
		{40, 45, 50, 41, 37, 34, 42},
		{30, 42, 35, 44, 49, 25, 45},
	}
}
