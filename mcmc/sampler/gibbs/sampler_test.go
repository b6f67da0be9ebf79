package gibbs

import (
	"context"
	"testing"

	cerrors "github.com/APanico12/MCMC/mcmc/common/errors"
	"github.com/APanico12/MCMC/mcmc/common/logging"
	"github.com/APanico12/MCMC/mcmc/sampler/history"
	"github.com/APanico12/MCMC/mcmc/sampler/metrics"
	"github.com/APanico12/MCMC/mcmc/sampler/model"
	"github.com/APanico12/MCMC/mcmc/sampler/variate"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gonum.org/v1/gonum/stat/distuv"
)

func newSeededSampler(t *testing.T, seed uint64) *Sampler {
	m := newDefaultModel(t)
	src := variate.NewSource(seed)
	state, err := NewRandomState(m, src)
	require.Nil(t, err)
	s, err := NewSampler(m, state, src, nil, nil)
	require.Nil(t, err)
	return s
}

func TestNewDefaultParameters(t *testing.T) {
	p := NewDefaultParameters()
	assert.NotZero(t, p.NSweeps)
	assert.Nil(t, p.Validate())
}

func TestParameters_WithNSweeps(t *testing.T) {
	p := NewDefaultParameters()
	assert.Equal(t, 10, p.WithNSweeps(10).NSweeps)
	assert.Nil(t, p.Validate())

	for _, n := range []int{0, -1} {
		err := NewDefaultParameters().WithNSweeps(n).Validate()
		var ce *cerrors.ConfigurationError
		assert.True(t, errors.As(err, &ce), "n = %d", n)
	}
}

func TestParameters_Validate(t *testing.T) {
	for _, n := range []int{0, -1} {
		err := (&Parameters{NSweeps: n}).Validate()
		assert.IsType(t, &cerrors.ConfigurationError{}, err)
	}
}

func TestParameters_MarshalLogObject(t *testing.T) {
	oe := zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig())
	assert.Nil(t, NewDefaultParameters().MarshalLogObject(oe))
}

func TestNewSampler_err(t *testing.T) {
	m := newDefaultModel(t)
	src := variate.NewSource(0)
	state, err := NewRandomState(m, src)
	require.Nil(t, err)

	s, err := NewSampler(nil, state, src, nil, nil)
	assert.Nil(t, s)
	assert.IsType(t, &cerrors.DomainError{}, err)

	s, err = NewSampler(m, state, nil, nil, nil)
	assert.Nil(t, s)
	assert.IsType(t, &cerrors.ConfigurationError{}, err)

	s, err = NewSampler(m, nil, src, nil, nil)
	assert.Nil(t, s)
	assert.IsType(t, &cerrors.DomainError{}, err)

	badState := state.Clone()
	badState.Theta = badState.Theta[:2]
	s, err = NewSampler(m, badState, src, nil, nil)
	assert.Nil(t, s)
	assert.IsType(t, &cerrors.DomainError{}, err)
}

// T = 2, R = 1, y = [[10], [20]] with fixed quantile draws.
func TestSampler_Sweep_scenario(t *testing.T) {
	m := newScenarioModel(t)
	src := variate.NewQuantileSource(0.5)
	state := &State{Theta: []float64{9, 23}, Mu: 15, Sigma2: 1, Sigma2Theta: 1}
	s, err := NewSampler(m, state, src, nil, nil)
	require.Nil(t, err)

	require.Nil(t, s.Sweep())
	gammas, normals := src.CallsTo("gamma"), src.CallsTo("normal")
	require.Len(t, gammas, 2)
	require.Len(t, normals, 1+2)

	// sigma2 posterior from the starting theta
	assert.Equal(t, 2.0, gammas[0].Params[0])
	assert.Equal(t, 1+0.5*((10-9.0)*(10-9.0)+(20-23.0)*(20-23.0)), gammas[0].Params[1])
	sigma2 := distuv.Gamma{Alpha: 2, Beta: 6}.Quantile(0.5)
	assert.Equal(t, sigma2, state.Sigma2)

	// sigma2_theta posterior from the starting theta: mean 16, spread 49 + 49
	assert.Equal(t, 2.0, gammas[1].Params[0])
	assert.Equal(t, 1+0.5*98, gammas[1].Params[1])
	sigma2Theta := distuv.Gamma{Alpha: 2, Beta: 50}.Quantile(0.5)
	assert.Equal(t, sigma2Theta, state.Sigma2Theta)

	// mu from sigma2_theta drawn in this sweep
	muMean, muVar := MuPosterior(m.Hyperparameters(), []float64{9, 23}, sigma2Theta)
	assert.Equal(t, [2]float64{muMean, muVar}, normals[0].Params)
	assert.InDelta(t, muMean, state.Mu, 1e-12)

	// each theta from the mu, sigma2, and sigma2_theta drawn in this sweep
	for g := 0; g < 2; g++ {
		mean, variance := ThetaPosterior(m, g, state.Mu, sigma2, sigma2Theta)
		assert.Equal(t, [2]float64{mean, variance}, normals[1+g].Params)
		assert.InDelta(t, mean, state.Theta[g], 1e-9)
	}

	require.Equal(t, 1, s.History().Len())
	r := s.History().At(0)
	assert.Equal(t, 0, r.Sweep)
	assert.Equal(t, state.Theta, r.Theta)
	assert.Equal(t, state.Mu, r.Mu)
	assert.Equal(t, 1, s.NSweeps())
}

func TestSampler_Run_invariants(t *testing.T) {
	s := newSeededSampler(t, 0)
	nSweeps := 500
	require.Nil(t, s.Run(context.Background(), &Parameters{NSweeps: nSweeps}))

	h := s.History()
	assert.Equal(t, nSweeps, h.Len())
	assert.Equal(t, nSweeps, s.NSweeps())
	for i, r := range h.Records() {
		assert.Equal(t, i, r.Sweep)
		assert.True(t, r.Sigma2 > 0)
		assert.True(t, r.Sigma2Theta > 0)
		assert.Len(t, r.Theta, 6)
	}
	for _, param := range []string{history.ParamMu, history.ParamSigma2,
		history.ParamSigma2Theta, history.ThetaParam(5)} {
		series, err := h.SeriesFor(param)
		assert.Nil(t, err)
		assert.Len(t, series, nSweeps)
	}
	assert.Len(t, h.ThetaSeries(), nSweeps)

	// last record is the live state
	last := h.At(nSweeps - 1)
	assert.Equal(t, s.State().Theta, last.Theta)
	assert.Equal(t, s.State().Mu, last.Mu)
}

func TestSampler_Run_reproducible(t *testing.T) {
	s1, s2, s3 := newSeededSampler(t, 42), newSeededSampler(t, 42), newSeededSampler(t, 43)
	params := &Parameters{NSweeps: 200}
	for _, s := range []*Sampler{s1, s2, s3} {
		require.Nil(t, s.Run(context.Background(), params))
	}
	assert.Equal(t, s1.History().Records(), s2.History().Records())
	assert.NotEqual(t, s1.History().Records(), s3.History().Records())
}

func TestSampler_Run_continues(t *testing.T) {
	// two runs of 50 sweeps continue the same chain as one run of 100
	s1, s2 := newSeededSampler(t, 7), newSeededSampler(t, 7)
	require.Nil(t, s1.Run(context.Background(), &Parameters{NSweeps: 100}))
	require.Nil(t, s2.Run(context.Background(), &Parameters{NSweeps: 50}))
	require.Nil(t, s2.Run(context.Background(), &Parameters{NSweeps: 50}))
	assert.Equal(t, s1.History().Records(), s2.History().Records())
}

func TestSampler_Run_configErr(t *testing.T) {
	s := newSeededSampler(t, 0)
	err := s.Run(context.Background(), &Parameters{NSweeps: 0})
	assert.IsType(t, &cerrors.ConfigurationError{}, err)
	err = s.Run(context.Background(), nil)
	assert.IsType(t, &cerrors.ConfigurationError{}, err)
	assert.Zero(t, s.History().Len())
}

func TestSampler_Run_canceled(t *testing.T) {
	s := newSeededSampler(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Run(ctx, &Parameters{NSweeps: 10})
	assert.Equal(t, context.Canceled, errors.Cause(err))
	assert.Zero(t, s.History().Len())
}

func TestSampler_Run_partial(t *testing.T) {
	m := newDefaultModel(t)
	src := &failingSource{Source: variate.NewSource(0), failAt: 5}
	state, err := NewRandomState(m, variate.NewSource(0))
	require.Nil(t, err)
	rec := newCountingRecorder()
	s, err := NewSampler(m, state, src, logging.NewDevLogger(zap.DebugLevel), rec)
	require.Nil(t, err)

	// two gamma draws per sweep, so the 5th fails in the 3rd sweep
	err = s.Run(context.Background(), &Parameters{NSweeps: 10})
	var de *cerrors.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 2, de.Iteration)
	assert.Equal(t, 2, s.History().Len())
	assert.Equal(t, 2, rec.iterations[metrics.GibbsLabel])
	assert.Equal(t, 1, rec.failures[metrics.GibbsLabel])
}

func TestSampler_Sweep_errKeepsState(t *testing.T) {
	m := newDefaultModel(t)
	// the 6th gamma draw is sigma2_theta in the 3rd sweep, after sigma2 was drawn
	src := &failingSource{Source: variate.NewSource(0), failAt: 6}
	state, err := NewRandomState(m, variate.NewSource(0))
	require.Nil(t, err)
	s, err := NewSampler(m, state, src, nil, nil)
	require.Nil(t, err)

	err = s.Run(context.Background(), &Parameters{NSweeps: 10})
	require.NotNil(t, err)
	require.Equal(t, 2, s.History().Len())
	assert.Equal(t, s.History().At(1), s.State().Record(1))
	assert.Equal(t, 2, s.NSweeps())
}

func TestSampler_metrics(t *testing.T) {
	m := newDefaultModel(t)
	src := variate.NewSource(0)
	state, err := NewRandomState(m, src)
	require.Nil(t, err)
	rec := newCountingRecorder()
	s, err := NewSampler(m, state, src, nil, rec)
	require.Nil(t, err)

	require.Nil(t, s.Run(context.Background(), &Parameters{NSweeps: 25}))
	assert.Equal(t, 25, rec.iterations[metrics.GibbsLabel])
	assert.Empty(t, rec.failures)
}

func TestSampler_State_inPlace(t *testing.T) {
	m := newDefaultModel(t)
	src := variate.NewSource(0)
	state, err := NewRandomState(m, src)
	require.Nil(t, err)
	initial := state.Clone()
	s, err := NewSampler(m, state, src, nil, nil)
	require.Nil(t, err)

	require.Nil(t, s.Sweep())
	assert.True(t, state == s.State())
	assert.NotEqual(t, initial, state)
}

func TestSampler_singleGroup(t *testing.T) {
	m, err := model.New([][]float64{{1, 2, 3}}, model.NewDefaultHyperparameters())
	require.Nil(t, err)
	src := variate.NewSource(3)
	state, err := NewRandomState(m, src)
	require.Nil(t, err)
	s, err := NewSampler(m, state, src, nil, nil)
	require.Nil(t, err)
	require.Nil(t, s.Run(context.Background(), &Parameters{NSweeps: 50}))
	assert.Equal(t, 50, s.History().Len())
}
