package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	cerrors "github.com/APanico12/MCMC/mcmc/common/errors"
	"github.com/APanico12/MCMC/mcmc/sampler/gibbs"
	"github.com/APanico12/MCMC/mcmc/sampler/history"
	"github.com/APanico12/MCMC/mcmc/sampler/model"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setGibbsFlags(sweeps int) {
	viper.Set(logLevelFlag, "error")
	viper.Set(seedFlag, 1)
	viper.Set(dataDirFlag, "")
	viper.Set(runFlag, "default")
	viper.Set(metricsAddrFlag, "")
	viper.Set(dataFileFlag, "")
	viper.Set(sweepsFlag, sweeps)
	viper.Set(mu0Flag, model.DefaultMu0)
	viper.Set(tau2Flag, model.DefaultTau2)
	viper.Set(alphaFlag, model.DefaultAlpha)
	viper.Set(betaFlag, model.DefaultBeta)
	viper.Set(alphaThetaFlag, model.DefaultAlphaTheta)
	viper.Set(betaThetaFlag, model.DefaultBetaTheta)
}

func TestGetGibbsConfig_ok(t *testing.T) {
	setGibbsFlags(50)
	viper.Set(tau2Flag, 100.0)
	viper.Set(runFlag, "some-run")

	rc, hp, params, logger, err := getGibbsConfig()
	assert.Nil(t, err)
	assert.NotNil(t, logger)
	assert.Equal(t, uint64(1), rc.Seed)
	assert.Equal(t, "some-run", rc.Run)
	assert.Equal(t, 100.0, hp.Tau2)
	assert.Equal(t, model.DefaultAlpha, hp.Alpha)
	assert.Equal(t, 50, params.NSweeps)
}

func TestGetGibbsConfig_defaults(t *testing.T) {
	setGibbsFlags(gibbs.DefaultNSweeps)
	viper.Set(seedFlag, 0)

	rc, _, params, _, err := getGibbsConfig()
	assert.Nil(t, err)
	assert.NotZero(t, rc.Seed)
	assert.Equal(t, gibbs.DefaultNSweeps, params.NSweeps)
}

func TestGetGibbsConfig_err(t *testing.T) {
	for _, sweeps := range []int{0, -1} {
		setGibbsFlags(sweeps)
		_, _, params, logger, err := getGibbsConfig()
		var ce *cerrors.ConfigurationError
		assert.True(t, errors.As(err, &ce), "sweeps = %d", sweeps)
		assert.Nil(t, params)
		assert.NotNil(t, logger)
	}

	setGibbsFlags(10)
	viper.Set(betaThetaFlag, 0.0)
	_, _, _, _, err := getGibbsConfig()
	assert.NotNil(t, err)

	setGibbsFlags(10)
	viper.Set(logLevelFlag, "not a level")
	_, _, _, _, err = getGibbsConfig()
	assert.NotNil(t, err)
}

func TestRunGibbs_store(t *testing.T) {
	rc := &runConfig{DataDir: t.TempDir(), Run: "test", Seed: 1}
	hp, params := model.NewDefaultHyperparameters(), &gibbs.Parameters{NSweeps: 20}
	logger := zap.NewNop()

	s, err := runGibbs(context.Background(), rc, hp, params, "", logger)
	require.Nil(t, err)
	assert.Equal(t, 20, s.History().Len())
	assert.Equal(t, 20, s.NSweeps())

	out := new(bytes.Buffer)
	require.Nil(t, printHistory(out, rc, gibbsSampler, history.ParamMu, logger))
	mu, err := s.History().SeriesFor(history.ParamMu)
	require.Nil(t, err)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 20)
	for i, line := range lines {
		assert.Equal(t, formatFloat(mu[i]), line)
	}

	// same run name is not overwritten
	_, err = runGibbs(context.Background(), rc, hp, params, "", logger)
	assert.Equal(t, errRunExists, errors.Cause(err))
}

func TestRunGibbs_reproducible(t *testing.T) {
	rc := &runConfig{Seed: 7}
	hp := model.NewDefaultHyperparameters()
	logger := zap.NewNop()

	s1, err := runGibbs(context.Background(), rc, hp, &gibbs.Parameters{NSweeps: 10}, "", logger)
	require.Nil(t, err)
	s2, err := runGibbs(context.Background(), rc, hp, &gibbs.Parameters{NSweeps: 10}, "", logger)
	require.Nil(t, err)
	assert.Equal(t, s1.History().Records(), s2.History().Records())
}

func TestRunGibbs_dataFile(t *testing.T) {
	path := writeDataFile(t, "groups:\n  - [1, 2, 3]\n  - [2, 3, 4]\n  - [5, 6, 7]\n")
	rc := &runConfig{Seed: 3}
	s, err := runGibbs(context.Background(), rc, model.NewDefaultHyperparameters(),
		&gibbs.Parameters{NSweeps: 5}, path, zap.NewNop())
	require.Nil(t, err)
	assert.Len(t, s.State().Theta, 3)
	for _, theta := range s.History().ThetaSeries() {
		assert.Len(t, theta, 3)
	}
}

func TestRunGibbs_err(t *testing.T) {
	logger := zap.NewNop()
	hp := model.NewDefaultHyperparameters()

	// missing data file
	s, err := runGibbs(context.Background(), &runConfig{Seed: 1}, hp,
		&gibbs.Parameters{NSweeps: 5}, "missing.yml", logger)
	assert.NotNil(t, err)
	assert.Nil(t, s)

	// canceled before the first sweep
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, err = runGibbs(ctx, &runConfig{Seed: 1}, hp, &gibbs.Parameters{NSweeps: 5}, "", logger)
	assert.NotNil(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 0, s.History().Len())

	// bad metrics address
	s, err = runGibbs(context.Background(), &runConfig{Seed: 1, MetricsAddr: "bad"}, hp,
		&gibbs.Parameters{NSweeps: 5}, "", logger)
	assert.NotNil(t, err)
	assert.Nil(t, s)
}

func TestGibbsCmd(t *testing.T) {
	setGibbsFlags(5)
	viper.Set(dataDirFlag, t.TempDir())
	viper.Set(runFlag, "cmd-run")
	assert.Nil(t, gibbsCmd.RunE(gibbsCmd, []string{}))

	viper.Set(sweepsFlag, -5)
	assert.NotNil(t, gibbsCmd.RunE(gibbsCmd, []string{}))
}
