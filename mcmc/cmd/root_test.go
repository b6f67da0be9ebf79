package cmd

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestRootCmd_subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range RootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"gibbs", "mh", "history", "version"} {
		assert.True(t, names[name], name)
	}
}

func TestGetLogLevel(t *testing.T) {
	viper.Set(logLevelFlag, "debug")
	ll, err := getLogLevel()
	assert.Nil(t, err)
	assert.Equal(t, zapcore.DebugLevel, ll)

	viper.Set(logLevelFlag, "loud")
	_, err = getLogLevel()
	assert.NotNil(t, err)
}

func TestGetRunConfig(t *testing.T) {
	viper.Set(logLevelFlag, "warn")
	viper.Set(dataDirFlag, "some/data/dir")
	viper.Set(runFlag, "some-run")
	viper.Set(seedFlag, 42)
	viper.Set(metricsAddrFlag, "localhost:9090")
	viper.Set(logJSONFlag, true)

	rc, logger, err := getRunConfig()
	assert.Nil(t, err)
	assert.NotNil(t, logger)
	assert.Equal(t, "some/data/dir", rc.DataDir)
	assert.Equal(t, "some-run", rc.Run)
	assert.Equal(t, uint64(42), rc.Seed)
	assert.Equal(t, "localhost:9090", rc.MetricsAddr)
	assert.Equal(t, zapcore.WarnLevel, rc.LogLevel)
	assert.True(t, rc.LogJSON)
	viper.Set(logJSONFlag, false)
}

func TestNewLogger(t *testing.T) {
	for _, logJSON := range []bool{false, true} {
		logger := newLogger(&runConfig{LogLevel: zapcore.WarnLevel, LogJSON: logJSON})
		assert.NotNil(t, logger)
		assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
		assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	}
}
