package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	clogging "github.com/APanico12/MCMC/mcmc/common/logging"
	"github.com/APanico12/MCMC/mcmc/sampler/summary"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// runConfig holds the configuration shared by the sampler commands.
type runConfig struct {
	DataDir     string
	Run         string
	Seed        uint64
	MetricsAddr string
	LogLevel    zapcore.Level
	LogJSON     bool
}

func getRunConfig() (*runConfig, *zap.Logger, error) {
	ll, err := getLogLevel()
	if err != nil {
		return nil, clogging.NewDevInfoLogger(), err
	}
	seed := viper.GetUint64(seedFlag)
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rc := &runConfig{
		DataDir:     viper.GetString(dataDirFlag),
		Run:         viper.GetString(runFlag),
		Seed:        seed,
		MetricsAddr: viper.GetString(metricsAddrFlag),
		LogLevel:    ll,
		LogJSON:     viper.GetBool(logJSONFlag),
	}
	return rc, newLogger(rc), nil
}

func newLogger(rc *runConfig) *zap.Logger {
	if rc.LogJSON {
		return clogging.NewProdLogger(rc.LogLevel)
	}
	return clogging.NewDevLogger(rc.LogLevel)
}

// MarshalLogObject converts the config into an object (which will become json) for logging.
func (c *runConfig) MarshalLogObject(oe zapcore.ObjectEncoder) error {
	oe.AddString(dataDirFlag, c.DataDir)
	oe.AddString(runFlag, c.Run)
	oe.AddUint64(seedFlag, c.Seed)
	oe.AddString(metricsAddrFlag, c.MetricsAddr)
	oe.AddString(logLevelFlag, c.LogLevel.String())
	oe.AddBool(logJSONFlag, c.LogJSON)
	return nil
}

// commandContext returns the command's context, canceled on an interrupt signal.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt)
}

func logSummaries(logger *zap.Logger, summaries []summary.Summary) {
	for _, s := range summaries {
		logger.Info("posterior summary", zap.Object("summary", s))
	}
}
