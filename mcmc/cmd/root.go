package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	envVarPrefix = "MCMC"

	dataDirFlag     = "dataDir"
	runFlag         = "run"
	seedFlag        = "seed"
	logLevelFlag    = "logLevel"
	logJSONFlag     = "logJSON"
	metricsAddrFlag = "metricsAddr"
)

var cfgFile string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "mcmc",
	Short: "mcmc runs Markov chain Monte Carlo samplers",
	Long: `mcmc runs a Gibbs sampler for the hierarchical normal model and a random-walk
Metropolis-Hastings sampler for one-dimensional targets, logs posterior summaries, and can store
chain histories in a local database for later inspection.`,
	SilenceUsage: true,
}

// Execute is the main entrypoint for the mcmc CLI.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (yaml) with flag values")
	RootCmd.PersistentFlags().StringP(dataDirFlag, "d", "",
		"local data directory in which to store chain histories (none stored if empty)")
	RootCmd.PersistentFlags().StringP(runFlag, "r", "default",
		"name under which a chain history is stored or loaded")
	RootCmd.PersistentFlags().Uint64P(seedFlag, "s", 0,
		"random seed (0 seeds from the current time)")
	RootCmd.PersistentFlags().StringP(logLevelFlag, "l", zap.InfoLevel.String(),
		"log level")
	RootCmd.PersistentFlags().Bool(logJSONFlag, false,
		"log JSON lines with the production logger instead of console development logs")
	RootCmd.PersistentFlags().String(metricsAddrFlag, "",
		"address (host:port) on which to serve prometheus metrics during a run")

	// bind viper flags
	viper.SetEnvPrefix(envVarPrefix) // look for env vars with "MCMC_" prefix
	viper.AutomaticEnv()             // read in environment variables that match
	if err := viper.BindPFlags(RootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
}

// initConfig reads in the config file if set.
func initConfig() {
	if cfgFile == "" {
		return
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "unable to read config file %s: %v\n", cfgFile, err)
		os.Exit(1)
	}
}

func getLogLevel() (zapcore.Level, error) {
	var ll zapcore.Level
	err := ll.Set(viper.GetString(logLevelFlag))
	return ll, err
}
