package cmd

import (
	"context"

	"github.com/APanico12/MCMC/mcmc/sampler/gibbs"
	"github.com/APanico12/MCMC/mcmc/sampler/model"
	"github.com/APanico12/MCMC/mcmc/sampler/summary"
	"github.com/APanico12/MCMC/mcmc/sampler/variate"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	sweepsFlag     = "sweeps"
	dataFileFlag   = "dataFile"
	mu0Flag        = "mu0"
	tau2Flag       = "tau2"
	alphaFlag      = "alpha"
	betaFlag       = "beta"
	alphaThetaFlag = "alphaTheta"
	betaThetaFlag  = "betaTheta"
)

// gibbsCmd represents the gibbs command
var gibbsCmd = &cobra.Command{
	Use:   "gibbs",
	Short: "sample the posterior of a hierarchical normal model with a Gibbs sampler",
	Long: `gibbs runs a Gibbs sampler over the group means, grand mean, and variances of a
hierarchical normal model fit to groups of observations (the built-in dataset unless --dataFile is
given), logs posterior summaries of each parameter, and stores the sweep history under --dataDir
if one is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, hp, params, logger, err := getGibbsConfig()
		if err != nil {
			logger.Error("invalid Gibbs configuration", zap.Error(err))
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()
		_, err = runGibbs(ctx, rc, hp, params, viper.GetString(dataFileFlag), logger)
		return err
	},
}

func init() {
	RootCmd.AddCommand(gibbsCmd)

	gibbsCmd.Flags().IntP(sweepsFlag, "n", gibbs.DefaultNSweeps, "number of sweeps")
	gibbsCmd.Flags().StringP(dataFileFlag, "f", "",
		"YAML file of observation groups (default is the built-in dataset)")
	gibbsCmd.Flags().Float64(mu0Flag, model.DefaultMu0, "prior mean of the grand mean")
	gibbsCmd.Flags().Float64(tau2Flag, model.DefaultTau2, "prior variance of the grand mean")
	gibbsCmd.Flags().Float64(alphaFlag, model.DefaultAlpha,
		"prior shape of the observation variance")
	gibbsCmd.Flags().Float64(betaFlag, model.DefaultBeta,
		"prior rate of the observation variance")
	gibbsCmd.Flags().Float64(alphaThetaFlag, model.DefaultAlphaTheta,
		"prior shape of the between-group variance")
	gibbsCmd.Flags().Float64(betaThetaFlag, model.DefaultBetaTheta,
		"prior rate of the between-group variance")

	if err := viper.BindPFlags(gibbsCmd.Flags()); err != nil {
		panic(err)
	}
}

func getGibbsConfig() (
	*runConfig, *model.Hyperparameters, *gibbs.Parameters, *zap.Logger, error,
) {
	rc, logger, err := getRunConfig()
	if err != nil {
		return nil, nil, nil, logger, err
	}
	hp := &model.Hyperparameters{
		Mu0:        viper.GetFloat64(mu0Flag),
		Tau2:       viper.GetFloat64(tau2Flag),
		Alpha:      viper.GetFloat64(alphaFlag),
		Beta:       viper.GetFloat64(betaFlag),
		AlphaTheta: viper.GetFloat64(alphaThetaFlag),
		BetaTheta:  viper.GetFloat64(betaThetaFlag),
	}
	if err := hp.Validate(); err != nil {
		return nil, nil, nil, logger, err
	}
	params := &gibbs.Parameters{NSweeps: viper.GetInt(sweepsFlag)}
	if err := params.Validate(); err != nil {
		return nil, nil, nil, logger, err
	}

	logger.Info("Gibbs configuration",
		zap.Object("run", rc),
		zap.Object("hyperparameters", hp),
		zap.Object("params", params),
		zap.String(dataFileFlag, viper.GetString(dataFileFlag)),
	)
	return rc, hp, params, logger, nil
}

func runGibbs(
	ctx context.Context,
	rc *runConfig,
	hp *model.Hyperparameters,
	params *gibbs.Parameters,
	dataFile string,
	logger *zap.Logger,
) (*gibbs.Sampler, error) {
	m, err := loadModel(dataFile, hp)
	if err != nil {
		logger.Error("unable to load model", zap.Error(err))
		return nil, err
	}
	src := variate.NewSource(rc.Seed)
	state, err := gibbs.NewRandomState(m, src)
	if err != nil {
		return nil, err
	}
	ms, err := startMetrics(rc.MetricsAddr, logger)
	if err != nil {
		return nil, err
	}
	defer ms.Stop()

	s, err := gibbs.NewSampler(m, state, src, logger, ms.Recorder())
	if err != nil {
		return nil, err
	}
	if err := s.Run(ctx, params); err != nil {
		return s, err
	}
	summaries, err := summary.Gibbs(s.History(), m.T())
	if err != nil {
		return s, err
	}
	logSummaries(logger, summaries)

	if rc.DataDir == "" {
		return s, nil
	}
	return s, storeRun(rc, gibbsSampler, logger, func(rs *runStore) error {
		return rs.saveGibbs(s.History(), m.T())
	})
}

// storeRun opens the database in the data directory and saves a run with the given save
// function.
func storeRun(
	rc *runConfig, sampler string, logger *zap.Logger, save func(*runStore) error,
) (err error) {
	kvdb, err := openDB(rc.DataDir)
	if err != nil {
		logger.Error("unable to open database", zap.Error(err))
		return err
	}
	defer func() {
		err = closeDB(kvdb, err, "unable to store run", logger, zap.String(runFlag, rc.Run))
	}()
	rs, err := newRunStore(kvdb, sampler, rc.Run)
	if err != nil {
		return err
	}
	if err := save(rs); err != nil {
		return err
	}
	logger.Info("stored run",
		zap.String("sampler", sampler),
		zap.String(runFlag, rc.Run),
		zap.String(dataDirFlag, rc.DataDir),
	)
	return nil
}
