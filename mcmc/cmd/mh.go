package cmd

import (
	"context"
	"strings"

	"github.com/APanico12/MCMC/mcmc/sampler/mh"
	"github.com/APanico12/MCMC/mcmc/sampler/summary"
	"github.com/APanico12/MCMC/mcmc/sampler/variate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	iterationsFlag = "iterations"
	initialFlag    = "initial"
	scaleFlag      = "scale"
	targetFlag     = "target"
	proposalFlag   = "proposal"

	defaultTarget   = "exp-neg-square"
	defaultProposal = "normal"
)

// mhCmd represents the mh command
var mhCmd = &cobra.Command{
	Use:   "mh",
	Short: "sample a one-dimensional target density with a Metropolis-Hastings sampler",
	Long: `mh runs a random-walk Metropolis-Hastings sampler against one of the built-in target
densities, logs the acceptance rate and summaries of the accepted values and the chain, and stores
the iteration history under --dataDir if one is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, mc, logger, err := getMHConfig()
		if err != nil {
			logger.Error("invalid Metropolis-Hastings configuration", zap.Error(err))
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()
		_, err = runMH(ctx, rc, mc, logger)
		return err
	},
}

func init() {
	RootCmd.AddCommand(mhCmd)

	mhCmd.Flags().IntP(iterationsFlag, "n", mh.DefaultNIterations, "number of iterations")
	mhCmd.Flags().Float64(initialFlag, mh.DefaultInitialState, "initial state of the chain")
	mhCmd.Flags().Float64(scaleFlag, mh.DefaultScale, "proposal scale")
	mhCmd.Flags().StringP(targetFlag, "t", defaultTarget,
		"target density, one of "+strings.Join(mh.TargetNames(), ", "))
	mhCmd.Flags().StringP(proposalFlag, "p", defaultProposal,
		"proposal, one of "+strings.Join(mh.ProposalNames(), ", "))

	if err := viper.BindPFlags(mhCmd.Flags()); err != nil {
		panic(err)
	}
}

// mhConfig is the configuration of a Metropolis-Hastings run.
type mhConfig struct {
	Params   *mh.Parameters
	Target   string
	Proposal string
}

func getMHConfig() (*runConfig, *mhConfig, *zap.Logger, error) {
	rc, logger, err := getRunConfig()
	if err != nil {
		return nil, nil, logger, err
	}
	mc := &mhConfig{
		Params: &mh.Parameters{
			NIterations:  viper.GetInt(iterationsFlag),
			InitialState: viper.GetFloat64(initialFlag),
			Scale:        viper.GetFloat64(scaleFlag),
		},
		Target:   viper.GetString(targetFlag),
		Proposal: viper.GetString(proposalFlag),
	}
	if err := mc.Params.Validate(); err != nil {
		return nil, nil, logger, err
	}
	if _, in := mh.Targets[mc.Target]; !in {
		return nil, nil, logger, errors.Errorf("unknown target %q, expected one of %s",
			mc.Target, strings.Join(mh.TargetNames(), ", "))
	}
	if _, in := mh.Proposals[mc.Proposal]; !in {
		return nil, nil, logger, errors.Errorf("unknown proposal %q, expected one of %s",
			mc.Proposal, strings.Join(mh.ProposalNames(), ", "))
	}

	logger.Info("Metropolis-Hastings configuration",
		zap.Object("run", rc),
		zap.Object("params", mc.Params),
		zap.String(targetFlag, mc.Target),
		zap.String(proposalFlag, mc.Proposal),
	)
	return rc, mc, logger, nil
}

func runMH(ctx context.Context, rc *runConfig, mc *mhConfig, logger *zap.Logger) (
	*mh.Sampler, error,
) {
	src := variate.NewSource(rc.Seed)
	ms, err := startMetrics(rc.MetricsAddr, logger)
	if err != nil {
		return nil, err
	}
	defer ms.Stop()

	s, err := mh.NewSampler(
		mh.Targets[mc.Target],
		mh.Proposals[mc.Proposal](src),
		src,
		mc.Params,
		logger,
		ms.Recorder(),
	)
	if err != nil {
		logger.Error("unable to create sampler", zap.Error(err))
		return nil, err
	}
	if err := s.Run(ctx); err != nil {
		return s, err
	}
	summaries, err := summary.MH(s.History())
	if err != nil {
		return s, err
	}
	logger.Info("acceptance", zap.Float64("rate", s.State().AcceptanceRate()))
	logSummaries(logger, summaries)

	if rc.DataDir == "" {
		return s, nil
	}
	return s, storeRun(rc, mhSampler, logger, func(rs *runStore) error {
		return rs.saveMH(s.History())
	})
}
