package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/APanico12/MCMC/mcmc/sampler/history"
	"github.com/APanico12/MCMC/mcmc/sampler/summary"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	samplerFlag = "sampler"
	paramFlag   = "param"
)

var errMissingDataDir = errors.New("data directory must be set")

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "print a stored chain history",
	Long: `history loads the history of a run stored by the gibbs or mh command. With --param it
prints that parameter's series, one value per line (one space-separated vector per line for the
Gibbs "theta" parameter); without it, it logs posterior summaries of the run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, logger, err := getRunConfig()
		if err != nil {
			return err
		}
		return printHistory(cmd.OutOrStdout(), rc, viper.GetString(samplerFlag),
			viper.GetString(paramFlag), logger)
	},
}

func init() {
	RootCmd.AddCommand(historyCmd)

	historyCmd.Flags().String(samplerFlag, gibbsSampler,
		fmt.Sprintf("sampler of the stored run, one of %s, %s", gibbsSampler, mhSampler))
	historyCmd.Flags().String(paramFlag, "",
		"parameter whose series to print (default logs summaries of every parameter)")

	if err := viper.BindPFlags(historyCmd.Flags()); err != nil {
		panic(err)
	}
}

func printHistory(
	w io.Writer, rc *runConfig, sampler, param string, logger *zap.Logger,
) (err error) {
	if rc.DataDir == "" {
		return errMissingDataDir
	}
	if sampler != gibbsSampler && sampler != mhSampler {
		return errors.Errorf("unknown sampler %q", sampler)
	}
	kvdb, err := openDB(rc.DataDir)
	if err != nil {
		return err
	}
	defer func() {
		err = closeDB(kvdb, err, "unable to load run", logger, zap.String(runFlag, rc.Run))
	}()
	rs, err := newRunStore(kvdb, sampler, rc.Run)
	if err != nil {
		return err
	}

	var seriesFor func(string) ([]float64, error)
	var summaries []summary.Summary
	switch sampler {
	case gibbsSampler:
		h, nGroups, err := rs.loadGibbs()
		if err != nil {
			return err
		}
		if param == history.ParamTheta {
			return writeVectors(w, h.ThetaSeries())
		}
		seriesFor = h.SeriesFor
		if param == "" {
			if summaries, err = summary.Gibbs(h, nGroups); err != nil {
				return err
			}
		}
	case mhSampler:
		h, err := rs.loadMH()
		if err != nil {
			return err
		}
		seriesFor = h.SeriesFor
		if param == "" {
			if summaries, err = summary.MH(h); err != nil {
				return err
			}
		}
	}

	if param == "" {
		logger.Info("loaded run", zap.String("sampler", sampler), zap.String(runFlag, rc.Run))
		logSummaries(logger, summaries)
		return nil
	}
	series, err := seriesFor(param)
	if err != nil {
		return err
	}
	return writeSeries(w, series)
}

func writeSeries(w io.Writer, series []float64) error {
	for _, v := range series {
		if _, err := fmt.Fprintln(w, formatFloat(v)); err != nil {
			return err
		}
	}
	return nil
}

func writeVectors(w io.Writer, vectors [][]float64) error {
	for _, vec := range vectors {
		fields := make([]string, len(vec))
		for i, v := range vec {
			fields[i] = formatFloat(v)
		}
		if _, err := fmt.Fprintln(w, strings.Join(fields, " ")); err != nil {
			return err
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
