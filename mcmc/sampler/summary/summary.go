// Package summary computes point summaries of recorded sampler series for reporting.
package summary

import (
	"math"
	"sort"

	"github.com/APanico12/MCMC/mcmc/sampler/history"
	"go.uber.org/zap/zapcore"
	"gonum.org/v1/gonum/stat"
)

// Summary holds point summaries of the values of one parameter.
type Summary struct {
	Param  string
	N      int
	Mean   float64
	StdDev float64
	Q025   float64
	Median float64
	Q975   float64
}

// Of summarizes the given series of the named parameter. An empty series has NaN summaries.
func Of(param string, series []float64) Summary {
	s := Summary{Param: param, N: len(series)}
	if len(series) == 0 {
		s.Mean, s.StdDev = math.NaN(), math.NaN()
		s.Q025, s.Median, s.Q975 = math.NaN(), math.NaN(), math.NaN()
		return s
	}
	sorted := append([]float64(nil), series...)
	sort.Float64s(sorted)
	s.Mean, s.StdDev = stat.MeanStdDev(sorted, nil)
	s.Q025 = stat.Quantile(0.025, stat.Empirical, sorted, nil)
	s.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	s.Q975 = stat.Quantile(0.975, stat.Empirical, sorted, nil)
	return s
}

// MarshalLogObject converts the summary into an object (which will become json) for logging.
func (s Summary) MarshalLogObject(oe zapcore.ObjectEncoder) error {
	oe.AddString("param", s.Param)
	oe.AddInt("n", s.N)
	oe.AddFloat64("mean", s.Mean)
	oe.AddFloat64("std_dev", s.StdDev)
	oe.AddFloat64("q025", s.Q025)
	oe.AddFloat64("median", s.Median)
	oe.AddFloat64("q975", s.Q975)
	return nil
}

// Gibbs summarizes mu, sigma2, sigma2_theta, and each theta[t] of a Gibbs history.
func Gibbs(h *history.Gibbs, nGroups int) ([]Summary, error) {
	params := []string{history.ParamMu, history.ParamSigma2, history.ParamSigma2Theta}
	for t := 0; t < nGroups; t++ {
		params = append(params, history.ThetaParam(t))
	}
	return summarize(h.SeriesFor, params)
}

// MH summarizes the accepted values and the canonical chain of a Metropolis-Hastings history.
func MH(h *history.MH) ([]Summary, error) {
	return summarize(h.SeriesFor, []string{history.ParamAccepted, history.ParamChain})
}

func summarize(seriesFor func(string) ([]float64, error), params []string) ([]Summary, error) {
	summaries := make([]Summary, len(params))
	for i, param := range params {
		series, err := seriesFor(param)
		if err != nil {
			return nil, err
		}
		summaries[i] = Of(param, series)
	}
	return summaries, nil
}
