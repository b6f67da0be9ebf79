package variate

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Call records the distribution and parameters of a single draw requested from a
// *QuantileSource.
type Call struct {
	Dist   string
	Params [2]float64
}

// QuantileSource is a deterministic Source for tests. Every draw returns the fixed quantile Q of
// the requested distribution, and every request is recorded in Calls.
type QuantileSource struct {
	Q     float64
	Calls []Call
}

// NewQuantileSource returns a new *QuantileSource returning quantile q, which must lie in (0, 1).
func NewQuantileSource(q float64) *QuantileSource {
	return &QuantileSource{Q: q}
}

// Normal returns the Q quantile of N(mean, variance).
func (s *QuantileSource) Normal(mean, variance float64) (float64, error) {
	s.Calls = append(s.Calls, Call{Dist: "normal", Params: [2]float64{mean, variance}})
	if err := checkNormal(mean, variance); err != nil {
		return 0, err
	}
	if variance == 0 {
		return mean, nil
	}
	return distuv.Normal{Mu: mean, Sigma: math.Sqrt(variance)}.Quantile(s.Q), nil
}

// Gamma returns the Q quantile of Gamma(shape, rate).
func (s *QuantileSource) Gamma(shape, rate float64) (float64, error) {
	s.Calls = append(s.Calls, Call{Dist: "gamma", Params: [2]float64{shape, rate}})
	if err := checkGamma(shape, rate); err != nil {
		return 0, err
	}
	return distuv.Gamma{Alpha: shape, Beta: rate}.Quantile(s.Q), nil
}

// Uniform01 returns Q.
func (s *QuantileSource) Uniform01() float64 {
	s.Calls = append(s.Calls, Call{Dist: "uniform"})
	return s.Q
}

// CallsTo returns the recorded calls for the given distribution, in order.
func (s *QuantileSource) CallsTo(dist string) []Call {
	var calls []Call
	for _, c := range s.Calls {
		if c.Dist == dist {
			calls = append(calls, c)
		}
	}
	return calls
}
