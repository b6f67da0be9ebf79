package gibbs

import (
	"github.com/APanico12/MCMC/mcmc/sampler/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// The variance updates below draw sigma2 and sigma2_theta from a gamma distribution with
// posterior shape and rate parameters, i.e., as if they were precisions, while the mean updates
// divide by them as variances. This is inherited behavior and is not corrected to an
// inverse-gamma draw.

// Sigma2Posterior returns the shape and rate of the full conditional draw of sigma2:
//
//	shape = alpha + T*R/2
//	rate  = beta + (1/2) sum_{t,r} (y[t,r] - theta[t])^2
func Sigma2Posterior(m *model.HierarchicalNormal, theta []float64) (float64, float64) {
	hp := m.Hyperparameters()
	residual := 0.0
	for t := 0; t < m.T(); t++ {
		diffs := m.Row(t)
		floats.AddConst(-theta[t], diffs)
		residual += floats.Dot(diffs, diffs)
	}
	shape := hp.Alpha + float64(m.T()*m.R())/2
	rate := hp.Beta + residual/2
	return shape, rate
}

// Sigma2ThetaPosterior returns the shape and rate of the full conditional draw of sigma2_theta:
//
//	shape = alpha_theta + T/2
//	rate  = beta_theta + (1/2) sum_t (theta[t] - mean(theta))^2
func Sigma2ThetaPosterior(hp model.Hyperparameters, theta []float64) (float64, float64) {
	mean := stat.Mean(theta, nil)
	residual := 0.0
	for _, th := range theta {
		residual += (th - mean) * (th - mean)
	}
	shape := hp.AlphaTheta + float64(len(theta))/2
	rate := hp.BetaTheta + residual/2
	return shape, rate
}

// MuPosterior returns the mean and variance of the full conditional draw of mu:
//
//	mean     = (sigma2_theta*mu0 + tau2*sum(theta)) / (sigma2_theta + T*tau2)
//	variance = sigma2_theta*tau2 / (sigma2_theta + T*tau2)
func MuPosterior(
	hp model.Hyperparameters, theta []float64, sigma2Theta float64,
) (float64, float64) {
	numerator := sigma2Theta*hp.Mu0 + hp.Tau2*floats.Sum(theta)
	denominator := sigma2Theta + float64(len(theta))*hp.Tau2
	return numerator / denominator, sigma2Theta * hp.Tau2 / denominator
}

// ThetaPosterior returns the mean and variance of the full conditional draw of theta[t]:
//
//	precision = R/sigma2 + 1/sigma2_theta
//	mean      = (sum_r (y[t,r] - mu)/sigma2 + mu/sigma2_theta) / precision
//	variance  = 1/precision
//
// It depends only on mu, sigma2, sigma2_theta and the group's own observations, not on the other
// group means.
func ThetaPosterior(
	m *model.HierarchicalNormal, t int, mu, sigma2, sigma2Theta float64,
) (float64, float64) {
	diffs := m.Row(t)
	floats.AddConst(-mu, diffs)
	precision := float64(m.R())/sigma2 + 1/sigma2Theta
	mean := (floats.Sum(diffs)/sigma2 + mu/sigma2Theta) / precision
	return mean, 1 / precision
}
