package mh

import (
	"math"
	"sort"

	"github.com/APanico12/MCMC/mcmc/sampler/variate"
)

// Target is an unnormalized, non-negative target density.
type Target func(x float64) float64

// Proposal generates a symmetric random-walk proposal around the current state.
type Proposal interface {
	// Propose returns a proposed state given the current state x and the proposal scale.
	Propose(x, scale float64) (float64, error)
}

// ProposalFunc adapts a function to a Proposal.
type ProposalFunc func(x, scale float64) (float64, error)

// Propose calls f(x, scale).
func (f ProposalFunc) Propose(x, scale float64) (float64, error) {
	return f(x, scale)
}

// ExpNegSquare is the density exp(-x^2), proportional to N(0, 1/2).
func ExpNegSquare(x float64) float64 {
	return math.Exp(-x * x)
}

// StandardNormal is the density exp(-x^2/2), proportional to N(0, 1).
func StandardNormal(x float64) float64 {
	return math.Exp(-x * x / 2)
}

// Bimodal is an equal mixture of N(-2, 1) and N(2, 1), unnormalized.
func Bimodal(x float64) float64 {
	return math.Exp(-(x-2)*(x-2)/2) + math.Exp(-(x+2)*(x+2)/2)
}

// NormalProposal returns a Proposal drawing from N(x, scale^2), i.e., scale is the standard
// deviation of the random-walk step.
func NormalProposal(src variate.Source) Proposal {
	return ProposalFunc(func(x, scale float64) (float64, error) {
		return src.Normal(x, scale*scale)
	})
}

// UniformProposal returns a Proposal drawing uniformly from [x - scale/2, x + scale/2).
func UniformProposal(src variate.Source) Proposal {
	return ProposalFunc(func(x, scale float64) (float64, error) {
		return x + scale*(src.Uniform01()-0.5), nil
	})
}

// Targets are the named built-in target densities.
var Targets = map[string]Target{
	"exp-neg-square":  ExpNegSquare,
	"standard-normal": StandardNormal,
	"bimodal":         Bimodal,
}

// Proposals are the named built-in proposal constructors.
var Proposals = map[string]func(src variate.Source) Proposal{
	"normal":  NormalProposal,
	"uniform": UniformProposal,
}

// TargetNames returns the sorted names of the built-in targets.
func TargetNames() []string {
	return sortedKeys(Targets)
}

// ProposalNames returns the sorted names of the built-in proposals.
func ProposalNames() []string {
	return sortedKeys(Proposals)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
