// Package variate provides the seedable random variate source shared by the samplers.
package variate

import (
	"math"
	"sync"

	cerrors "github.com/APanico12/MCMC/mcmc/common/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Source produces independent draws from Normal, Gamma, and Uniform(0, 1) distributions. Given
// the same seed and the same sequence of calls, a Source produces bit-identical results.
type Source interface {
	// Normal draws from a normal distribution with the given mean and variance. A variance of 0
	// yields the mean.
	Normal(mean, variance float64) (float64, error)

	// Gamma draws from a gamma distribution with the given shape and rate (inverse scale).
	Gamma(shape, rate float64) (float64, error)

	// Uniform01 draws from the uniform distribution on [0, 1).
	Uniform01() float64
}

// DistSource is a Source backed by gonum distributions sharing a single PCG source. It is not
// safe for concurrent use; see Locked.
type DistSource struct {
	seed uint64
	src  rand.Source
}

// NewSource returns a new *DistSource seeded with the given seed.
func NewSource(seed uint64) *DistSource {
	return &DistSource{
		seed: seed,
		src:  rand.NewSource(seed),
	}
}

// Seed returns the seed the source was created with.
func (s *DistSource) Seed() uint64 {
	return s.seed
}

// Normal draws from N(mean, variance).
func (s *DistSource) Normal(mean, variance float64) (float64, error) {
	if err := checkNormal(mean, variance); err != nil {
		return 0, err
	}
	if variance == 0 {
		return mean, nil
	}
	return distuv.Normal{Mu: mean, Sigma: math.Sqrt(variance), Src: s.src}.Rand(), nil
}

// Gamma draws from Gamma(shape, rate).
func (s *DistSource) Gamma(shape, rate float64) (float64, error) {
	if err := checkGamma(shape, rate); err != nil {
		return 0, err
	}
	return distuv.Gamma{Alpha: shape, Beta: rate, Src: s.src}.Rand(), nil
}

// Uniform01 draws from U[0, 1).
func (s *DistSource) Uniform01() float64 {
	return distuv.Uniform{Min: 0, Max: 1, Src: s.src}.Rand()
}

// Locked wraps a Source so it may be shared by multiple goroutines. Draw order (and thus
// reproducibility) across goroutines is still determined by the callers.
type Locked struct {
	src Source
	mu  sync.Mutex
}

// NewLocked returns a new *Locked wrapping the given source.
func NewLocked(src Source) *Locked {
	return &Locked{src: src}
}

// Normal draws from N(mean, variance) while holding the lock.
func (l *Locked) Normal(mean, variance float64) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Normal(mean, variance)
}

// Gamma draws from Gamma(shape, rate) while holding the lock.
func (l *Locked) Gamma(shape, rate float64) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Gamma(shape, rate)
}

// Uniform01 draws from U[0, 1) while holding the lock.
func (l *Locked) Uniform01() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Uniform01()
}

func checkNormal(mean, variance float64) error {
	if err := cerrors.CheckFinite("mean", mean); err != nil {
		return err
	}
	return cerrors.CheckNonNegative("variance", variance)
}

func checkGamma(shape, rate float64) error {
	if err := cerrors.CheckPositive("shape", shape); err != nil {
		return err
	}
	return cerrors.CheckPositive("rate", rate)
}
