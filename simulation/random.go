package simulation

import (
	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Random is the single sequential source every probabilistic choice of a
// run draws from. Implementations must be deterministic for a given seed.
type Random interface {
	Exponential(rate float64) float64
	Normal(mean, stdDev float64) float64
	Lognormal(mu, sigma float64) float64
	// Float64 returns a uniform sample in [0, 1).
	Float64() float64
}

// Sampler draws from gonum distributions over one seeded source.
type Sampler struct {
	src exprand.Source
}

func NewSampler(seed int64) *Sampler {
	return &Sampler{src: exprand.NewSource(uint64(seed))}
}

func (s *Sampler) Exponential(rate float64) float64 {
	return distuv.Exponential{Rate: rate, Src: s.src}.Rand()
}

func (s *Sampler) Normal(mean, stdDev float64) float64 {
	return distuv.Normal{Mu: mean, Sigma: stdDev, Src: s.src}.Rand()
}

func (s *Sampler) Lognormal(mu, sigma float64) float64 {
	return distuv.LogNormal{Mu: mu, Sigma: sigma, Src: s.src}.Rand()
}

func (s *Sampler) Float64() float64 {
	return distuv.Uniform{Min: 0, Max: 1, Src: s.src}.Rand()
}

// weightedIndex picks index i with probability weights[i]/sum(weights).
// Weights must be non-negative with a positive sum.
func weightedIndex(rng Random, weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	target := rng.Float64() * float64(total)
	acc := 0.0
	for i, w := range weights {
		acc += float64(w)
		if target < acc {
			return i
		}
	}
	// Float rounding can leave target at the very top of the range.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return len(weights) - 1
}

// weightedOrder draws a permutation of 0..len(weights)-1 without
// replacement, each step proportional to the remaining weights.
func weightedOrder(rng Random, weights []int) []int {
	idx := make([]int, len(weights))
	w := make([]int, len(weights))
	for i := range weights {
		idx[i] = i
		w[i] = weights[i]
	}
	order := make([]int, 0, len(weights))
	for len(idx) > 1 {
		k := weightedIndex(rng, w)
		order = append(order, idx[k])
		idx = append(idx[:k], idx[k+1:]...)
		w = append(w[:k], w[k+1:]...)
	}
	return append(order, idx...)
}
