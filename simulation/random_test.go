package simulation

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamplerIsDeterministic(t *testing.T) {
	a, b := NewSampler(42), NewSampler(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Exponential(0.5), b.Exponential(0.5))
		require.Equal(t, a.Normal(10, 2), b.Normal(10, 2))
		require.Equal(t, a.Lognormal(0, 1), b.Lognormal(0, 1))
		require.Equal(t, a.Float64(), b.Float64())
	}

	c := NewSampler(43)
	assert.NotEqual(t, NewSampler(42).Float64(), c.Float64())
}

func TestSamplerRanges(t *testing.T) {
	s := NewSampler(7)
	for i := 0; i < 1000; i++ {
		u := s.Float64()
		assert.True(t, u >= 0 && u < 1)
		assert.True(t, s.Exponential(2) >= 0)
		assert.True(t, s.Lognormal(0, 1) > 0)
	}
}

func TestWeightedIndexFollowsWeights(t *testing.T) {
	rng := NewSampler(1)
	weights := []int{1, 0, 3}
	counts := make([]int, len(weights))
	const draws = 100000
	for i := 0; i < draws; i++ {
		counts[weightedIndex(rng, weights)]++
	}
	assert.Zero(t, counts[1], "zero weight is never drawn")
	assert.InDelta(t, 0.25, float64(counts[0])/draws, 0.01)
	assert.InDelta(t, 0.75, float64(counts[2])/draws, 0.01)
}

func TestWeightedOrderIsPermutation(t *testing.T) {
	rng := NewSampler(3)
	weights := []int{5, 1, 1, 10, 2}
	firsts := make(map[int]int)
	for i := 0; i < 2000; i++ {
		order := weightedOrder(rng, weights)
		require.Len(t, order, len(weights))
		sorted := append([]int(nil), order...)
		sort.Ints(sorted)
		assert.Equal(t, []int{0, 1, 2, 3, 4}, sorted)
		firsts[order[0]]++
	}
	assert.Greater(t, firsts[3], firsts[0], "heaviest weight leads most often")
	assert.Greater(t, firsts[0], firsts[1])
}
