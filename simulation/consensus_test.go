package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLonger(t *testing.T) {
	g := GenesisBlock()
	a := newBlock(g, "A", 1, 1, 1)
	b := newBlock(g, "B", 1, 2, 2)

	assert.True(t, IsLonger(a, g))
	assert.False(t, IsLonger(b, a), "equal height never displaces")
	assert.False(t, IsLonger(g, a))
}

func TestCanonicalHead(t *testing.T) {
	g := GenesisBlock()
	a := newBlock(g, "A", 1, 1, 1)
	b := newBlock(g, "B", 1, 2, 2)
	c := newBlock(b, "B", 1, 3, 3)

	cases := []struct {
		name string
		tips []*Block
		want *Block
	}{
		{name: "longest wins", tips: []*Block{a, c, b}, want: c},
		{name: "tie goes to first created", tips: []*Block{b, a}, want: a},
		{name: "nil tips skipped", tips: []*Block{nil, b, nil}, want: b},
		{name: "only genesis", tips: []*Block{g}, want: g},
		{name: "no tips", tips: nil, want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Same(t, tc.want, CanonicalHead(tc.tips...))
		})
	}
}

func TestCanonicalChain(t *testing.T) {
	g := GenesisBlock()
	a := newBlock(g, "A", 1, 1, 1)
	b := newBlock(a, "B", 1, 2, 2)

	chain, err := CanonicalChain(b)
	require.NoError(t, err)
	assert.Equal(t, []*Block{g, a, b}, chain)

	chain, err = CanonicalChain(g)
	require.NoError(t, err)
	assert.Equal(t, []*Block{g}, chain)
}

func TestCanonicalChainRejectsBrokenLinks(t *testing.T) {
	g := GenesisBlock()
	a := newBlock(g, "A", 1, 1, 1)
	broken := &Block{parent: a, height: 5, minerID: "X"}

	_, err := CanonicalChain(broken)
	assert.ErrorIs(t, err, ErrInvariantViolation)
}

func TestChainProfitsAndShares(t *testing.T) {
	g := GenesisBlock()
	a := newBlock(g, "A", 1, 1, 1)
	b := newBlock(a, "B", 2, 2, 2)
	c := newBlock(b, "A", 1, 3, 3)
	newBlock(a, "C", 5, 4, 4) // orphaned sibling of b

	profits := ChainProfits(c)
	assert.Equal(t, map[string]float64{"A": 2, "B": 2}, profits)

	shares := RelativeShares(profits)
	assert.InDelta(t, 0.5, shares["A"], 1e-12)
	assert.InDelta(t, 0.5, shares["B"], 1e-12)

	shares = RelativeShares(map[string]float64{"A": 3, "B": 0, "C": 1})
	assert.Equal(t, map[string]float64{"A": 0.75, "C": 0.25}, shares)

	assert.Empty(t, RelativeShares(ChainProfits(g)))
}
