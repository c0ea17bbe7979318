package simulation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenesisBlock(t *testing.T) {
	g := GenesisBlock()

	assert.True(t, g.IsGenesis())
	assert.Nil(t, g.Parent())
	assert.Equal(t, uint64(0), g.Height())
	assert.Equal(t, uint64(0), g.Seq())
	assert.Zero(t, g.Value())
	assert.Equal(t, Hash{}, g.ParentHash())
	assert.Equal(t, g.Hash(), GenesisBlock().Hash(), "genesis is the same block in every run")
}

func TestNewBlockLinksToParent(t *testing.T) {
	g := GenesisBlock()
	a := newBlock(g, "A", 1, 10, 1)
	b := newBlock(a, "B", 2.5, 20, 2)

	assert.Equal(t, uint64(1), a.Height())
	assert.Equal(t, uint64(2), b.Height())
	assert.Same(t, a, b.Parent())
	assert.Equal(t, a.Hash(), b.ParentHash())
	assert.Equal(t, "B", b.MinerID())
	assert.Equal(t, 2.5, b.Value())
	assert.Equal(t, 20.0, b.Time())
	assert.False(t, b.IsGenesis())
}

func TestBlockHashCommitsToContents(t *testing.T) {
	g := GenesisBlock()
	a := newBlock(g, "A", 1, 10, 1)

	cases := []struct {
		name  string
		block *Block
	}{
		{name: "different miner", block: newBlock(g, "B", 1, 10, 1)},
		{name: "different value", block: newBlock(g, "A", 2, 10, 1)},
		{name: "different time", block: newBlock(g, "A", 1, 11, 1)},
		{name: "different seq", block: newBlock(g, "A", 1, 10, 2)},
		{name: "different parent", block: newBlock(newBlock(g, "A", 1, 5, 3), "A", 1, 10, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotEqual(t, a.Hash(), tc.block.Hash())
		})
	}
	assert.Equal(t, a.Hash(), newBlock(g, "A", 1, 10, 1).Hash())
}

func TestAncestor(t *testing.T) {
	g := GenesisBlock()
	a := newBlock(g, "A", 1, 1, 1)
	b := newBlock(a, "A", 1, 2, 2)
	c := newBlock(b, "A", 1, 3, 3)

	assert.Same(t, c, c.Ancestor(3))
	assert.Same(t, a, c.Ancestor(1))
	assert.Same(t, g, c.Ancestor(0))
	assert.Nil(t, a.Ancestor(2))
}

func TestBlockDB(t *testing.T) {
	g := GenesisBlock()
	a := newBlock(g, "A", 1, 1, 1)
	b := newBlock(g, "B", 1, 2, 2)
	c := newBlock(a, "A", 1, 3, 3)

	db := NewBlockDB(4)
	for _, blk := range []*Block{g, c, a, b} {
		db.Add(blk)
	}
	require.Equal(t, 4, db.Len())

	got, ok := db.Get(b.Hash())
	require.True(t, ok)
	assert.Same(t, b, got)

	_, ok = db.Get(Hash{1})
	assert.False(t, ok)

	assert.Equal(t, []*Block{g, a, b, c}, db.Blocks())
}

func TestHashString(t *testing.T) {
	var h Hash
	h.SetBytes([]byte{0xab, 0xcd})
	assert.Equal(t, "0x"+strings.Repeat("0", 60)+"abcd", h.String())
}
