package simulation

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"lukechampine.com/blake3"
)

const HashLength = 32

type Hash [HashLength]byte

// SetBytes sets the hash to the value of b.
// If b is larger than len(h), b will be cropped from the left.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > len(h) {
		b = b[len(b)-HashLength:]
	}

	copy(h[HashLength-len(b):], b)
}

func (h Hash) String() string {
	enc := make([]byte, len(h[:])*2+2)
	copy(enc, "0x")
	hex.Encode(enc[2:], h[:])
	return string(enc)
}

func (h Hash) Bytes() []byte {
	return h[:]
}

// Block is an immutable node of the block tree. Blocks only reference their
// parent, so every branch ever mined stays reachable from its own tip while
// the canonical chain is whatever the final head walks back through.
type Block struct {
	parent  *Block
	hash    Hash
	height  uint64
	minerID string
	value   float64
	time    float64
	seq     uint64
}

// GenesisBlock returns a fresh genesis block: height 0, no value, no parent.
func GenesisBlock() *Block {
	b := &Block{}
	b.hash = b.sealHash()
	return b
}

// newBlock extends parent with a block mined by minerID. seq is the creation
// index of the block within its run.
func newBlock(parent *Block, minerID string, value, time float64, seq uint64) *Block {
	b := &Block{
		parent:  parent,
		height:  parent.height + 1,
		minerID: minerID,
		value:   value,
		time:    time,
		seq:     seq,
	}
	b.hash = b.sealHash()
	return b
}

func (b *Block) sealHash() (hash Hash) {
	var parentHash Hash
	if b.parent != nil {
		parentHash = b.parent.hash
	}
	data := make([]byte, 0, HashLength+32+len(b.minerID))
	data = append(data, parentHash.Bytes()...)
	data = binary.BigEndian.AppendUint64(data, b.height)
	data = binary.BigEndian.AppendUint64(data, b.seq)
	data = binary.BigEndian.AppendUint64(data, math.Float64bits(b.value))
	data = binary.BigEndian.AppendUint64(data, math.Float64bits(b.time))
	data = append(data, b.minerID...)
	sum := blake3.Sum256(data)
	hash.SetBytes(sum[:])
	return hash
}

func (b *Block) Hash() Hash {
	return b.hash
}

// Parent returns nil for the genesis block.
func (b *Block) Parent() *Block {
	return b.parent
}

func (b *Block) ParentHash() Hash {
	if b.parent == nil {
		return Hash{}
	}
	return b.parent.hash
}

func (b *Block) Height() uint64 {
	return b.height
}

func (b *Block) MinerID() string {
	return b.minerID
}

func (b *Block) Value() float64 {
	return b.value
}

// Time is the simulation time at which the block was mined.
func (b *Block) Time() float64 {
	return b.time
}

// Seq is the creation index of the block in its run; genesis is 0.
func (b *Block) Seq() uint64 {
	return b.seq
}

func (b *Block) IsGenesis() bool {
	return b.parent == nil
}

// Ancestor returns the block at the given height on b's branch, or nil if
// height is above b.
func (b *Block) Ancestor(height uint64) *Block {
	if height > b.height {
		return nil
	}
	cur := b
	for cur.height > height {
		cur = cur.parent
	}
	return cur
}

func (b *Block) String() string {
	return fmt.Sprintf("{ ParentHash: %v, Height: %v, Miner: %q, Value: %.4f, Time: %.2f, Seq: %v }", b.ParentHash(), b.Height(), b.MinerID(), b.Value(), b.Time(), b.Seq())
}

// BlockDB indexes every block created during a run by hash.
type BlockDB struct {
	blocks *lru.Cache[Hash, *Block]
}

// NewBlockDB sizes the index for capacity blocks. A run never creates more
// than its target plus genesis, so nothing is evicted.
func NewBlockDB(capacity int) *BlockDB {
	if capacity < 1 {
		capacity = 1
	}
	bc, _ := lru.New[Hash, *Block](capacity)
	return &BlockDB{
		blocks: bc,
	}
}

func (db *BlockDB) Add(b *Block) {
	db.blocks.Add(b.Hash(), b)
}

func (db *BlockDB) Get(hash Hash) (*Block, bool) {
	return db.blocks.Peek(hash)
}

func (db *BlockDB) Len() int {
	return db.blocks.Len()
}

// Blocks returns all indexed blocks in creation order.
func (db *BlockDB) Blocks() []*Block {
	blocks := db.blocks.Values()
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].seq < blocks[j].seq })
	return blocks
}
