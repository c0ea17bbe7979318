package simulation

// DefaultSnipeFactor is how many times the mean observed block value the
// head must be worth before a fee sniper tries to replace it.
const DefaultSnipeFactor = 2.0

// FeeSniping tries to orphan unusually valuable blocks. When the public head
// was mined by someone else and is worth more than SnipeFactor times the
// average block it has seen, it mines on that head's parent so that two
// blocks of its own replace it. Every block it finds is published at once.
type FeeSniping struct {
	baseMiner
	snipeFactor float64

	head   *Block
	target *Block

	seen  int
	value float64
}

func NewFeeSnipingMiner(id string, hashRate, connectivity int) *FeeSniping {
	return &FeeSniping{
		baseMiner:   newBaseMiner(id, hashRate, connectivity),
		snipeFactor: DefaultSnipeFactor,
	}
}

// WithSnipeFactor overrides DefaultSnipeFactor.
func (m *FeeSniping) WithSnipeFactor(f float64) *FeeSniping {
	m.snipeFactor = f
	return m
}

func (m *FeeSniping) Kind() Kind {
	return FeeSnipingMiner
}

func (m *FeeSniping) CurrentlyMiningAt() *Block {
	return m.target
}

func (m *FeeSniping) CurrentHead() *Block {
	return m.head
}

// Sniping reports whether the miner is working on a branch that competes
// with its own published head.
func (m *FeeSniping) Sniping() bool {
	return m.target != m.head
}

func (m *FeeSniping) Initialize(genesis *Block, stats NetworkStatistics) {
	m.head = genesis
	m.target = genesis
	m.seen = 0
	m.value = 0
}

func (m *FeeSniping) NetworkUpdate(stats NetworkStatistics) {}

func (m *FeeSniping) BlockMined(block *Block, isMinerMe bool) {
	if isMinerMe {
		if block.Parent() != m.target {
			return
		}
		m.observe(block)
		// A replacement at the head's height is published even though the
		// rest of the network keeps the block it saw first.
		m.head = block
		m.target = block
		return
	}
	if !IsLonger(block, m.head) {
		return
	}
	m.observe(block)
	m.head = block
	m.target = m.chooseTarget(block)
}

func (m *FeeSniping) observe(block *Block) {
	m.seen++
	m.value += block.Value()
}

func (m *FeeSniping) chooseTarget(head *Block) *Block {
	if head.MinerID() == m.id || head.IsGenesis() || m.seen < 2 {
		return head
	}
	mean := m.value / float64(m.seen)
	if head.Value() > m.snipeFactor*mean {
		return head.Parent()
	}
	return head
}
