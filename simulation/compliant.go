package simulation

// Compliant follows the protocol: it mines on the longest chain it knows and
// publishes every block at once.
type Compliant struct {
	baseMiner
	head *Block
}

func NewCompliantMiner(id string, hashRate, connectivity int) *Compliant {
	return &Compliant{baseMiner: newBaseMiner(id, hashRate, connectivity)}
}

func (m *Compliant) Kind() Kind {
	return CompliantMiner
}

func (m *Compliant) CurrentlyMiningAt() *Block {
	return m.head
}

func (m *Compliant) CurrentHead() *Block {
	return m.head
}

func (m *Compliant) BlockMined(block *Block, isMinerMe bool) {
	if IsLonger(block, m.head) {
		m.head = block
	}
}

func (m *Compliant) Initialize(genesis *Block, stats NetworkStatistics) {
	m.head = genesis
}

func (m *Compliant) NetworkUpdate(stats NetworkStatistics) {}
