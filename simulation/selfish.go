package simulation

// Selfish withholds the blocks it finds and reveals them only to win races
// against the honest chain.
//
// The lead is the height of the private tip minus the height of the best
// block heard from other miners. With a lead of one or more the miner keeps
// its blocks; when the honest chain catches up it publishes just enough to
// stay ahead or to force a tie, and when the honest chain overtakes it the
// private branch is dropped.
type Selfish struct {
	baseMiner

	head    *Block // published
	private *Block // tip being extended
	public  *Block // best block heard from other miners
	racing  bool   // a published tie is competing with public
}

func NewSelfishMiner(id string, hashRate, connectivity int) *Selfish {
	return &Selfish{baseMiner: newBaseMiner(id, hashRate, connectivity)}
}

func (m *Selfish) Kind() Kind {
	return SelfishMiner
}

func (m *Selfish) CurrentlyMiningAt() *Block {
	return m.private
}

func (m *Selfish) CurrentHead() *Block {
	return m.head
}

// Lead is the number of blocks the private tip is ahead of the best block
// heard from the rest of the network.
func (m *Selfish) Lead() int {
	return int(m.private.Height()) - int(m.public.Height())
}

func (m *Selfish) Initialize(genesis *Block, stats NetworkStatistics) {
	m.head = genesis
	m.private = genesis
	m.public = genesis
	m.racing = false
}

func (m *Selfish) NetworkUpdate(stats NetworkStatistics) {}

func (m *Selfish) BlockMined(block *Block, isMinerMe bool) {
	if isMinerMe {
		m.mined(block)
		return
	}
	m.heard(block)
}

func (m *Selfish) mined(block *Block) {
	if !IsLonger(block, m.private) {
		return
	}
	m.private = block
	if m.racing {
		// Extending our side of a tie settles the race in our favour, so the
		// block is published at once instead of being withheld at lead 1.
		m.head = block
		m.public = block
		m.racing = false
	}
}

func (m *Selfish) heard(block *Block) {
	if !IsLonger(block, m.public) {
		return
	}
	m.public = block
	m.racing = false

	switch lead := m.Lead(); {
	case lead < 0:
		m.head = block
		m.private = block
	case lead == 0:
		// The honest chain matched our withheld tip: reveal it and race.
		m.head = m.private
		m.racing = true
	case lead == 1:
		// Revealing everything leaves the honest tip one block short.
		m.head = m.private
		m.public = m.private
	default:
		m.head = m.private.Ancestor(block.Height())
	}
}
