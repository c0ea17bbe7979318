package simulation

// Majority mines honestly until it controls more than half of the hash
// rate. From then on, for the rest of the run, it only extends its own
// branch and publishes whenever that branch is strictly longer than anything
// the rest of the network has shown it.
type Majority struct {
	baseMiner

	head    *Block // published
	private *Block // tip being extended
	public  *Block // best block heard from other miners
	attack  bool
}

func NewMajorityMiner(id string, hashRate, connectivity int) *Majority {
	return &Majority{baseMiner: newBaseMiner(id, hashRate, connectivity)}
}

func (m *Majority) Kind() Kind {
	return MajorityMiner
}

func (m *Majority) CurrentlyMiningAt() *Block {
	return m.private
}

func (m *Majority) CurrentHead() *Block {
	return m.head
}

// Attacking reports whether the miner currently ignores competing blocks.
func (m *Majority) Attacking() bool {
	return m.attack
}

func (m *Majority) Initialize(genesis *Block, stats NetworkStatistics) {
	m.head = genesis
	m.private = genesis
	m.public = genesis
	m.attack = m.hasMajority(stats)
}

func (m *Majority) BlockMined(block *Block, isMinerMe bool) {
	if isMinerMe {
		if !IsLonger(block, m.private) {
			return
		}
		m.private = block
		if !m.attack || IsLonger(block, m.public) {
			m.head = block
		}
		return
	}

	if IsLonger(block, m.public) {
		m.public = block
	}
	if !m.attack && IsLonger(block, m.head) {
		m.head = block
		m.private = block
	}
}

func (m *Majority) NetworkUpdate(stats NetworkStatistics) {
	if m.attack || !m.hasMajority(stats) {
		return
	}
	// The attack latches for the rest of the run: a churn dip below half
	// does not give up the private branch.
	m.attack = true
	m.private = m.head
}
