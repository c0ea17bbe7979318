package simulation

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

type Kind uint

const (
	CompliantMiner Kind = iota
	MajorityMiner
	SelfishMiner
	FeeSnipingMiner
)

var kindNames = map[Kind]string{
	CompliantMiner:  "compliant",
	MajorityMiner:   "majority",
	SelfishMiner:    "selfish",
	FeeSnipingMiner: "feesniping",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint(k))
}

// ParseKind accepts the names printed by Kind.String, case-insensitively,
// with or without dashes.
func ParseKind(s string) (Kind, error) {
	norm := strings.NewReplacer("-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	for k, name := range kindNames {
		if name == norm {
			return k, nil
		}
	}
	if k, ok := kindAliases[norm]; ok {
		return k, nil
	}
	return 0, errors.Wrapf(ErrUnknownKind, "%q", s)
}

var kindAliases = map[string]Kind{
	"honest":           CompliantMiner,
	"majorityattacker": MajorityMiner,
}

// Miner is the capability set shared by every strategy. A miner's private
// state is only ever changed through Initialize, BlockMined and NetworkUpdate.
type Miner interface {
	ID() string
	Kind() Kind

	// CurrentlyMiningAt is the block the miner extends. It may not have been
	// published yet.
	CurrentlyMiningAt() *Block
	// CurrentHead is the head the miner publishes to the network.
	CurrentHead() *Block

	// BlockMined informs the miner of a block. The same block may be heard
	// more than once; isMinerMe is set when the miner found it.
	BlockMined(block *Block, isMinerMe bool)
	NetworkUpdate(stats NetworkStatistics)
	// Initialize must reset all private state.
	Initialize(genesis *Block, stats NetworkStatistics)

	HashRate() int
	SetHashRate(hashRate int)
	ResetHashRate()
	BaseHashRate() int

	Connectivity() int
	SetConnectivity(connectivity int)
	ResetConnectivity()
	BaseConnectivity() int
}

// NewMiner builds a miner of the given kind.
func NewMiner(kind Kind, id string, hashRate, connectivity int) (Miner, error) {
	switch kind {
	case CompliantMiner:
		return NewCompliantMiner(id, hashRate, connectivity), nil
	case MajorityMiner:
		return NewMajorityMiner(id, hashRate, connectivity), nil
	case SelfishMiner:
		return NewSelfishMiner(id, hashRate, connectivity), nil
	case FeeSnipingMiner:
		return NewFeeSnipingMiner(id, hashRate, connectivity), nil
	default:
		return nil, errors.Wrapf(ErrUnknownKind, "%v", kind)
	}
}

// baseMiner carries identity and the churnable resources common to all
// strategies.
type baseMiner struct {
	id                   string
	hashRate, baseHash   int
	connectivity, baseCn int
}

func newBaseMiner(id string, hashRate, connectivity int) baseMiner {
	return baseMiner{
		id:           id,
		hashRate:     hashRate,
		baseHash:     hashRate,
		connectivity: connectivity,
		baseCn:       connectivity,
	}
}

func (m *baseMiner) ID() string {
	return m.id
}

func (m *baseMiner) HashRate() int {
	return m.hashRate
}

func (m *baseMiner) SetHashRate(hashRate int) {
	m.hashRate = hashRate
}

func (m *baseMiner) ResetHashRate() {
	m.hashRate = m.baseHash
}

func (m *baseMiner) BaseHashRate() int {
	return m.baseHash
}

func (m *baseMiner) Connectivity() int {
	return m.connectivity
}

func (m *baseMiner) SetConnectivity(connectivity int) {
	m.connectivity = connectivity
}

func (m *baseMiner) ResetConnectivity() {
	m.connectivity = m.baseCn
}

func (m *baseMiner) BaseConnectivity() int {
	return m.baseCn
}

// hasMajority reports whether the miner's current hash rate is more than
// half of the network total.
func (m *baseMiner) hasMajority(stats NetworkStatistics) bool {
	return 2*m.hashRate > stats.TotalHashRate()
}
