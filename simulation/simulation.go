package simulation

import (
	"github.com/pkg/errors"
	"github.com/shreekarashastry/miningsim/log"
	"github.com/sirupsen/logrus"
)

// defaultBlockInterval is the mean time between blocks at the starting hash
// rate when no difficulty is configured.
const defaultBlockInterval = 600.0

type AnnounceOrder uint

const (
	// AnnounceConnectivity visits receivers, and orders competing
	// announcements, by draws weighted on connectivity.
	AnnounceConnectivity AnnounceOrder = iota
	// AnnounceFixed visits receivers in the order the miners were given and
	// delivers announcements in the order they were made.
	AnnounceFixed
)

type Config struct {
	// OrphanRate is handed to the churn policy every round.
	OrphanRate float64
	// Difficulty scales block arrivals: the rate is totalHashRate/Difficulty.
	// Zero means defaultBlockInterval at the starting hash rate.
	Difficulty float64
	Announce   AnnounceOrder
}

// Network drives one simulation at a time with fixed reward and churn
// policies.
type Network struct {
	reward RewardPolicy
	churn  ChurnPolicy
	cfg    Config
}

func NewNetwork(reward RewardPolicy, churn ChurnPolicy, cfg Config) *Network {
	return &Network{reward: reward, churn: churn, cfg: cfg}
}

// Result is the outcome of a single run.
type Result struct {
	Head    *Block
	Genesis *Block
	Blocks  *BlockDB
	// Mined counts every mining event, withheld blocks included.
	Mined int
}

// Orphaned is the number of mined blocks that are not on the canonical chain.
func (r *Result) Orphaned() int {
	return r.Mined - int(r.Head.Height())
}

func (r *Result) OrphanRate() float64 {
	if r.Mined == 0 {
		return 0
	}
	return float64(r.Orphaned()) / float64(r.Mined)
}

// RunSimulation runs a network with the default configuration and returns
// the canonical head.
func RunSimulation(targetBlocks int, miners []Miner, reward RewardPolicy, churn ChurnPolicy, rng Random) (*Block, error) {
	res, err := NewNetwork(reward, churn, Config{}).Run(targetBlocks, miners, rng)
	if err != nil {
		return nil, err
	}
	return res.Head, nil
}

// Run mines targetBlocks blocks and resolves the canonical head. Every
// random draw comes from rng, in a fixed order, so equal inputs and seeds
// produce identical block trees.
func (n *Network) Run(targetBlocks int, miners []Miner, rng Random) (*Result, error) {
	if targetBlocks <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "target block count %d", targetBlocks)
	}
	if err := validateMiners(miners); err != nil {
		return nil, err
	}

	genesis := GenesisBlock()
	stats := n.churn.ChurnNetwork(0, miners)
	if stats.TotalHashRate() <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "total hash rate %d", stats.TotalHashRate())
	}
	for _, m := range miners {
		m.Initialize(genesis, stats)
	}

	difficulty := n.cfg.Difficulty
	if difficulty <= 0 {
		difficulty = float64(stats.TotalHashRate()) * defaultBlockInterval
	}

	db := NewBlockDB(targetBlocks + 1)
	db.Add(genesis)
	g := newGossip(miners, n.cfg.Announce, targetBlocks)
	g.markBroadcast(genesis)

	var now float64
	hashRates := make([]int, len(miners))
	for seq := 1; seq <= targetBlocks; seq++ {
		if stats.TotalHashRate() <= 0 {
			return nil, errors.Wrapf(ErrInvalidConfig, "total hash rate %d after churn", stats.TotalHashRate())
		}
		dt := rng.Exponential(float64(stats.TotalHashRate()) / difficulty)
		now += dt

		for i, m := range miners {
			hashRates[i] = m.HashRate()
		}
		winner := weightedIndex(rng, hashRates)
		target := miners[winner].CurrentlyMiningAt()
		if target == nil {
			return nil, errors.Wrapf(ErrInvariantViolation, "miner %q has no block to mine on", miners[winner].ID())
		}

		height := target.Height() + 1
		block := newBlock(target, miners[winner].ID(), n.reward.ComputeBlockReward(height, dt), now, uint64(seq))
		db.Add(block)
		if err := g.announce(block, winner, rng); err != nil {
			return nil, err
		}

		stats = n.churn.ChurnNetwork(n.cfg.OrphanRate, miners)
		for _, m := range miners {
			m.NetworkUpdate(stats)
		}
	}

	tips := make([]*Block, 0, 2*len(miners))
	for _, m := range miners {
		tips = append(tips, m.CurrentHead(), m.CurrentlyMiningAt())
	}
	head := CanonicalHead(tips...)
	if head == nil {
		return nil, errors.Wrap(ErrInvariantViolation, "no miner holds a head")
	}

	res := &Result{Head: head, Genesis: genesis, Blocks: db, Mined: targetBlocks}
	log.Global.WithFields(logrus.Fields{
		"mined":    res.Mined,
		"height":   head.Height(),
		"orphaned": res.Orphaned(),
		"head":     head.Hash(),
	}).Debug("Simulation finished")
	return res, nil
}

func validateMiners(miners []Miner) error {
	if len(miners) == 0 {
		return errors.Wrap(ErrInvalidConfig, "no miners")
	}
	ids := make(map[string]struct{}, len(miners))
	for _, m := range miners {
		if _, dup := ids[m.ID()]; dup {
			return errors.Wrapf(ErrInvalidConfig, "duplicate miner id %q", m.ID())
		}
		ids[m.ID()] = struct{}{}
		if m.BaseHashRate() <= 0 || m.HashRate() <= 0 {
			return errors.Wrapf(ErrInvalidConfig, "miner %q hash rate %d (base %d)", m.ID(), m.HashRate(), m.BaseHashRate())
		}
		if m.BaseConnectivity() <= 0 || m.Connectivity() <= 0 {
			return errors.Wrapf(ErrInvalidConfig, "miner %q connectivity %d (base %d)", m.ID(), m.Connectivity(), m.BaseConnectivity())
		}
	}
	return nil
}
