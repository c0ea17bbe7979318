package experiment

import (
	"context"
	"sort"

	"github.com/dominant-strategies/go-quai/event"
	"github.com/pkg/errors"
	"github.com/shreekarashastry/miningsim/log"
	"github.com/shreekarashastry/miningsim/simulation"
	"github.com/sirupsen/logrus"
)

const (
	DefaultIterations = 100
	DefaultSeed       = 2345
	// DefaultBlockRate gives iterations of 10000 blocks on average.
	DefaultBlockRate  = 0.0001
	DefaultOrphanRate = 0.005
)

type Config struct {
	Scenario   string
	Iterations int
	Seed       int64
	// BlockRate is the rate of the exponential draw for the number of blocks
	// in each iteration.
	BlockRate float64
	Network   simulation.Config
}

// IterationEvent is sent on the runner's feed after every iteration.
type IterationEvent struct {
	Scenario  string
	Iteration int
	Blocks    int
	// Result is nil when the iteration drew zero blocks.
	Result  *simulation.Result
	Profits map[string]float64
	// Orphans and OrphanedValue count, per miner, the blocks of the run that
	// ended off the canonical chain.
	Orphans       map[string]int
	OrphanedValue map[string]float64
}

// Report aggregates all iterations of an experiment.
type Report struct {
	Scenario   string
	Seed       int64
	Iterations int
	Profits    map[string]float64
	Shares     map[string]float64
	Mined      int
	Orphaned   int

	Orphans       map[string]int
	OrphanedValue map[string]float64
}

// MinerIDs returns the ids of every miner that earned or lost a block,
// sorted.
func (r *Report) MinerIDs() []string {
	seen := make(map[string]struct{}, len(r.Profits))
	for id := range r.Profits {
		seen[id] = struct{}{}
	}
	for id := range r.Orphans {
		seen[id] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Runner repeats seeded simulations over one set of miners and policies.
type Runner struct {
	cfg    Config
	miners []simulation.Miner
	reward simulation.RewardPolicy
	churn  simulation.ChurnPolicy

	iterationFeed event.Feed
}

// NewRunner uses cfg as given; zero iterations produce an empty report.
func NewRunner(cfg Config, miners []simulation.Miner, reward simulation.RewardPolicy, churn simulation.ChurnPolicy) *Runner {
	return &Runner{
		cfg:    cfg,
		miners: miners,
		reward: reward,
		churn:  churn,
	}
}

// SubscribeIterations delivers an IterationEvent per iteration. Sending
// blocks until every subscriber has received the event.
func (r *Runner) SubscribeIterations(ch chan<- IterationEvent) event.Subscription {
	return r.iterationFeed.Subscribe(ch)
}

func (r *Runner) Config() Config {
	return r.cfg
}

// Run executes all iterations. The block count of each iteration and every
// draw inside the network come from one sampler seeded with cfg.Seed.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if r.cfg.Iterations < 0 {
		return nil, errors.Wrapf(simulation.ErrInvalidConfig, "iterations %d", r.cfg.Iterations)
	}
	if r.cfg.BlockRate <= 0 {
		return nil, errors.Wrapf(simulation.ErrInvalidConfig, "block rate %v", r.cfg.BlockRate)
	}

	rng := simulation.NewSampler(r.cfg.Seed)
	network := simulation.NewNetwork(r.reward, r.churn, r.cfg.Network)
	report := &Report{
		Scenario:   r.cfg.Scenario,
		Seed:       r.cfg.Seed,
		Iterations: r.cfg.Iterations,
		Profits:    make(map[string]float64),

		Orphans:       make(map[string]int),
		OrphanedValue: make(map[string]float64),
	}

	for i := 0; i < r.cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		numBlocks := int(rng.Exponential(r.cfg.BlockRate))
		r.reward.Reset()
		for _, m := range r.miners {
			m.ResetHashRate()
			m.ResetConnectivity()
		}

		ev := IterationEvent{Scenario: r.cfg.Scenario, Iteration: i, Blocks: numBlocks}
		if numBlocks > 0 {
			res, err := network.Run(numBlocks, r.miners, rng)
			if err != nil {
				return nil, errors.WithMessagef(err, "iteration %d", i)
			}
			t, err := tallyIteration(res, numBlocks)
			if err != nil {
				return nil, errors.WithMessagef(err, "iteration %d", i)
			}
			for id, p := range t.profits {
				report.Profits[id] += p
			}
			for id, n := range t.orphans {
				report.Orphans[id] += n
				report.OrphanedValue[id] += t.orphanedValue[id]
			}
			report.Mined += res.Mined
			report.Orphaned += res.Orphaned()
			ev.Result = res
			ev.Profits = t.profits
			ev.Orphans = t.orphans
			ev.OrphanedValue = t.orphanedValue
		}
		r.iterationFeed.Send(ev)
	}

	report.Shares = simulation.RelativeShares(report.Profits)
	for _, id := range report.MinerIDs() {
		log.Global.WithFields(logrus.Fields{
			"scenario": report.Scenario,
			"miner":    id,
			"share":    report.Shares[id],
		}).Info("Relative profit")
	}
	return report, nil
}

type tally struct {
	profits       map[string]float64
	orphans       map[string]int
	orphanedValue map[string]float64
}

// tallyIteration walks the canonical chain of one run and sums block values
// per miner, then charges every other block in the run's index to its miner
// as orphaned.
func tallyIteration(res *simulation.Result, numBlocks int) (*tally, error) {
	if res.Head.Height() > uint64(numBlocks) {
		return nil, errors.Wrapf(simulation.ErrInvariantViolation, "head height %d exceeds %d mined blocks", res.Head.Height(), numBlocks)
	}
	chain, err := simulation.CanonicalChain(res.Head)
	if err != nil {
		return nil, err
	}
	if chain[0] != res.Genesis {
		return nil, errors.Wrap(simulation.ErrInvariantViolation, "canonical chain does not start at this run's genesis")
	}

	t := &tally{
		profits:       make(map[string]float64),
		orphans:       make(map[string]int),
		orphanedValue: make(map[string]float64),
	}
	canonical := make(map[simulation.Hash]struct{}, len(chain))
	for _, b := range chain {
		if _, ok := res.Blocks.Get(b.Hash()); !ok {
			return nil, errors.Wrapf(simulation.ErrInvariantViolation, "canonical block %v at height %d was not mined in this run", b.Hash(), b.Height())
		}
		canonical[b.Hash()] = struct{}{}
		if !b.IsGenesis() {
			t.profits[b.MinerID()] += b.Value()
		}
	}
	for _, b := range res.Blocks.Blocks() {
		if _, ok := canonical[b.Hash()]; ok {
			continue
		}
		t.orphans[b.MinerID()]++
		t.orphanedValue[b.MinerID()] += b.Value()
	}
	if orphaned := res.Blocks.Len() - len(chain); orphaned != res.Orphaned() {
		return nil, errors.Wrapf(simulation.ErrInvariantViolation, "block index holds %d orphans, run reports %d", orphaned, res.Orphaned())
	}
	return t, nil
}
