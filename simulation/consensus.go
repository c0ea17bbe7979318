package simulation

import "github.com/pkg/errors"

// IsLonger reports whether adopting candidate over current strictly extends
// the chain. Blocks at equal height never displace each other: the first
// block seen at a height wins.
func IsLonger(candidate, current *Block) bool {
	return candidate.Height() > current.Height()
}

// CanonicalHead applies the longest-chain rule across tips. Ties at the
// greatest height go to the block created first. Nil tips are skipped.
func CanonicalHead(tips ...*Block) *Block {
	var best *Block
	for _, tip := range tips {
		if tip == nil {
			continue
		}
		if best == nil || tip.Height() > best.Height() ||
			(tip.Height() == best.Height() && tip.Seq() < best.Seq()) {
			best = tip
		}
	}
	return best
}

// CanonicalChain walks head back to genesis and returns the chain in height
// order, genesis first. A broken height link is an invariant violation.
func CanonicalChain(head *Block) ([]*Block, error) {
	chain := make([]*Block, head.Height()+1)
	cur := head
	for {
		chain[cur.Height()] = cur
		parent := cur.Parent()
		if parent == nil {
			break
		}
		if parent.Height()+1 != cur.Height() {
			return nil, errors.Wrapf(ErrInvariantViolation, "block %v at height %d has parent at height %d", cur.Hash(), cur.Height(), parent.Height())
		}
		cur = parent
	}
	if cur.Height() != 0 {
		return nil, errors.Wrapf(ErrInvariantViolation, "chain ends at height %d without genesis", cur.Height())
	}
	return chain, nil
}

// ChainProfits sums block values per miner along the chain ending at head.
// Genesis carries no value and is not attributed to anyone.
func ChainProfits(head *Block) map[string]float64 {
	profits := make(map[string]float64)
	for cur := head; cur != nil && !cur.IsGenesis(); cur = cur.Parent() {
		profits[cur.MinerID()] += cur.Value()
	}
	return profits
}

// RelativeShares turns absolute profits into shares of the total. Miners
// with zero profit are left out.
func RelativeShares(profits map[string]float64) map[string]float64 {
	var total float64
	for _, p := range profits {
		total += p
	}
	shares := make(map[string]float64, len(profits))
	if total == 0 {
		return shares
	}
	for id, p := range profits {
		if p == 0 {
			continue
		}
		shares[id] = p / total
	}
	return shares
}
