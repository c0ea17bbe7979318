package simulation

import "github.com/pkg/errors"

type announcement struct {
	block *Block
	from  int
}

// gossip relays published heads between miners. A block is announced once,
// by the first miner that makes it its head.
type gossip struct {
	miners    []Miner
	order     AnnounceOrder
	broadcast []bool // indexed by block seq

	connectivity []int
}

func newGossip(miners []Miner, order AnnounceOrder, targetBlocks int) *gossip {
	return &gossip{
		miners:       miners,
		order:        order,
		broadcast:    make([]bool, targetBlocks+1),
		connectivity: make([]int, len(miners)),
	}
}

func (g *gossip) markBroadcast(b *Block) {
	g.broadcast[b.Seq()] = true
}

// announce tells the winner about its block first, then relays every head
// that changes as a result until all miners have heard all announcements.
func (g *gossip) announce(block *Block, winner int, rng Random) error {
	var pending []announcement
	heard := make([]int, len(g.miners))

	publish := func(i int) error {
		head := g.miners[i].CurrentHead()
		if head == nil {
			return errors.Wrapf(ErrInvariantViolation, "miner %q has no head", g.miners[i].ID())
		}
		if !g.broadcast[head.Seq()] {
			g.broadcast[head.Seq()] = true
			pending = append(pending, announcement{block: head, from: i})
		}
		heard[i] = len(pending)
		return nil
	}

	g.miners[winner].BlockMined(block, true)
	if err := publish(winner); err != nil {
		return err
	}

	visit := g.visitOrder(rng)
	for progress := true; progress; {
		progress = false
		for _, i := range visit {
			if heard[i] == len(pending) {
				continue
			}
			batch := append([]announcement(nil), pending[heard[i]:]...)
			for _, a := range g.arrivalOrder(rng, batch) {
				if a.from == i {
					continue
				}
				g.miners[i].BlockMined(a.block, a.block.MinerID() == g.miners[i].ID())
			}
			if err := publish(i); err != nil {
				return err
			}
			progress = true
		}
	}
	return nil
}

func (g *gossip) visitOrder(rng Random) []int {
	if g.order == AnnounceFixed {
		visit := make([]int, len(g.miners))
		for i := range visit {
			visit[i] = i
		}
		return visit
	}
	for i, m := range g.miners {
		g.connectivity[i] = m.Connectivity()
	}
	return weightedOrder(rng, g.connectivity)
}

// arrivalOrder decides which announcer's blocks reach a receiver first when
// several miners announced during the same event. Blocks from one announcer
// keep their relative order.
func (g *gossip) arrivalOrder(rng Random, batch []announcement) []announcement {
	if g.order == AnnounceFixed || len(batch) < 2 {
		return batch
	}
	var announcers []int
	byAnnouncer := make(map[int][]announcement)
	for _, a := range batch {
		if _, ok := byAnnouncer[a.from]; !ok {
			announcers = append(announcers, a.from)
		}
		byAnnouncer[a.from] = append(byAnnouncer[a.from], a)
	}
	if len(announcers) < 2 {
		return batch
	}
	weights := make([]int, len(announcers))
	for k, from := range announcers {
		weights[k] = g.miners[from].Connectivity()
	}
	ordered := make([]announcement, 0, len(batch))
	for _, k := range weightedOrder(rng, weights) {
		ordered = append(ordered, byAnnouncer[announcers[k]]...)
	}
	return ordered
}
