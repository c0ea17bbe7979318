package simulation

import (
	"math"

	"github.com/shreekarashastry/miningsim/log"
	"github.com/sirupsen/logrus"
)

// ChurnPolicy recomputes the network statistics between rounds and may
// perturb the miners' current hash rate and connectivity.
type ChurnPolicy interface {
	ChurnNetwork(orphanRate float64, miners []Miner) NetworkStatistics
}

type noChurn struct{}

// NoChurn sums current hash rates and connectivity and touches nothing.
var NoChurn ChurnPolicy = noChurn{}

func (noChurn) ChurnNetwork(orphanRate float64, miners []Miner) NetworkStatistics {
	return sumNetwork(orphanRate, miners)
}

func sumNetwork(orphanRate float64, miners []Miner) NetworkStatistics {
	totalHashRate, totalConnectivity := 0, 0
	for _, m := range miners {
		totalHashRate += m.HashRate()
		totalConnectivity += m.Connectivity()
	}
	return NewNetworkStatistics(orphanRate, totalHashRate, totalConnectivity)
}

// minChurnValue keeps perturbed hash rate and connectivity strictly positive.
const minChurnValue = 1

// NormalChurn redraws every miner's hash rate and connectivity around its
// base values each round.
type NormalChurn struct {
	hashRateSigma     float64
	connectivitySigma float64
	rng               Random

	clamped int
}

func NewNormalChurn(hashRateSigma, connectivitySigma float64, rng Random) *NormalChurn {
	return &NormalChurn{
		hashRateSigma:     hashRateSigma,
		connectivitySigma: connectivitySigma,
		rng:               rng,
	}
}

func (c *NormalChurn) ChurnNetwork(orphanRate float64, miners []Miner) NetworkStatistics {
	for _, m := range miners {
		m.SetHashRate(c.perturb(m.ID(), "hashRate", m.BaseHashRate(), c.hashRateSigma))
		m.SetConnectivity(c.perturb(m.ID(), "connectivity", m.BaseConnectivity(), c.connectivitySigma))
	}
	return sumNetwork(orphanRate, miners)
}

func (c *NormalChurn) perturb(id, field string, base int, sigma float64) int {
	v := int(math.Round(c.rng.Normal(float64(base), sigma)))
	if v < minChurnValue {
		c.clamped++
		if log.Global.IsLevelEnabled(logrus.DebugLevel) {
			log.Global.WithFields(logrus.Fields{
				"miner": id,
				"field": field,
				"drawn": v,
			}).Debug("Clamped churned value")
		}
		v = minChurnValue
	}
	return v
}

// Clamped reports how many draws were raised to the floor so far.
func (c *NormalChurn) Clamped() int {
	return c.clamped
}
