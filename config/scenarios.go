package config

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

var ErrUnknownScenario = errors.New("unknown scenario")

func compliantMiners(powers ...int) []MinerConfig {
	miners := make([]MinerConfig, 0, len(powers)+1)
	for i, p := range powers {
		miners = append(miners, MinerConfig{
			ID:           fmt.Sprintf("Miner %d", i+1),
			Kind:         "compliant",
			HashRate:     p,
			Connectivity: 1,
		})
	}
	return miners
}

func attacker(kind string, hashRate, connectivity int) MinerConfig {
	return MinerConfig{ID: "Attacker", Kind: kind, HashRate: hashRate, Connectivity: connectivity}
}

func base(name, description string) Experiment {
	return Experiment{
		Name:        name,
		Description: description,
		Iterations:  100,
		Seed:        2345,
		BlockRate:   0.0001,
		OrphanRate:  0.005,
		Announce:    AnnounceConnectivity,
		Reward:      RewardConfig{Kind: RewardConstant, Value: 1},
		Churn:       ChurnConfig{Kind: ChurnNone},
	}
}

var scenarios = map[string]func() Experiment{
	"compliant": func() Experiment {
		e := base("compliant", "compliant miners only, no churn")
		e.Miners = compliantMiners(510, 150, 140, 10, 50, 50)
		return e
	},
	"network-power": func() Experiment {
		e := base("network-power", "compliant miners with uneven connectivity, low churn")
		e.Miners = compliantMiners(510, 150, 140, 100, 50, 50)
		e.Miners[0].Connectivity = 10
		e.Miners[1].Connectivity = 5
		e.Miners[3].Connectivity = 3
		e.Churn = ChurnConfig{Kind: ChurnNormal, Seed: 4567, HashRateSigma: 1, ConnectivitySigma: 1}
		return e
	},
	"majority-low-churn": func() Experiment {
		e := base("majority-low-churn", "55% attacker, low churn")
		e.Miners = append(compliantMiners(200, 100, 100, 40, 10), attacker("majority", 550, 1))
		e.Churn = ChurnConfig{Kind: ChurnNormal, Seed: 1234, HashRateSigma: 1, ConnectivitySigma: 1}
		return e
	},
	"majority-high-churn": func() Experiment {
		e := base("majority-high-churn", "51% attacker, high churn")
		e.Miners = append(compliantMiners(200, 100, 100, 50, 40), attacker("majority", 510, 1))
		e.Churn = ChurnConfig{Kind: ChurnNormal, Seed: 2345, HashRateSigma: 5, ConnectivitySigma: 5}
		return e
	},
	"selfish": func() Experiment {
		e := base("selfish", "selfish miner at 40%, no churn")
		e.Miners = append(compliantMiners(15, 15, 10, 10, 10), attacker("selfish", 40, 1))
		return e
	},
	"selfish-churn": func() Experiment {
		e := base("selfish-churn", "selfish miner at 31% with high connectivity, low churn")
		e.Miners = append(compliantMiners(150, 150, 100, 100, 100), attacker("selfish", 270, 60))
		e.Churn = ChurnConfig{Kind: ChurnNormal, Seed: 3456, HashRateSigma: 1, ConnectivitySigma: 1}
		return e
	},
	"fee-sniping": func() Experiment {
		e := base("fee-sniping", "fee sniping miner at 30%, lognormal rewards, no churn")
		e.Miners = append(compliantMiners(200, 150, 150, 100, 100), attacker("feesniping", 300, 1))
		e.Reward = RewardConfig{Kind: RewardLognormal, Seed: 8765, Mu: 0, Sigma: 1}
		return e
	},
	"fee-sniping-churn": func() Experiment {
		e := base("fee-sniping-churn", "fee sniping miner at 29%, lognormal rewards, churn")
		e.Miners = append(compliantMiners(220, 190, 150, 130, 20), attacker("feesniping", 290, 1))
		e.Reward = RewardConfig{Kind: RewardLognormal, Seed: 5678, Mu: 0, Sigma: 1}
		e.Churn = ChurnConfig{Kind: ChurnNormal, Seed: 5678, HashRateSigma: 0.5, ConnectivitySigma: 1}
		return e
	},
}

// Scenario returns a fresh copy of a built-in experiment.
func Scenario(name string) (Experiment, error) {
	build, ok := scenarios[name]
	if !ok {
		return Experiment{}, errors.Wrapf(ErrUnknownScenario, "%q", name)
	}
	return build(), nil
}

// ScenarioNames lists the built-in experiments in lexical order.
func ScenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
