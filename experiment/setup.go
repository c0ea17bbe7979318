package experiment

import "github.com/shreekarashastry/miningsim/config"

// FromConfig builds a runner with fresh miners and policies for e.
func FromConfig(e config.Experiment) (*Runner, error) {
	setup, err := e.Build()
	if err != nil {
		return nil, err
	}
	return NewRunner(Config{
		Scenario:   e.Name,
		Iterations: e.Iterations,
		Seed:       e.Seed,
		BlockRate:  e.BlockRate,
		Network:    setup.Network,
	}, setup.Miners, setup.Reward, setup.Churn), nil
}
