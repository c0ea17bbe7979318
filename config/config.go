package config

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/shreekarashastry/miningsim/simulation"
	"github.com/spf13/viper"
)

const (
	RewardConstant  = "constant"
	RewardLognormal = "lognormal"

	ChurnNone   = "none"
	ChurnNormal = "normal"

	AnnounceConnectivity = "connectivity"
	AnnounceFixed        = "fixed"
)

// MinerConfig describes one participant of an experiment.
type MinerConfig struct {
	ID           string  `mapstructure:"id"`
	Kind         string  `mapstructure:"kind"`
	HashRate     int     `mapstructure:"hashRate"`
	Connectivity int     `mapstructure:"connectivity"`
	SnipeFactor  float64 `mapstructure:"snipeFactor"`
}

type RewardConfig struct {
	Kind  string  `mapstructure:"kind"`
	Value float64 `mapstructure:"value"`
	Seed  int64   `mapstructure:"seed"`
	Mu    float64 `mapstructure:"mu"`
	Sigma float64 `mapstructure:"sigma"`
}

type ChurnConfig struct {
	Kind              string  `mapstructure:"kind"`
	Seed              int64   `mapstructure:"seed"`
	HashRateSigma     float64 `mapstructure:"hashRateSigma"`
	ConnectivitySigma float64 `mapstructure:"connectivitySigma"`
}

// Experiment is everything needed to run one experiment. Reward and churn
// policies configured with the same seed share one random source.
type Experiment struct {
	Name        string        `mapstructure:"name"`
	Description string        `mapstructure:"description"`
	Iterations  int           `mapstructure:"iterations"`
	Seed        int64         `mapstructure:"seed"`
	BlockRate   float64       `mapstructure:"blockRate"`
	OrphanRate  float64       `mapstructure:"orphanRate"`
	Difficulty  float64       `mapstructure:"difficulty"`
	Announce    string        `mapstructure:"announce"`
	Reward      RewardConfig  `mapstructure:"reward"`
	Churn       ChurnConfig   `mapstructure:"churn"`
	Miners      []MinerConfig `mapstructure:"miners"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("iterations", 100)
	v.SetDefault("seed", 2345)
	v.SetDefault("blockRate", 0.0001)
	v.SetDefault("orphanRate", 0.005)
	v.SetDefault("announce", AnnounceConnectivity)
	v.SetDefault("reward.kind", RewardConstant)
	v.SetDefault("reward.value", 1.0)
	v.SetDefault("reward.mu", simulation.DefaultLognormalMu)
	v.SetDefault("reward.sigma", simulation.DefaultLognormalSigma)
	v.SetDefault("churn.kind", ChurnNone)
}

// Load reads an experiment file (any format viper understands). Values can
// be overridden from the environment with the MININGSIM_ prefix, nested keys
// joined by underscores.
func Load(path string) (Experiment, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetEnvPrefix("MININGSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var e Experiment
	if err := v.ReadInConfig(); err != nil {
		return e, errors.Wrapf(err, "failed to read config %s", path)
	}
	if err := v.Unmarshal(&e); err != nil {
		return e, errors.Wrapf(err, "failed to decode config %s", path)
	}
	if err := e.Validate(); err != nil {
		return e, err
	}
	return e, nil
}

// Validate rejects configurations that cannot drive a run.
func (e Experiment) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return errors.Wrap(simulation.ErrInvalidConfig, fmt.Sprintf(format, args...))
	}
	if e.Iterations < 0 {
		return invalid("iterations %d", e.Iterations)
	}
	if e.BlockRate <= 0 {
		return invalid("block rate %v", e.BlockRate)
	}
	if e.OrphanRate < 0 || e.OrphanRate > 1 {
		return invalid("orphan rate %v", e.OrphanRate)
	}
	if len(e.Miners) == 0 {
		return invalid("no miners")
	}
	ids := make(map[string]struct{}, len(e.Miners))
	for i, m := range e.Miners {
		if m.ID == "" {
			return invalid("miner %d has no id", i)
		}
		if _, dup := ids[m.ID]; dup {
			return invalid("duplicate miner id %q", m.ID)
		}
		ids[m.ID] = struct{}{}
		if _, err := simulation.ParseKind(orDefault(m.Kind, "compliant")); err != nil {
			return err
		}
		if m.HashRate <= 0 {
			return invalid("miner %q hash rate %d", m.ID, m.HashRate)
		}
		if m.Connectivity <= 0 {
			return invalid("miner %q connectivity %d", m.ID, m.Connectivity)
		}
	}
	switch orDefault(e.Reward.Kind, RewardConstant) {
	case RewardConstant:
		if e.Reward.Value <= 0 {
			return invalid("constant reward value %v", e.Reward.Value)
		}
	case RewardLognormal:
	default:
		return invalid("reward kind %q", e.Reward.Kind)
	}
	switch orDefault(e.Churn.Kind, ChurnNone) {
	case ChurnNone:
	case ChurnNormal:
		if e.Churn.HashRateSigma < 0 || e.Churn.ConnectivitySigma < 0 {
			return invalid("churn sigma (%v, %v)", e.Churn.HashRateSigma, e.Churn.ConnectivitySigma)
		}
	default:
		return invalid("churn kind %q", e.Churn.Kind)
	}
	switch orDefault(e.Announce, AnnounceConnectivity) {
	case AnnounceConnectivity, AnnounceFixed:
	default:
		return invalid("announce order %q", e.Announce)
	}
	return nil
}

// Setup holds the simulation objects built from an Experiment.
type Setup struct {
	Miners  []simulation.Miner
	Reward  simulation.RewardPolicy
	Churn   simulation.ChurnPolicy
	Network simulation.Config
}

// Build validates e and constructs fresh miners and policies.
func (e Experiment) Build() (*Setup, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	samplers := make(map[int64]*simulation.Sampler)
	sampler := func(seed int64) *simulation.Sampler {
		s, ok := samplers[seed]
		if !ok {
			s = simulation.NewSampler(seed)
			samplers[seed] = s
		}
		return s
	}

	setup := &Setup{
		Network: simulation.Config{
			OrphanRate: e.OrphanRate,
			Difficulty: e.Difficulty,
			Announce:   simulation.AnnounceConnectivity,
		},
	}
	if e.Announce == AnnounceFixed {
		setup.Network.Announce = simulation.AnnounceFixed
	}

	switch orDefault(e.Reward.Kind, RewardConstant) {
	case RewardLognormal:
		setup.Reward = simulation.NewLognormalReward(sampler(e.Reward.Seed), e.Reward.Mu, e.Reward.Sigma)
	default:
		if e.Reward.Value == 1 {
			setup.Reward = simulation.RewardOne
		} else {
			setup.Reward = simulation.ConstantReward(e.Reward.Value)
		}
	}

	switch orDefault(e.Churn.Kind, ChurnNone) {
	case ChurnNormal:
		setup.Churn = simulation.NewNormalChurn(e.Churn.HashRateSigma, e.Churn.ConnectivitySigma, sampler(e.Churn.Seed))
	default:
		setup.Churn = simulation.NoChurn
	}

	for _, mc := range e.Miners {
		kind, err := simulation.ParseKind(orDefault(mc.Kind, "compliant"))
		if err != nil {
			return nil, err
		}
		m, err := simulation.NewMiner(kind, mc.ID, mc.HashRate, mc.Connectivity)
		if err != nil {
			return nil, err
		}
		if sniper, ok := m.(*simulation.FeeSniping); ok && mc.SnipeFactor > 0 {
			sniper.WithSnipeFactor(mc.SnipeFactor)
		}
		setup.Miners = append(setup.Miners, m)
	}
	return setup, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
