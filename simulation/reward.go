package simulation

// RewardPolicy values a freshly mined block. Reset is called by the driver
// once per iteration so no state carries across runs.
type RewardPolicy interface {
	ComputeBlockReward(height uint64, timeToCreate float64) float64
	Reset()
}

// ConstantReward pays the same value for every block.
type ConstantReward float64

// RewardOne pays 1 per block.
const RewardOne ConstantReward = 1

func (r ConstantReward) ComputeBlockReward(uint64, float64) float64 {
	return float64(r)
}

func (ConstantReward) Reset() {}

const (
	DefaultLognormalMu    = 0.0
	DefaultLognormalSigma = 1.0
)

// LognormalReward draws each block's value independently from a log-normal
// distribution, modelling fee income that varies block to block.
type LognormalReward struct {
	mu, sigma float64
	rng       Random

	issued int
	total  float64
}

func NewLognormalReward(rng Random, mu, sigma float64) *LognormalReward {
	return &LognormalReward{mu: mu, sigma: sigma, rng: rng}
}

func (r *LognormalReward) ComputeBlockReward(uint64, float64) float64 {
	v := r.rng.Lognormal(r.mu, r.sigma)
	r.issued++
	r.total += v
	return v
}

// Issued reports how many values were drawn since the last Reset and their sum.
func (r *LognormalReward) Issued() (int, float64) {
	return r.issued, r.total
}

func (r *LognormalReward) Reset() {
	r.issued = 0
	r.total = 0
}
