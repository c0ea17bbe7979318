package simulation

import "fmt"

// NetworkStatistics is an immutable snapshot of the aggregate network.
// Churn policies produce a fresh one every round.
type NetworkStatistics struct {
	orphanRate        float64
	totalHashRate     int
	totalConnectivity int
}

func NewNetworkStatistics(orphanRate float64, totalHashRate, totalConnectivity int) NetworkStatistics {
	return NetworkStatistics{
		orphanRate:        orphanRate,
		totalHashRate:     totalHashRate,
		totalConnectivity: totalConnectivity,
	}
}

func (s NetworkStatistics) OrphanRate() float64 {
	return s.orphanRate
}

func (s NetworkStatistics) TotalHashRate() int {
	return s.totalHashRate
}

func (s NetworkStatistics) TotalConnectivity() int {
	return s.totalConnectivity
}

func (s NetworkStatistics) String() string {
	return fmt.Sprintf("{ OrphanRate: %v, TotalHashRate: %v, TotalConnectivity: %v }", s.orphanRate, s.totalHashRate, s.totalConnectivity)
}
