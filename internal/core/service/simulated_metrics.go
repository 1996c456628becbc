package service

import (
	"math/rand/v2"

	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
)

// SimulatedMetrics fabricates the placeholder activity and network figures
// shown on dashboards. None of it is measured.
type SimulatedMetrics struct {
	rng *rand.Rand
}

// NewSimulatedMetrics returns a provider. A nil rng uses the global source.
func NewSimulatedMetrics(rng *rand.Rand) *SimulatedMetrics {
	return &SimulatedMetrics{rng: rng}
}

// between returns a value in [lo, hi).
func (m *SimulatedMetrics) between(lo, hi int) int {
	if m.rng != nil {
		return lo + m.rng.IntN(hi-lo)
	}
	return lo + rand.IntN(hi-lo)
}

func (m *SimulatedMetrics) UserActivity() domain.ActivityStats {
	return domain.ActivityStats{
		Today: domain.ActivityWindow{
			MinutesFarmed: m.between(10, 60),
			MntEarned:     m.between(1, 6),
			Calls:         m.between(5, 25),
		},
		ThisWeek: domain.ActivityWindow{
			MinutesFarmed: m.between(100, 400),
			MntEarned:     m.between(10, 40),
			Calls:         m.between(50, 150),
		},
		ThisMonth: domain.ActivityWindow{
			MinutesFarmed: m.between(500, 1700),
			MntEarned:     m.between(50, 170),
			Calls:         m.between(200, 600),
		},
	}
}

func (m *SimulatedMetrics) Network(activeNodes int64) domain.NetworkStats {
	return domain.NetworkStats{
		TotalUsers:           34_000_000,
		ActiveNodes:          activeNodes,
		TotalMinutesFarmed:   int64(m.between(500_000, 1_500_000)),
		TotalMntDistributed:  int64(m.between(50_000, 150_000)),
		NetworkUptime:        99.9,
		AverageRewardPerUser: 15.7,
	}
}
