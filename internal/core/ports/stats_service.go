package ports

import (
	"context"

	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
)

// StatsService builds the aggregate statistics snapshot.
type StatsService interface {
	Snapshot(ctx context.Context) (*domain.Stats, error)
}

// SimulatedMetrics produces placeholder figures for display. Nothing it
// returns is authoritative and the allocator never reads it.
type SimulatedMetrics interface {
	UserActivity() domain.ActivityStats
	Network(activeNodes int64) domain.NetworkStats
}
