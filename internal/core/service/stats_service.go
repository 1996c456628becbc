package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
	"github.com/unitynodes/unity-nodes-api/internal/core/ports"
)

// StatsService aggregates inventory counts with simulated network figures.
type StatsService struct {
	repo      ports.LicenseRepository
	simulated ports.SimulatedMetrics
	now       func() time.Time
}

func NewStatsService(repo ports.LicenseRepository, simulated ports.SimulatedMetrics) *StatsService {
	return &StatsService{
		repo:      repo,
		simulated: simulated,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *StatsService) Snapshot(ctx context.Context) (*domain.Stats, error) {
	var (
		stats  domain.Stats
		counts = &stats.Licenses
	)
	dayAgo := s.now().Add(-24 * time.Hour)

	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, filter ports.LicenseFilter) {
		g.Go(func() error {
			n, err := s.repo.Count(gctx, filter)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	count(&counts.Total, ports.LicenseFilter{})
	count(&counts.Available, ports.LicenseFilter{Status: domain.StatusAvailable})
	count(&counts.Generated, ports.LicenseFilter{Status: domain.StatusGenerated})
	count(&counts.Used, ports.LicenseFilter{Status: domain.StatusUsed})
	count(&counts.Breakdown.Switch, ports.LicenseFilter{NodeType: domain.NodeTypeSwitch})
	count(&counts.Breakdown.Validation, ports.LicenseFilter{NodeType: domain.NodeTypeValidation})
	count(&stats.Activity.Last24Hours, ports.LicenseFilter{Status: domain.StatusGenerated, GeneratedSince: dayAgo})
	if err := g.Wait(); err != nil {
		return nil, domain.StorageError("stats snapshot", err)
	}

	stats.Activity.RecentGenerations = stats.Activity.Last24Hours
	if s.simulated != nil {
		stats.Network = s.simulated.Network(counts.Generated)
	} else {
		stats.Network.ActiveNodes = counts.Generated
	}
	return &stats, nil
}
