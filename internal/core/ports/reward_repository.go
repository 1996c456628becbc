package ports

import (
	"context"

	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
)

// RewardRepository persists reward records.
type RewardRepository interface {
	Create(ctx context.Context, r *domain.Reward) error
	FindByID(ctx context.Context, id string) (*domain.Reward, error)
	// ListByUser returns the user's rewards for period, newest first.
	ListByUser(ctx context.Context, userID string, period domain.RewardPeriod) ([]*domain.Reward, error)
}
