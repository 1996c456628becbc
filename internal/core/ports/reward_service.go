package ports

import (
	"context"

	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
)

// RecordRewardInput carries a caller-supplied reward.
type RecordRewardInput struct {
	UserID         string
	MinutesFarmed  float64
	MntEarned      float64
	Period         string // defaults to monthly
	IdempotencyKey string // optional
}

// RecordRewardResult is returned after recording a reward.
type RecordRewardResult struct {
	Reward *domain.Reward
	// Replayed is true when the Idempotency-Key matched an earlier request.
	Replayed bool
}

// RewardSummary is the per-user reward view.
type RewardSummary struct {
	Rewards []*domain.Reward     `json:"rewards"`
	Totals  domain.RewardTotals  `json:"totals"`
	Stats   domain.ActivityStats `json:"stats"`
	Period  domain.RewardPeriod  `json:"period"`
}

// RewardService defines use-case operations for rewards.
type RewardService interface {
	Record(ctx context.Context, input RecordRewardInput) (*RecordRewardResult, error)
	Summary(ctx context.Context, userID, period string) (*RewardSummary, error)
}

// IdempotencyStore remembers which reward an Idempotency-Key produced.
//
// Reserve atomically claims key for value. When another request claimed it
// first, reserved is false and existing holds that request's value.
// Release drops a reservation whose write failed.
type IdempotencyStore interface {
	Reserve(ctx context.Context, scope, key, value string) (existing string, reserved bool, err error)
	Release(ctx context.Context, scope, key string) error
}
