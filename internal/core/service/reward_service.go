package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
	"github.com/unitynodes/unity-nodes-api/internal/core/ports"
	"github.com/unitynodes/unity-nodes-api/internal/pkg/metrics"
)

const rewardIdempotencyScope = "reward"

// RewardService records rewards and builds per-user summaries.
type RewardService struct {
	repo      ports.RewardRepository
	idem      ports.IdempotencyStore
	simulated ports.SimulatedMetrics
	events    ports.EventSink
	logger    zerolog.Logger
	now       func() time.Time
}

// NewRewardService wires the reward use cases. idem may be nil, in which case
// Idempotency-Key headers are ignored.
func NewRewardService(repo ports.RewardRepository, idem ports.IdempotencyStore, simulated ports.SimulatedMetrics, events ports.EventSink, logger zerolog.Logger) *RewardService {
	if events == nil {
		events = discardEvents{}
	}
	return &RewardService{
		repo:      repo,
		idem:      idem,
		simulated: simulated,
		events:    events,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *RewardService) Record(ctx context.Context, in ports.RecordRewardInput) (*ports.RecordRewardResult, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, fmt.Errorf("record reward: %w: userId is required", domain.ErrInvalidRequest)
	}
	if in.MinutesFarmed <= 0 || in.MntEarned <= 0 {
		return nil, fmt.Errorf("record reward: %w: minutesFarmed and mntEarned must be positive", domain.ErrInvalidRequest)
	}
	period, err := parsePeriod(in.Period)
	if err != nil {
		return nil, fmt.Errorf("record reward: %w", err)
	}

	reward := &domain.Reward{
		ID:            uuid.NewString(),
		UserID:        userID,
		Amount:        in.MntEarned,
		Type:          domain.RewardTypeMining,
		Status:        domain.RewardStatusConfirmed,
		Period:        period,
		MinutesFarmed: in.MinutesFarmed,
		MntEarned:     in.MntEarned,
		CreatedAt:     s.now(),
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	held := false
	if key != "" && s.idem != nil {
		existing, reserved, err := s.idem.Reserve(ctx, rewardIdempotencyScope, key, reward.ID)
		switch {
		case err != nil:
			// Not fatal: the write goes ahead without replay protection.
			s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency reserve failed, proceeding")
		case reserved:
			held = true
		default:
			replay, err := s.replay(ctx, existing)
			if err != nil {
				return nil, err
			}
			metrics.RewardsDedupTotal.WithLabelValues("replayed").Inc()
			return &ports.RecordRewardResult{Reward: replay, Replayed: true}, nil
		}
	}

	if err := s.repo.Create(ctx, reward); err != nil {
		if held {
			if rerr := s.idem.Release(ctx, rewardIdempotencyScope, key); rerr != nil {
				s.logger.Warn().Err(rerr).Str("idempotency_key", key).Msg("failed to release idempotency key")
			}
		}
		return nil, domain.StorageError("record reward", err)
	}
	if held {
		metrics.RewardsDedupTotal.WithLabelValues("new").Inc()
	}

	metrics.RewardsRecordedTotal.WithLabelValues(string(period)).Inc()
	s.logger.Info().
		Str("reward_id", reward.ID).
		Str("user_id", userID).
		Float64("mnt_earned", reward.MntEarned).
		Str("period", string(period)).
		Msg("reward recorded")
	s.events.Enqueue(domain.Event{
		Type:       domain.EventRewardRecorded,
		Key:        userID,
		OccurredAt: reward.CreatedAt,
		Payload:    reward,
	})

	return &ports.RecordRewardResult{Reward: reward}, nil
}

// replay loads the reward an earlier request with the same key produced.
// A key whose reward is not stored yet belongs to a request still in flight.
func (s *RewardService) replay(ctx context.Context, rewardID string) (*domain.Reward, error) {
	existing, err := s.repo.FindByID(ctx, rewardID)
	if errors.Is(err, domain.ErrRewardNotFound) {
		return nil, fmt.Errorf("record reward: %w", domain.ErrIdempotencyInFlight)
	}
	if err != nil {
		return nil, domain.StorageError("record reward: replay", err)
	}
	return existing, nil
}

func (s *RewardService) Summary(ctx context.Context, userID, period string) (*ports.RewardSummary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("reward summary: %w: userId is required", domain.ErrInvalidRequest)
	}
	p, err := parsePeriod(period)
	if err != nil {
		return nil, fmt.Errorf("reward summary: %w", err)
	}

	rewards, err := s.repo.ListByUser(ctx, userID, p)
	if err != nil {
		return nil, domain.StorageError("reward summary", err)
	}
	if rewards == nil {
		rewards = []*domain.Reward{}
	}

	summary := &ports.RewardSummary{
		Rewards: rewards,
		Totals:  domain.SumRewards(rewards),
		Period:  p,
	}
	if s.simulated != nil {
		summary.Stats = s.simulated.UserActivity()
	}
	return summary, nil
}

func parsePeriod(raw string) (domain.RewardPeriod, error) {
	p := domain.RewardPeriod(strings.ToLower(strings.TrimSpace(raw)))
	if p == "" {
		return domain.PeriodMonthly, nil
	}
	if !p.Valid() {
		return "", fmt.Errorf("%w: unknown period %q", domain.ErrInvalidRequest, raw)
	}
	return p, nil
}
