package gormdb

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
)

type RewardRepository struct {
	db *gorm.DB
}

func NewRewardRepository(db *gorm.DB) *RewardRepository {
	return &RewardRepository{db: db}
}

func (r *RewardRepository) Create(ctx context.Context, rw *domain.Reward) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := toRewardModel(rw)
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *RewardRepository) FindByID(ctx context.Context, id string) (*domain.Reward, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var row rewardModel
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRewardNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *RewardRepository) ListByUser(ctx context.Context, userID string, period domain.RewardPeriod) ([]*domain.Reward, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rows []rewardModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("period = ?", string(period)).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Reward, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
