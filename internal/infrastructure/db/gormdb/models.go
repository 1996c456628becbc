package gormdb

import (
	"time"

	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
)

type licenseModel struct {
	ID          string     `gorm:"column:id;type:varchar(36);primaryKey"`
	LicenseKey  string     `gorm:"column:license_key;type:varchar(64);not null;uniqueIndex"`
	Status      string     `gorm:"column:status;type:varchar(16);not null;index:idx_licenses_pick,priority:1"`
	NodeType    string     `gorm:"column:node_type;type:varchar(16);not null;index:idx_licenses_pick,priority:2"`
	StakeAmount float64    `gorm:"column:stake_amount;not null"`
	UserID      *string    `gorm:"column:user_id;type:varchar(128);index"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null;index:idx_licenses_pick,priority:3"`
	GeneratedAt *time.Time `gorm:"column:generated_at;index"`
	UsedAt      *time.Time `gorm:"column:used_at"`
}

func (licenseModel) TableName() string { return "licenses" }

func toLicenseModel(l *domain.License) licenseModel {
	return licenseModel{
		ID:          l.ID,
		LicenseKey:  l.LicenseKey,
		Status:      string(l.Status),
		NodeType:    string(l.NodeType),
		StakeAmount: l.StakeAmount,
		UserID:      l.UserID,
		CreatedAt:   l.CreatedAt.UTC(),
		GeneratedAt: l.GeneratedAt,
		UsedAt:      l.UsedAt,
	}
}

func (m licenseModel) toDomain() *domain.License {
	return &domain.License{
		ID:          m.ID,
		LicenseKey:  m.LicenseKey,
		Status:      domain.LicenseStatus(m.Status),
		NodeType:    domain.NodeType(m.NodeType),
		StakeAmount: m.StakeAmount,
		UserID:      m.UserID,
		CreatedAt:   m.CreatedAt.UTC(),
		GeneratedAt: utcPtr(m.GeneratedAt),
		UsedAt:      utcPtr(m.UsedAt),
	}
}

type rewardModel struct {
	ID            string    `gorm:"column:id;type:varchar(36);primaryKey"`
	UserID        string    `gorm:"column:user_id;type:varchar(128);not null;index:idx_rewards_user_period,priority:1"`
	Period        string    `gorm:"column:period;type:varchar(16);not null;index:idx_rewards_user_period,priority:2"`
	Amount        float64   `gorm:"column:amount;not null"`
	Type          string    `gorm:"column:type;type:varchar(32);not null"`
	Status        string    `gorm:"column:status;type:varchar(32);not null"`
	MinutesFarmed float64   `gorm:"column:minutes_farmed;not null"`
	MntEarned     float64   `gorm:"column:mnt_earned;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;not null;index:idx_rewards_user_period,priority:3"`
}

func (rewardModel) TableName() string { return "rewards" }

func toRewardModel(r *domain.Reward) rewardModel {
	return rewardModel{
		ID:            r.ID,
		UserID:        r.UserID,
		Period:        string(r.Period),
		Amount:        r.Amount,
		Type:          r.Type,
		Status:        r.Status,
		MinutesFarmed: r.MinutesFarmed,
		MntEarned:     r.MntEarned,
		CreatedAt:     r.CreatedAt.UTC(),
	}
}

func (m rewardModel) toDomain() *domain.Reward {
	return &domain.Reward{
		ID:            m.ID,
		UserID:        m.UserID,
		Amount:        m.Amount,
		Type:          m.Type,
		Status:        m.Status,
		Period:        domain.RewardPeriod(m.Period),
		MinutesFarmed: m.MinutesFarmed,
		MntEarned:     m.MntEarned,
		CreatedAt:     m.CreatedAt.UTC(),
	}
}

type operatorModel struct {
	ID           string    `gorm:"column:id;type:varchar(36);primaryKey"`
	Email        string    `gorm:"column:email;type:varchar(255);not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Role         string    `gorm:"column:role;type:varchar(16);not null"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null"`
}

func (operatorModel) TableName() string { return "operators" }

func (m operatorModel) toDomain() *domain.Operator {
	return &domain.Operator{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         m.Role,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
