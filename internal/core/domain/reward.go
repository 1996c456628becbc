package domain

import "time"

// RewardPeriod is the accounting window a reward was credited for.
type RewardPeriod string

const (
	PeriodDaily   RewardPeriod = "daily"
	PeriodWeekly  RewardPeriod = "weekly"
	PeriodMonthly RewardPeriod = "monthly"
)

// Valid reports whether p is a known period.
func (p RewardPeriod) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	}
	return false
}

const (
	RewardTypeMining      = "mining"
	RewardStatusConfirmed = "confirmed"
)

// Reward is an amount credited to a user for a period. Immutable once created.
type Reward struct {
	ID            string       `json:"id"`
	UserID        string       `json:"userId"`
	Amount        float64      `json:"amount"`
	Type          string       `json:"type"`
	Status        string       `json:"status"`
	Period        RewardPeriod `json:"period"`
	MinutesFarmed float64      `json:"minutesFarmed"`
	MntEarned     float64      `json:"mntEarned"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// RewardTotals sums a set of rewards.
type RewardTotals struct {
	MinutesFarmed float64 `json:"minutesFarmed"`
	MntEarned     float64 `json:"mntEarned"`
}

// SumRewards adds up minutes and MNT across rewards.
func SumRewards(rewards []*Reward) RewardTotals {
	var t RewardTotals
	for _, r := range rewards {
		t.MinutesFarmed += r.MinutesFarmed
		t.MntEarned += r.MntEarned
	}
	return t
}
