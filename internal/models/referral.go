package models

import (
	"time"
)

// Claimed reward choices
const (
	RewardChoiceCredit = "credit"
	RewardChoiceDays   = "days"
)

// ReferralReward is created at most once per referrer/invitee pair, on the
// invitee's first successful payment. The referrer later claims either the
// credit or the day extension; claim handling lives outside this service.
type ReferralReward struct {
	BaseModel

	ReferrerTelegramID int64 `json:"referrer_telegram_id" gorm:"index;not null"`
	InviteeTelegramID  int64 `json:"invitee_telegram_id" gorm:"index;not null"`
	AmountPaid         int   `json:"amount_paid" gorm:"not null"`
	RewardCredit       int   `json:"reward_credit" gorm:"not null"`
	RewardDays         int   `json:"reward_days" gorm:"not null"`

	IsClaimed     bool       `json:"is_claimed" gorm:"default:false"`
	ClaimedReward string     `json:"claimed_reward" gorm:"size:20"`
	ClaimedAt     *time.Time `json:"claimed_at"`
}
