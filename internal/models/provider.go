package models

import (
	"time"
)

// Subscription tiers mapped from package duration
const (
	TierNone     = "none"
	TierBronze   = "bronze"
	TierSilver   = "silver"
	TierGold     = "gold"
	TierPlatinum = "platinum"
	TierTrial    = "trial"
)

// Provider represents a listed service provider (subscriber) account.
// Commercial fields are mutated exclusively by the payment processor.
type Provider struct {
	BaseModel

	TelegramID   int64  `json:"telegram_id" gorm:"uniqueIndex;not null"`
	DisplayName  string `json:"display_name" gorm:"size:100"`
	Phone        string `json:"phone" gorm:"size:20"`
	City         string `json:"city" gorm:"size:50"`
	Neighborhood string `json:"neighborhood" gorm:"size:50"`

	IsVerified       bool       `json:"is_verified" gorm:"default:false"`
	IsActive         bool       `json:"is_active" gorm:"default:false;index"`
	SubscriptionTier string     `json:"subscription_tier" gorm:"size:20;default:'none'"`
	ExpiryDate       *time.Time `json:"expiry_date" gorm:"index"`
	BoostUntil       *time.Time `json:"boost_until"`

	ReferredBy      *int64 `json:"referred_by"`
	ReferralCredits int    `json:"referral_credits" gorm:"default:0"`

	TrialUsed            bool `json:"trial_used" gorm:"default:false"`
	TrialExpiredNotified bool `json:"trial_expired_notified" gorm:"default:false"`
	TrialWinbackSent     bool `json:"trial_winback_sent" gorm:"default:false"`
}

// TierForDuration maps a package duration in days to its tier name.
func TierForDuration(days int) string {
	switch days {
	case 3:
		return TierBronze
	case 7:
		return TierSilver
	case 30:
		return TierGold
	case 90:
		return TierPlatinum
	default:
		return TierBronze
	}
}
