package database

import (
	"payments-api/internal/models"
	"payments-api/pkg/logging"
)

// CreateReferralReward records a pending reward for a referrer and returns
// its id. The caller guards the first-payment condition.
func (s *Store) CreateReferralReward(referrerID, inviteeID int64, amountPaid, rewardCredit, rewardDays int) (uint, error) {
	reward := models.ReferralReward{
		ReferrerTelegramID: referrerID,
		InviteeTelegramID:  inviteeID,
		AmountPaid:         amountPaid,
		RewardCredit:       rewardCredit,
		RewardDays:         rewardDays,
	}
	if err := s.db.Create(&reward).Error; err != nil {
		return 0, err
	}

	logging.Infof("Created pending referral reward %d for %d", reward.ID, referrerID)
	return reward.ID, nil
}
