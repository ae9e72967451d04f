package database

import (
	"errors"
	"time"

	"payments-api/internal/models"
	"payments-api/pkg/logging"

	"gorm.io/gorm"
)

// GetProviderByTelegramID looks up a provider account. Returns (nil, nil)
// when no account exists for the id.
func (s *Store) GetProviderByTelegramID(telegramID int64) (*models.Provider, error) {
	var provider models.Provider
	err := s.db.Where("telegram_id = ?", telegramID).First(&provider).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &provider, nil
}

// ActivateSubscription activates a provider for the given number of days,
// sets the matching tier, and clears any trial follow-up flags.
func (s *Store) ActivateSubscription(telegramID int64, days int) error {
	expiry := time.Now().Add(time.Duration(days) * 24 * time.Hour)
	tier := models.TierForDuration(days)

	result := s.db.Model(&models.Provider{}).
		Where("telegram_id = ?", telegramID).
		Updates(map[string]interface{}{
			"is_active":              true,
			"expiry_date":            expiry,
			"subscription_tier":      tier,
			"trial_expired_notified": false,
			"trial_winback_sent":     false,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logging.Infof("Activated %s subscription for %d until %s", tier, telegramID, expiry.Format(time.RFC3339))
	return nil
}

// BoostProvider sets boost_until for an active provider. It is an idempotent
// overwrite, not additive. Returns false when the provider is not active.
func (s *Store) BoostProvider(telegramID int64, hours int) (bool, error) {
	boostUntil := time.Now().Add(time.Duration(hours) * time.Hour)

	result := s.db.Model(&models.Provider{}).
		Where("telegram_id = ? AND is_active = ?", telegramID, true).
		Update("boost_until", boostUntil)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeactivateExpiredSubscriptions deactivates providers whose subscription
// has lapsed. Called periodically by the sweeper.
func (s *Store) DeactivateExpiredSubscriptions() (int64, error) {
	result := s.db.Model(&models.Provider{}).
		Where("expiry_date < ? AND is_active = ?", time.Now(), true).
		Update("is_active", false)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		logging.Infof("Deactivated %d expired subscriptions", result.RowsAffected)
	}
	return result.RowsAffected, nil
}
