package database

import (
	"errors"

	"payments-api/internal/models"
	"payments-api/pkg/logging"

	"gorm.io/gorm"
)

// HasSuccessfulPayment checks whether a SUCCESS row already exists for this
// reference. Pre-check only; the partial unique index closes the race.
func (s *Store) HasSuccessfulPayment(reference string) (bool, error) {
	if reference == "" {
		return false, nil
	}
	var count int64
	err := s.db.Model(&models.Payment{}).
		Where("reference = ? AND status = ?", reference, models.PaymentStatusSuccess).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasSuccessfulPaymentForProvider checks whether a provider has any
// successful payment history.
func (s *Store) HasSuccessfulPaymentForProvider(telegramID int64) (bool, error) {
	var count int64
	err := s.db.Model(&models.Payment{}).
		Where("telegram_id = ? AND status = ?", telegramID, models.PaymentStatusSuccess).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// LogPayment appends a ledger row. A SUCCESS insert that violates the
// reference uniqueness index returns ErrDuplicateReference.
func (s *Store) LogPayment(telegramID int64, amount int, reference, status string, packageDays int) error {
	payment := models.Payment{
		TelegramID:  telegramID,
		Amount:      amount,
		Reference:   reference,
		Status:      status,
		PackageDays: packageDays,
	}
	if err := s.db.Create(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateReference
		}
		return err
	}

	logging.Infof("Payment logged: %d - %d KES - %s", telegramID, amount, status)
	return nil
}
