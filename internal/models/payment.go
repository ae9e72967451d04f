package models

// Payment statuses. A reference is unique only among SUCCESS rows,
// enforced by a partial unique index on the payments table.
const (
	PaymentStatusPending            = "PENDING"
	PaymentStatusSuccess            = "SUCCESS"
	PaymentStatusFailed             = "FAILED"
	PaymentStatusFailedNoProvider   = "FAILED_NO_PROVIDER"
	PaymentStatusRejectedUnverified = "REJECTED_UNVERIFIED"
)

// Payment is an append-only ledger entry. One row is created per processed
// callback attempt, rejections included; rows are never updated or deleted.
type Payment struct {
	BaseModel

	TelegramID  int64  `json:"telegram_id" gorm:"index;not null"`
	Amount      int    `json:"amount" gorm:"not null"`
	Reference   string `json:"reference" gorm:"index;not null"`
	Status      string `json:"status" gorm:"size:30;index;not null"`
	PackageDays int    `json:"package_days" gorm:"not null"`
}
