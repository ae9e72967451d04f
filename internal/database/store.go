package database

import (
	"errors"

	"gorm.io/gorm"
)

// ErrDuplicateReference is returned when a SUCCESS ledger insert loses the
// race against another delivery of the same reference.
var ErrDuplicateReference = errors.New("successful payment already recorded for reference")

// Store bundles the provider, payment, and referral repositories over one
// database handle. It is constructed at start-up and injected into services.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying handle, for migrations and tests.
func (s *Store) DB() *gorm.DB {
	return s.db
}
