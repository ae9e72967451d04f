package services

import (
	"context"
	"time"

	"payments-api/pkg/logging"
)

// ExpiryStore deactivates lapsed subscriptions.
type ExpiryStore interface {
	DeactivateExpiredSubscriptions() (int64, error)
}

// SubscriptionSweeper periodically deactivates providers whose subscription
// has lapsed, so the directory never shows expired listings.
type SubscriptionSweeper struct {
	providers ExpiryStore
	interval  time.Duration
}

// NewSubscriptionSweeper creates a sweeper with the given interval in
// minutes.
func NewSubscriptionSweeper(providers ExpiryStore, intervalMinutes int) *SubscriptionSweeper {
	if intervalMinutes <= 0 {
		intervalMinutes = 10
	}
	return &SubscriptionSweeper{
		providers: providers,
		interval:  time.Duration(intervalMinutes) * time.Minute,
	}
}

// Run sweeps on a ticker until the context is cancelled.
func (s *SubscriptionSweeper) Run(ctx context.Context) {
	logging.Infof("Subscription sweeper started, interval %s", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Infof("Subscription sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.providers.DeactivateExpiredSubscriptions(); err != nil {
				logging.Errorf("Subscription sweep failed: %v", err)
			}
		}
	}
}
