package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingExpiryStore struct {
	sweeps atomic.Int64
}

func (s *countingExpiryStore) DeactivateExpiredSubscriptions() (int64, error) {
	s.sweeps.Add(1)
	return 0, nil
}

func TestSweeperDefaultsInterval(t *testing.T) {
	s := NewSubscriptionSweeper(&countingExpiryStore{}, 0)
	if s.interval != 10*time.Minute {
		t.Errorf("interval = %v, want 10m default", s.interval)
	}
	s = NewSubscriptionSweeper(&countingExpiryStore{}, 5)
	if s.interval != 5*time.Minute {
		t.Errorf("interval = %v, want 5m", s.interval)
	}
}

func TestSweeperRunsUntilCancelled(t *testing.T) {
	store := &countingExpiryStore{}
	sweeper := &SubscriptionSweeper{providers: store, interval: 5 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for store.sweeps.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("sweeper never ticked")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on cancel")
	}
}
