package confirm

import (
	"context"
	"sync"
	"time"

	"github.com/teddybearwork/pickme/pkg/platform/sentinel"
)

// InMemoryStore keeps offers in a mutex-guarded map. Offers are short-lived
// so a map plus periodic sweep is enough even for busy deployments.
type InMemoryStore struct {
	mu      sync.Mutex
	pending map[string]*PendingConfirmation
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{pending: make(map[string]*PendingConfirmation)}
}

func (s *InMemoryStore) Offer(_ context.Context, pending *PendingConfirmation) error {
	if pending == nil || pending.Key == "" {
		return sentinel.ErrInvalidState
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *pending
	s.pending[pending.Key] = &cp
	return nil
}

func (s *InMemoryStore) Resolve(_ context.Context, key string, now time.Time) (*PendingConfirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.pending[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	delete(s.pending, key)
	if pending.Expired(now) {
		return nil, sentinel.ErrExpired
	}
	cp := *pending
	return &cp, nil
}

func (s *InMemoryStore) Expire(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, pending := range s.pending {
		if pending.Expired(now) {
			delete(s.pending, key)
			removed++
		}
	}
	return removed, nil
}

// StartCleanup sweeps expired offers until ctx is cancelled.
func (s *InMemoryStore) StartCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.Expire(ctx, time.Now()); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
