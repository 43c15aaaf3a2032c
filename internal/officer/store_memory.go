package officer

import (
	"context"
	"sync"

	id "github.com/teddybearwork/pickme/pkg/domain"
	"github.com/teddybearwork/pickme/pkg/platform/sentinel"
)

// InMemoryStore keeps officers in a mutex-guarded map. Suitable for tests and
// single-node deployments; production wiring uses the Postgres store.
type InMemoryStore struct {
	mu       sync.RWMutex
	officers map[id.OfficerID]*Officer
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{officers: make(map[id.OfficerID]*Officer)}
}

func (s *InMemoryStore) FindByID(_ context.Context, officerID id.OfficerID) (*Officer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.officers[officerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *InMemoryStore) Save(_ context.Context, o *Officer) error {
	if o == nil {
		return sentinel.ErrInvalidState
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *o
	s.officers[o.ID] = &cp
	return nil
}

func (s *InMemoryStore) DebitCredits(_ context.Context, officerID id.OfficerID, amount int) (*Officer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.officers[officerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if o.CreditsRemaining < amount {
		return nil, sentinel.ErrInsufficientCredits
	}
	o.CreditsRemaining -= amount
	cp := *o
	return &cp, nil
}

func (s *InMemoryStore) AddCredits(_ context.Context, officerID id.OfficerID, amount int) (*Officer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.officers[officerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	o.CreditsRemaining += amount
	o.TotalCredits += amount
	cp := *o
	return &cp, nil
}
