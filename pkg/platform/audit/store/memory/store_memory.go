package memory

import (
	"context"
	"sync"

	id "github.com/teddybearwork/pickme/pkg/domain"
	audit "github.com/teddybearwork/pickme/pkg/platform/audit"
)

// InMemoryStore keeps audit events per officer. Suitable for tests and
// single-process deployments; production should swap in a durable store.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.OfficerID][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.OfficerID][]audit.Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.OfficerID] = append(s.events[event.OfficerID], event)
	return nil
}

func (s *InMemoryStore) ListByOfficer(_ context.Context, officerID id.OfficerID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[officerID]...), nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[id.OfficerID][]audit.Event)
}
