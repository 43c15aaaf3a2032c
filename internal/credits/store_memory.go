package credits

import (
	"context"
	"sync"

	id "github.com/teddybearwork/pickme/pkg/domain"
	"github.com/teddybearwork/pickme/pkg/platform/sentinel"
)

// InMemoryStore keeps the transaction log in a mutex-guarded slice per
// officer, newest first.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[id.OfficerID][]*Transaction
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[id.OfficerID][]*Transaction)}
}

func (s *InMemoryStore) Append(_ context.Context, tx *Transaction) error {
	if tx == nil {
		return sentinel.ErrInvalidState
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *tx
	s.entries[tx.OfficerID] = append([]*Transaction{&cp}, s.entries[tx.OfficerID]...)
	return nil
}

func (s *InMemoryStore) ListByOfficer(_ context.Context, officerID id.OfficerID, limit int) ([]*Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.entries[officerID]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	out := make([]*Transaction, 0, len(entries))
	for _, e := range entries {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}
