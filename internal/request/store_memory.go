package request

import (
	"context"
	"sync"

	"github.com/teddybearwork/pickme/internal/query"
	id "github.com/teddybearwork/pickme/pkg/domain"
	"github.com/teddybearwork/pickme/pkg/platform/sentinel"
)

// InMemoryStore keeps results in mutex-guarded maps, newest first per
// officer.
type InMemoryStore struct {
	mu        sync.RWMutex
	byID      map[id.RequestID]*query.AggregatedResult
	byOfficer map[id.OfficerID][]*query.AggregatedResult
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:      make(map[id.RequestID]*query.AggregatedResult),
		byOfficer: make(map[id.OfficerID][]*query.AggregatedResult),
	}
}

func (s *InMemoryStore) Save(_ context.Context, result *query.AggregatedResult) error {
	if result == nil {
		return sentinel.ErrInvalidState
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *result
	s.byID[result.ID] = &cp
	s.byOfficer[result.OfficerID] = append([]*query.AggregatedResult{&cp}, s.byOfficer[result.OfficerID]...)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, requestID id.RequestID) (*query.AggregatedResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.byID[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *result
	return &cp, nil
}

func (s *InMemoryStore) ListByOfficer(_ context.Context, officerID id.OfficerID, limit int) ([]*query.AggregatedResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := s.byOfficer[officerID]
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	out := make([]*query.AggregatedResult, 0, len(results))
	for _, r := range results {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}
