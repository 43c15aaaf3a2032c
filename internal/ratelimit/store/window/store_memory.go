// Package window provides hour-bucket counter stores backing the rate
// limiter: an in-memory implementation for tests and single-node runs, and a
// Redis implementation for distributed deployments.
package window

import (
	"context"
	"sync"
	"time"

	id "github.com/teddybearwork/pickme/pkg/domain"
)

// retainBuckets is how many trailing hour buckets survive a sweep. Two keeps
// the current and previous hour, which is all the limiter ever reads.
const retainBuckets = 2

// InMemoryStore keeps counters in a mutex-guarded map. Stale buckets are
// swept lazily on increment, so memory stays bounded without a background
// goroutine.
type InMemoryStore struct {
	mu       sync.RWMutex
	counters map[id.OfficerID]map[int64]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{counters: make(map[id.OfficerID]map[int64]int)}
}

func (s *InMemoryStore) Increment(_ context.Context, officerID id.OfficerID, bucket time.Time) (int, error) {
	key := bucket.Unix()

	s.mu.Lock()
	defer s.mu.Unlock()

	buckets, ok := s.counters[officerID]
	if !ok {
		buckets = make(map[int64]int)
		s.counters[officerID] = buckets
	}
	buckets[key]++
	s.sweepLocked(officerID, key)
	return buckets[key], nil
}

func (s *InMemoryStore) Decrement(_ context.Context, officerID id.OfficerID, bucket time.Time) error {
	key := bucket.Unix()

	s.mu.Lock()
	defer s.mu.Unlock()

	if buckets, ok := s.counters[officerID]; ok && buckets[key] > 0 {
		buckets[key]--
	}
	return nil
}

func (s *InMemoryStore) Count(_ context.Context, officerID id.OfficerID, bucket time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.counters[officerID][bucket.Unix()], nil
}

func (s *InMemoryStore) Reset(_ context.Context, officerID id.OfficerID, bucket time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if buckets, ok := s.counters[officerID]; ok {
		delete(buckets, bucket.Unix())
	}
	return nil
}

// sweepLocked drops buckets older than the retention horizon behind current.
// Must be called while holding s.mu.
func (s *InMemoryStore) sweepLocked(officerID id.OfficerID, current int64) {
	horizon := current - int64(retainBuckets-1)*int64(time.Hour/time.Second)
	for key := range s.counters[officerID] {
		if key < horizon {
			delete(s.counters[officerID], key)
		}
	}
}
