package confirm_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/teddybearwork/pickme/internal/confirm"
	"github.com/teddybearwork/pickme/internal/query"
	id "github.com/teddybearwork/pickme/pkg/domain"
	"github.com/teddybearwork/pickme/pkg/platform/sentinel"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func makeOffer(t *testing.T, officerID id.OfficerID, cost int, ttl time.Duration) *confirm.PendingConfirmation {
	t.Helper()
	q, err := query.NewQuery(query.KindAadhaar, "123456789012 aadhaar verify", "123456789012", query.TierPaid, fixedNow)
	require.NoError(t, err)
	return &confirm.PendingConfirmation{
		Key:           confirm.Key(officerID, cost),
		OfficerID:     officerID,
		Query:         q,
		EstimatedCost: cost,
		CreatedAt:     fixedNow,
		ExpiresAt:     fixedNow.Add(ttl),
	}
}

func TestKey(t *testing.T) {
	officerID := id.NewOfficerID()
	require.Equal(t, officerID.String()+":3", confirm.Key(officerID, 3))
	require.NotEqual(t, confirm.Key(officerID, 3), confirm.Key(officerID, 2))
}

func TestInMemoryStore_OfferAndResolve(t *testing.T) {
	ctx := context.Background()
	store := confirm.NewInMemoryStore()
	officerID := id.NewOfficerID()
	offer := makeOffer(t, officerID, 3, 5*time.Minute)

	require.NoError(t, store.Offer(ctx, offer))

	resolved, err := store.Resolve(ctx, offer.Key, fixedNow.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, offer.Query, resolved.Query)
	require.Equal(t, 3, resolved.EstimatedCost)

	t.Run("an offer is consumed exactly once", func(t *testing.T) {
		_, err := store.Resolve(ctx, offer.Key, fixedNow.Add(time.Minute))
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestInMemoryStore_ResolveUnknownKey(t *testing.T) {
	store := confirm.NewInMemoryStore()
	_, err := store.Resolve(context.Background(), "no-such-key", fixedNow)
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStore_ResolveExpiredOffer(t *testing.T) {
	ctx := context.Background()
	store := confirm.NewInMemoryStore()
	offer := makeOffer(t, id.NewOfficerID(), 3, 5*time.Minute)
	require.NoError(t, store.Offer(ctx, offer))

	_, err := store.Resolve(ctx, offer.Key, fixedNow.Add(6*time.Minute))
	require.ErrorIs(t, err, sentinel.ErrExpired)

	t.Run("expired offer is gone afterwards", func(t *testing.T) {
		_, err := store.Resolve(ctx, offer.Key, fixedNow)
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestInMemoryStore_DuplicateOfferOverwrites(t *testing.T) {
	ctx := context.Background()
	store := confirm.NewInMemoryStore()
	officerID := id.NewOfficerID()

	first := makeOffer(t, officerID, 3, 5*time.Minute)
	require.NoError(t, store.Offer(ctx, first))

	second := makeOffer(t, officerID, 3, 5*time.Minute)
	secondQuery, err := query.NewQuery(query.KindAadhaar, "987654321098 aadhaar verify", "987654321098", query.TierPaid, fixedNow)
	require.NoError(t, err)
	second.Query = secondQuery
	require.NoError(t, store.Offer(ctx, second))

	resolved, err := store.Resolve(ctx, first.Key, fixedNow)
	require.NoError(t, err)
	require.Equal(t, "987654321098", resolved.Query.NormalizedValue)

	// The overwritten offer is unusable: the key was consumed by the resolve
	// above and nothing remains.
	_, err = store.Resolve(ctx, first.Key, fixedNow)
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStore_Expire(t *testing.T) {
	ctx := context.Background()
	store := confirm.NewInMemoryStore()

	live := makeOffer(t, id.NewOfficerID(), 2, 10*time.Minute)
	stale := makeOffer(t, id.NewOfficerID(), 3, time.Minute)
	require.NoError(t, store.Offer(ctx, live))
	require.NoError(t, store.Offer(ctx, stale))

	removed, err := store.Expire(ctx, fixedNow.Add(5*time.Minute))
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	_, err = store.Resolve(ctx, live.Key, fixedNow.Add(5*time.Minute))
	require.NoError(t, err)
}

func TestInMemoryStore_ConcurrentResolveSingleWinner(t *testing.T) {
	ctx := context.Background()
	store := confirm.NewInMemoryStore()
	offer := makeOffer(t, id.NewOfficerID(), 3, 5*time.Minute)
	require.NoError(t, store.Offer(ctx, offer))

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Resolve(ctx, offer.Key, fixedNow); err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, winners)
}
