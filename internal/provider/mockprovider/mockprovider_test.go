package mockprovider_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/teddybearwork/pickme/internal/provider/mockprovider"
	"github.com/teddybearwork/pickme/internal/query"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func TestLookup_Deterministic(t *testing.T) {
	p := mockprovider.New("surepass", 3)
	require.Equal(t, "surepass", p.Name())

	q, err := query.NewQuery(query.KindAadhaar, "123456789012", "123456789012", query.TierPaid, fixedNow)
	require.NoError(t, err)

	first, err := p.Lookup(context.Background(), q)
	require.NoError(t, err)
	second, err := p.Lookup(context.Background(), q)
	require.NoError(t, err)

	require.Equal(t, first.Fields, second.Fields)
	require.Equal(t, 3, first.CostCredits)
	require.NotEmpty(t, first.Fields["record_id"])

	t.Run("different inputs give different records", func(t *testing.T) {
		other, err := query.NewQuery(query.KindAadhaar, "987654321098", "987654321098", query.TierPaid, fixedNow)
		require.NoError(t, err)

		payload, err := p.Lookup(context.Background(), other)
		require.NoError(t, err)
		require.NotEqual(t, first.Fields["record_id"], payload.Fields["record_id"])
	})
}

func TestLookup_ScriptedFailure(t *testing.T) {
	wantErr := errors.New("upstream down")
	p := mockprovider.New("signzy", 2, mockprovider.WithFailure(wantErr))

	q, err := query.NewQuery(query.KindPhone, "9791103607", "9791103607", query.TierPaid, fixedNow)
	require.NoError(t, err)

	_, err = p.Lookup(context.Background(), q)
	require.ErrorIs(t, err, wantErr)
}
