package dispatch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/teddybearwork/pickme/internal/confirm"
	"github.com/teddybearwork/pickme/internal/credits"
	"github.com/teddybearwork/pickme/internal/dispatch"
	"github.com/teddybearwork/pickme/internal/officer"
	"github.com/teddybearwork/pickme/internal/provider"
	"github.com/teddybearwork/pickme/internal/provider/mockprovider"
	"github.com/teddybearwork/pickme/internal/query"
	"github.com/teddybearwork/pickme/internal/query/classifier"
	rlservice "github.com/teddybearwork/pickme/internal/ratelimit/service"
	"github.com/teddybearwork/pickme/internal/ratelimit/store/window"
	"github.com/teddybearwork/pickme/internal/request"
	id "github.com/teddybearwork/pickme/pkg/domain"
	"github.com/teddybearwork/pickme/pkg/requestcontext"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// fixture wires a dispatcher from real in-memory components so tests
// exercise the same paths production does.
type fixture struct {
	dispatcher *dispatch.Dispatcher
	officers   *officer.InMemoryStore
	ledger     *credits.Ledger
	txStore    *credits.InMemoryStore
	confirms   *confirm.InMemoryStore
	results    *request.InMemoryStore
}

func newFixture(t *testing.T, routing provider.Routing) *fixture {
	t.Helper()

	officers := officer.NewInMemoryStore()
	txStore := credits.NewInMemoryStore()
	ledger, err := credits.New(officers, txStore)
	require.NoError(t, err)

	limiter, err := rlservice.New(window.NewInMemoryStore())
	require.NoError(t, err)

	confirms := confirm.NewInMemoryStore()
	results := request.NewInMemoryStore()

	c := classifier.New(classifier.WithClock(func() time.Time { return fixedNow }))

	d, err := dispatch.New(officers, c, limiter, ledger, confirms, routing, results)
	require.NoError(t, err)

	return &fixture{
		dispatcher: d,
		officers:   officers,
		ledger:     ledger,
		txStore:    txStore,
		confirms:   confirms,
		results:    results,
	}
}

func defaultRouting() provider.Routing {
	return provider.Routing{
		Free: map[query.Kind][]provider.Provider{
			query.KindPhone:   {mockprovider.New("osint", 0)},
			query.KindEmail:   {mockprovider.New("osint", 0)},
			query.KindGeneral: {mockprovider.New("osint", 0)},
		},
		Paid: map[query.Kind][]provider.Provider{
			query.KindPhone:   {mockprovider.New("signzy", 2)},
			query.KindAadhaar: {mockprovider.New("surepass", 3)},
		},
	}
}

func (f *fixture) seedOfficer(t *testing.T, balance int, pro bool) *officer.Officer {
	t.Helper()
	o, err := officer.New("A. Sharma", "TN-4821", "", fixedNow)
	require.NoError(t, err)
	o.Status = officer.StatusActive
	o.CreditsRemaining = balance
	o.TotalCredits = balance
	o.ProAccessEnabled = pro
	require.NoError(t, f.officers.Save(context.Background(), o))
	return o
}

func (f *fixture) balance(t *testing.T, officerID id.OfficerID) int {
	t.Helper()
	o, err := f.officers.FindByID(context.Background(), officerID)
	require.NoError(t, err)
	return o.CreditsRemaining
}

func ctxAt(when time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), when)
}

func TestSubmit_InactiveOfficer(t *testing.T) {
	f := newFixture(t, defaultRouting())
	o := f.seedOfficer(t, 10, true)
	o.Status = officer.StatusSuspended
	require.NoError(t, f.officers.Save(context.Background(), o))

	for _, text := range []string{"9791103607", "verify owner of 9791103607", "gibberish long text"} {
		outcome, err := f.dispatcher.Submit(ctxAt(fixedNow), o.ID, text)
		require.NoError(t, err)
		require.Equal(t, query.DecisionRejected, outcome.Decision)
		require.Equal(t, query.ReasonAccountInactive, outcome.Reason)
	}
}

func TestSubmit_UnrecognizedText(t *testing.T) {
	f := newFixture(t, defaultRouting())
	o := f.seedOfficer(t, 10, true)

	outcome, err := f.dispatcher.Submit(ctxAt(fixedNow), o.ID, "ab")
	require.NoError(t, err)
	require.Equal(t, query.ReasonUnrecognized, outcome.Reason)
}

func TestSubmit_RateLimit(t *testing.T) {
	f := newFixture(t, defaultRouting())
	o := f.seedOfficer(t, 10, true)
	o.RateLimitPerHour = 3
	require.NoError(t, f.officers.Save(context.Background(), o))

	for i := 0; i < 3; i++ {
		outcome, err := f.dispatcher.Submit(ctxAt(fixedNow), o.ID, "9791103607")
		require.NoError(t, err)
		require.Equal(t, query.DecisionCompleted, outcome.Decision)
	}

	outcome, err := f.dispatcher.Submit(ctxAt(fixedNow), o.ID, "9791103607")
	require.NoError(t, err)
	require.Equal(t, query.ReasonRateLimited, outcome.Reason)

	t.Run("budget returns in the next hour bucket", func(t *testing.T) {
		outcome, err := f.dispatcher.Submit(ctxAt(fixedNow.Add(time.Hour)), o.ID, "9791103607")
		require.NoError(t, err)
		require.Equal(t, query.DecisionCompleted, outcome.Decision)
	})

	t.Run("free queries are throttled too", func(t *testing.T) {
		// The limiter runs before tier-specific checks, so free-tier text
		// hits the same cap.
		for i := 0; i < 2; i++ {
			_, err := f.dispatcher.Submit(ctxAt(fixedNow.Add(time.Hour)), o.ID, "ramesh kumar chennai")
			require.NoError(t, err)
		}
		outcome, err := f.dispatcher.Submit(ctxAt(fixedNow.Add(time.Hour)), o.ID, "ramesh kumar chennai")
		require.NoError(t, err)
		require.Equal(t, query.ReasonRateLimited, outcome.Reason)
	})
}

func TestSubmit_FreeQueryCompletesImmediately(t *testing.T) {
	f := newFixture(t, defaultRouting())
	o := f.seedOfficer(t, 10, false)

	outcome, err := f.dispatcher.Submit(ctxAt(fixedNow), o.ID, "9791103607")
	require.NoError(t, err)
	require.Equal(t, query.DecisionCompleted, outcome.Decision)
	require.NotNil(t, outcome.Result)
	require.Equal(t, query.StatusSuccess, outcome.Result.Status)
	require.Zero(t, outcome.Result.CreditsUsed)

	t.Run("result is persisted", func(t *testing.T) {
		saved, err := f.results.FindByID(context.Background(), outcome.Result.ID)
		require.NoError(t, err)
		require.Equal(t, query.KindPhone, saved.Query.Kind)
	})

	t.Run("no offer and no debit", func(t *testing.T) {
		require.Equal(t, 10, f.balance(t, o.ID))
		history, err := f.ledger.History(context.Background(), o.ID, 0)
		require.NoError(t, err)
		require.Empty(t, history)
	})
}

func TestSubmit_PaidQueryGates(t *testing.T) {
	t.Run("pro access disabled", func(t *testing.T) {
		f := newFixture(t, defaultRouting())
		o := f.seedOfficer(t, 10, false)

		outcome, err := f.dispatcher.Submit(ctxAt(fixedNow), o.ID, "verify owner of 9791103607")
		require.NoError(t, err)
		require.Equal(t, query.ReasonProAccessDisabled, outcome.Reason)
	})

	t.Run("insufficient credits creates no offer", func(t *testing.T) {
		f := newFixture(t, defaultRouting())
		o := f.seedOfficer(t, 1, true)

		outcome, err := f.dispatcher.Submit(ctxAt(fixedNow), o.ID, "123456789012 aadhaar verify")
		require.NoError(t, err)
		require.Equal(t, query.ReasonInsufficientCredits, outcome.Reason)
		require.Equal(t, 1, f.balance(t, o.ID))

		_, err = f.confirms.Resolve(context.Background(), confirm.Key(o.ID, 3), fixedNow)
		require.Error(t, err)
	})
}

func TestSubmit_PaidQueryOffersConfirmation(t *testing.T) {
	f := newFixture(t, defaultRouting())
	o := f.seedOfficer(t, 5, true)

	outcome, err := f.dispatcher.Submit(ctxAt(fixedNow), o.ID, "verify owner of 9791103607")
	require.NoError(t, err)
	require.Equal(t, query.DecisionNeedsConfirmation, outcome.Decision)
	require.Equal(t, 2, outcome.EstimatedCost)
	require.Equal(t, confirm.Key(o.ID, 2), outcome.ConfirmationKey)
	require.Equal(t, query.KindPhone, outcome.Query.Kind)

	t.Run("nothing executed or charged yet", func(t *testing.T) {
		require.Equal(t, 5, f.balance(t, o.ID))
		results, err := f.results.ListByOfficer(context.Background(), o.ID, 0)
		require.NoError(t, err)
		require.Empty(t, results)
	})
}

func TestConfirm_HappyPath(t *testing.T) {
	f := newFixture(t, defaultRouting())
	o := f.seedOfficer(t, 5, true)

	outcome, err := f.dispatcher.Submit(ctxAt(fixedNow), o.ID, "verify owner of 9791103607")
	require.NoError(t, err)
	require.Equal(t, query.DecisionNeedsConfirmation, outcome.Decision)

	confirmed, err := f.dispatcher.Confirm(ctxAt(fixedNow.Add(time.Minute)), o.ID, outcome.ConfirmationKey)
	require.NoError(t, err)
	require.Equal(t, query.DecisionCompleted, confirmed.Decision)
	require.Equal(t, query.StatusSuccess, confirmed.Result.Status)
	require.Equal(t, 2, confirmed.Result.CreditsUsed)

	t.Run("balance dropped by the actual cost", func(t *testing.T) {
		require.Equal(t, 3, f.balance(t, o.ID))
	})

	t.Run("exactly one deduction journaled", func(t *testing.T) {
		history, err := f.ledger.History(context.Background(), o.ID, 0)
		require.NoError(t, err)
		require.Len(t, history, 1)
		require.Equal(t, credits.ActionDeduction, history[0].Action)
		require.Equal(t, 2, history[0].Amount)
		require.Equal(t, 5, history[0].PreviousBalance)
		require.Equal(t, 3, history[0].NewBalance)
		require.Equal(t, confirmed.Result.ID, *history[0].RequestID)
	})

	t.Run("second confirm on the same key is rejected", func(t *testing.T) {
		again, err := f.dispatcher.Confirm(ctxAt(fixedNow.Add(2*time.Minute)), o.ID, outcome.ConfirmationKey)
		require.NoError(t, err)
		require.Equal(t, query.ReasonOfferExpiredOrUnknown, again.Reason)
		require.Equal(t, 3, f.balance(t, o.ID))
	})
}

func TestConfirm_ExpiredOffer(t *testing.T) {
	f := newFixture(t, defaultRouting())
	o := f.seedOfficer(t, 5, true)

	outcome, err := f.dispatcher.Submit(ctxAt(fixedNow), o.ID, "verify owner of 9791103607")
	require.NoError(t, err)

	confirmed, err := f.dispatcher.Confirm(ctxAt(fixedNow.Add(6*time.Minute)), o.ID, outcome.ConfirmationKey)
	require.NoError(t, err)
	require.Equal(t, query.ReasonOfferExpiredOrUnknown, confirmed.Reason)

	t.Run("nothing executed and nothing charged", func(t *testing.T) {
		require.Equal(t, 5, f.balance(t, o.ID))
		results, err := f.results.ListByOfficer(context.Background(), o.ID, 0)
		require.NoError(t, err)
		require.Empty(t, results)
	})
}

func TestConfirm_UnknownKey(t *testing.T) {
	f := newFixture(t, defaultRouting())
	o := f.seedOfficer(t, 5, true)

	confirmed, err := f.dispatcher.Confirm(ctxAt(fixedNow), o.ID, "no-such-key")
	require.NoError(t, err)
	require.Equal(t, query.ReasonOfferExpiredOrUnknown, confirmed.Reason)
}

func TestConfirm_ForeignKeyDoesNotConsumeOffer(t *testing.T) {
	f := newFixture(t, defaultRouting())
	owner := f.seedOfficer(t, 5, true)

	intruder, err := officer.New("R. Iyer", "TN-1177", "", fixedNow)
	require.NoError(t, err)
	intruder.Status = officer.StatusActive
	intruder.CreditsRemaining = 5
	intruder.TotalCredits = 5
	intruder.ProAccessEnabled = true
	require.NoError(t, f.officers.Save(context.Background(), intruder))

	outcome, err := f.dispatcher.Submit(ctxAt(fixedNow), owner.ID, "verify owner of 9791103607")
	require.NoError(t, err)
	require.Equal(t, query.DecisionNeedsConfirmation, outcome.Decision)

	// The key format is guessable, so another officer presenting it must be
	// treated the same as an unknown key.
	confirmed, err := f.dispatcher.Confirm(ctxAt(fixedNow.Add(time.Minute)), intruder.ID, outcome.ConfirmationKey)
	require.NoError(t, err)
	require.Equal(t, query.ReasonOfferExpiredOrUnknown, confirmed.Reason)

	t.Run("neither account was charged", func(t *testing.T) {
		require.Equal(t, 5, f.balance(t, owner.ID))
		require.Equal(t, 5, f.balance(t, intruder.ID))
	})

	t.Run("cancel with a foreign key errors", func(t *testing.T) {
		require.Error(t, f.dispatcher.Cancel(ctxAt(fixedNow.Add(time.Minute)), intruder.ID, outcome.ConfirmationKey))
	})

	t.Run("the owner's offer is still live afterwards", func(t *testing.T) {
		confirmed, err := f.dispatcher.Confirm(ctxAt(fixedNow.Add(2*time.Minute)), owner.ID, outcome.ConfirmationKey)
		require.NoError(t, err)
		require.Equal(t, query.DecisionCompleted, confirmed.Decision)
		require.Equal(t, 3, f.balance(t, owner.ID))
	})
}

func TestConfirm_DebitRaceSurfacesAsInsufficientCredits(t *testing.T) {
	f := newFixture(t, defaultRouting())
	o := f.seedOfficer(t, 5, true)

	outcome, err := f.dispatcher.Submit(ctxAt(fixedNow), o.ID, "verify owner of 9791103607")
	require.NoError(t, err)

	// Drain the balance between offer and confirm, as a concurrent
	// completion would.
	_, err = f.officers.DebitCredits(context.Background(), o.ID, 4)
	require.NoError(t, err)

	confirmed, err := f.dispatcher.Confirm(ctxAt(fixedNow.Add(time.Minute)), o.ID, outcome.ConfirmationKey)
	require.NoError(t, err)
	require.Equal(t, query.DecisionRejected, confirmed.Decision)
	require.Equal(t, query.ReasonInsufficientCredits, confirmed.Reason)
	require.Equal(t, 1, f.balance(t, o.ID))
}

func TestConfirm_AllProvidersFailedMeansNoDebit(t *testing.T) {
	routing := defaultRouting()
	routing.Paid[query.KindPhone] = []provider.Provider{
		mockprovider.New("signzy", 2, mockprovider.WithFailure(errors.New("upstream timeout"))),
	}
	f := newFixture(t, routing)
	o := f.seedOfficer(t, 5, true)

	outcome, err := f.dispatcher.Submit(ctxAt(fixedNow), o.ID, "verify owner of 9791103607")
	require.NoError(t, err)

	confirmed, err := f.dispatcher.Confirm(ctxAt(fixedNow.Add(time.Minute)), o.ID, outcome.ConfirmationKey)
	require.NoError(t, err)
	require.Equal(t, query.DecisionCompleted, confirmed.Decision)
	require.Equal(t, query.StatusFailed, confirmed.Result.Status)
	require.Zero(t, confirmed.Result.CreditsUsed)

	t.Run("failed work is never charged", func(t *testing.T) {
		require.Equal(t, 5, f.balance(t, o.ID))
	})
}

func TestConfirm_MandatoryProviderFailureIsPartial(t *testing.T) {
	routing := defaultRouting()
	routing.Paid[query.KindAadhaar] = []provider.Provider{
		mockprovider.New("surepass", 3, mockprovider.WithFailure(errors.New("document service down"))),
		mockprovider.New("osint", 0),
	}
	f := newFixture(t, routing)
	o := f.seedOfficer(t, 5, true)

	outcome, err := f.dispatcher.Submit(ctxAt(fixedNow), o.ID, "123456789012 aadhaar verify")
	require.NoError(t, err)

	confirmed, err := f.dispatcher.Confirm(ctxAt(fixedNow.Add(time.Minute)), o.ID, outcome.ConfirmationKey)
	require.NoError(t, err)
	require.Equal(t, query.StatusPartialSuccess, confirmed.Result.Status)

	t.Run("results stay in priority order", func(t *testing.T) {
		require.Equal(t, "surepass", confirmed.Result.ProviderResults[0].Provider)
		require.Equal(t, "osint", confirmed.Result.ProviderResults[1].Provider)
		require.False(t, confirmed.Result.ProviderResults[0].Succeeded)
		require.True(t, confirmed.Result.ProviderResults[1].Succeeded)
	})

	t.Run("debit still charges the estimate", func(t *testing.T) {
		// Actual reported cost is 0 (the paying provider failed), but work
		// was performed, so the estimate is charged.
		require.Equal(t, 2, f.balance(t, o.ID))
	})
}

func TestCancel(t *testing.T) {
	f := newFixture(t, defaultRouting())
	o := f.seedOfficer(t, 5, true)

	outcome, err := f.dispatcher.Submit(ctxAt(fixedNow), o.ID, "verify owner of 9791103607")
	require.NoError(t, err)

	require.NoError(t, f.dispatcher.Cancel(ctxAt(fixedNow.Add(time.Minute)), o.ID, outcome.ConfirmationKey))

	t.Run("balance untouched and nothing executed", func(t *testing.T) {
		require.Equal(t, 5, f.balance(t, o.ID))
		results, err := f.results.ListByOfficer(context.Background(), o.ID, 0)
		require.NoError(t, err)
		require.Empty(t, results)
	})

	t.Run("confirm after cancel is rejected", func(t *testing.T) {
		confirmed, err := f.dispatcher.Confirm(ctxAt(fixedNow.Add(2*time.Minute)), o.ID, outcome.ConfirmationKey)
		require.NoError(t, err)
		require.Equal(t, query.ReasonOfferExpiredOrUnknown, confirmed.Reason)
	})

	t.Run("cancel of unknown key errors", func(t *testing.T) {
		require.Error(t, f.dispatcher.Cancel(ctxAt(fixedNow), o.ID, "no-such-key"))
	})
}

func TestExecute_NoProvidersConfigured(t *testing.T) {
	f := newFixture(t, defaultRouting())
	o := f.seedOfficer(t, 5, true)

	q, err := query.NewQuery(query.KindVoterID, "voter_id:XYZ1234567", "XYZ1234567", query.TierPaid, fixedNow)
	require.NoError(t, err)

	result := f.dispatcher.Execute(ctxAt(fixedNow), o.ID, q)
	require.Equal(t, query.StatusFailed, result.Status)
	require.Empty(t, result.ProviderResults)
	require.Contains(t, result.SummaryText, "no providers configured")
}

func TestSubmit_DuplicateOfferOverwrites(t *testing.T) {
	f := newFixture(t, defaultRouting())
	o := f.seedOfficer(t, 5, true)

	first, err := f.dispatcher.Submit(ctxAt(fixedNow), o.ID, "verify owner of 9791103607")
	require.NoError(t, err)
	second, err := f.dispatcher.Submit(ctxAt(fixedNow.Add(time.Minute)), o.ID, "verify owner of 9898989898")
	require.NoError(t, err)
	require.Equal(t, first.ConfirmationKey, second.ConfirmationKey)

	confirmed, err := f.dispatcher.Confirm(ctxAt(fixedNow.Add(2*time.Minute)), o.ID, second.ConfirmationKey)
	require.NoError(t, err)
	require.Equal(t, query.DecisionCompleted, confirmed.Decision)
	require.Equal(t, "9898989898", confirmed.Result.Query.NormalizedValue)

	t.Run("only the newer offer was live", func(t *testing.T) {
		again, err := f.dispatcher.Confirm(ctxAt(fixedNow.Add(3*time.Minute)), o.ID, first.ConfirmationKey)
		require.NoError(t, err)
		require.Equal(t, query.ReasonOfferExpiredOrUnknown, again.Reason)
	})
}
