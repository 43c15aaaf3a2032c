package credits

import (
	"context"
	"errors"
	"log/slog"

	"github.com/teddybearwork/pickme/internal/officer"
	"github.com/teddybearwork/pickme/internal/query"
	id "github.com/teddybearwork/pickme/pkg/domain"
	dErrors "github.com/teddybearwork/pickme/pkg/domain-errors"
	"github.com/teddybearwork/pickme/pkg/platform/audit"
	"github.com/teddybearwork/pickme/pkg/requestcontext"
)

// kindCosts is the estimate table for paid lookups. Kinds not listed cost
// the default.
var kindCosts = map[query.Kind]int{
	query.KindPhone:   2,
	query.KindAadhaar: 3,
	query.KindPAN:     2,
	query.KindEmail:   1,
}

const defaultCost = 1

// EstimateCost is a pure lookup by query kind. No I/O, callable before any
// balance check.
func EstimateCost(kind query.Kind) int {
	if cost, ok := kindCosts[kind]; ok {
		return cost
	}
	return defaultCost
}

// AuditPublisher emits audit events for balance movements.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Ledger coordinates balance mutations with the transaction log. The officer
// store owns the atomic balance change; the ledger appends the matching
// journal entry.
type Ledger struct {
	officers       officer.Store
	store          Store
	logger         *slog.Logger
	auditPublisher AuditPublisher
}

type Option func(*Ledger)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(l *Ledger) {
		l.auditPublisher = publisher
	}
}

func New(officers officer.Store, store Store, opts ...Option) (*Ledger, error) {
	if officers == nil {
		return nil, errors.New("officer store is required")
	}
	if store == nil {
		return nil, errors.New("transaction store is required")
	}
	l := &Ledger{officers: officers, store: store}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// CheckAndReserve reports whether the balance covers the cost. The
// reservation is logical only: nothing is held, and the debit re-verifies
// atomically at completion time.
func (l *Ledger) CheckAndReserve(o *officer.Officer, cost int) bool {
	if o == nil || cost < 0 {
		return false
	}
	return o.CreditsRemaining >= cost
}

// Debit subtracts amount from the officer's balance and journals the
// movement. The balance check happens inside the store's atomic debit, so a
// race that drained the balance since the earlier check surfaces as
// sentinel.ErrInsufficientCredits here. A journal append failure after a
// successful debit is logged and swallowed: the balance is authoritative and
// the gap is left to reconciliation.
func (l *Ledger) Debit(ctx context.Context, officerID id.OfficerID, amount int, requestID *id.RequestID, description string) (*Transaction, error) {
	if amount <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "debit amount must be positive")
	}

	updated, err := l.officers.DebitCredits(ctx, officerID, amount)
	if err != nil {
		return nil, err
	}

	tx := &Transaction{
		ID:              id.NewTransactionID(),
		OfficerID:       officerID,
		RequestID:       requestID,
		Action:          ActionDeduction,
		Amount:          amount,
		PreviousBalance: updated.CreditsRemaining + amount,
		NewBalance:      updated.CreditsRemaining,
		Description:     description,
		CreatedAt:       requestcontext.Now(ctx),
	}
	if err := l.store.Append(ctx, tx); err != nil {
		if l.logger != nil {
			l.logger.ErrorContext(ctx, "debited balance but failed to journal transaction",
				"officer_id", officerID.String(), "amount", amount, "error", err)
		}
	}
	l.emit(ctx, officerID, audit.EventCreditsDebited, description, -amount)
	return tx, nil
}

// Credit adds amount to the balance under the given action (top-up, renewal,
// refund, or adjustment) and journals it.
func (l *Ledger) Credit(ctx context.Context, officerID id.OfficerID, amount int, action Action, description string) (*Transaction, error) {
	if amount <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "credit amount must be positive")
	}
	switch action {
	case ActionRenewal, ActionTopUp, ActionRefund, ActionAdjustment:
	default:
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid credit action")
	}

	updated, err := l.officers.AddCredits(ctx, officerID, amount)
	if err != nil {
		return nil, err
	}

	tx := &Transaction{
		ID:              id.NewTransactionID(),
		OfficerID:       officerID,
		Action:          action,
		Amount:          amount,
		PreviousBalance: updated.CreditsRemaining - amount,
		NewBalance:      updated.CreditsRemaining,
		Description:     description,
		CreatedAt:       requestcontext.Now(ctx),
	}
	if err := l.store.Append(ctx, tx); err != nil {
		if l.logger != nil {
			l.logger.ErrorContext(ctx, "credited balance but failed to journal transaction",
				"officer_id", officerID.String(), "amount", amount, "error", err)
		}
	}
	l.emit(ctx, officerID, audit.EventCreditsAdded, description, amount)
	return tx, nil
}

// History returns the officer's ledger entries, newest first.
func (l *Ledger) History(ctx context.Context, officerID id.OfficerID, limit int) ([]*Transaction, error) {
	return l.store.ListByOfficer(ctx, officerID, limit)
}

func (l *Ledger) emit(ctx context.Context, officerID id.OfficerID, action audit.AuditEvent, reason string, delta int) {
	if l.auditPublisher == nil {
		return
	}
	event := audit.Event{
		OfficerID: officerID,
		Action:    string(action),
		Reason:    reason,
		Delta:     delta,
	}
	if err := l.auditPublisher.Emit(ctx, event); err != nil && l.logger != nil {
		l.logger.WarnContext(ctx, "failed to emit audit event", "event", string(action), "error", err)
	}
}
