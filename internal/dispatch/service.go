// Package dispatch orchestrates query handling end to end: account and rate
// checks, free execution, the paid confirm/cancel flow, provider fan-out, and
// the final debit.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/teddybearwork/pickme/internal/confirm"
	"github.com/teddybearwork/pickme/internal/credits"
	"github.com/teddybearwork/pickme/internal/dispatch/metrics"
	"github.com/teddybearwork/pickme/internal/officer"
	"github.com/teddybearwork/pickme/internal/provider"
	"github.com/teddybearwork/pickme/internal/query"
	rlmodels "github.com/teddybearwork/pickme/internal/ratelimit/models"
	"github.com/teddybearwork/pickme/internal/request"
	id "github.com/teddybearwork/pickme/pkg/domain"
	dErrors "github.com/teddybearwork/pickme/pkg/domain-errors"
	"github.com/teddybearwork/pickme/pkg/platform/audit"
	"github.com/teddybearwork/pickme/pkg/platform/sentinel"
	"github.com/teddybearwork/pickme/pkg/requestcontext"
	"golang.org/x/sync/errgroup"
)

const (
	defaultConfirmationTTL = 5 * time.Minute
	defaultProviderTimeout = 30 * time.Second
)

// Classifier turns raw officer input into a typed query.
type Classifier interface {
	Classify(text string) (query.Query, bool)
}

// Limiter admits or rejects a submission against the officer's hourly cap.
type Limiter interface {
	Admit(ctx context.Context, officerID id.OfficerID, now time.Time, limit int) (*rlmodels.Decision, error)
}

// Ledger covers the credit operations the dispatcher needs.
type Ledger interface {
	CheckAndReserve(o *officer.Officer, cost int) bool
	Debit(ctx context.Context, officerID id.OfficerID, amount int, requestID *id.RequestID, description string) (*credits.Transaction, error)
}

// AuditPublisher emits audit events for dispatch decisions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Dispatcher is the orchestrator. Safe for concurrent use: per-officer
// correctness rests on the confirmation store's atomic resolve and the
// officer store's atomic debit, not on any lock held here.
type Dispatcher struct {
	officers   officer.Store
	classifier Classifier
	limiter    Limiter
	ledger     Ledger
	confirms   confirm.Store
	routing    provider.Routing
	results    request.Store

	logger          *slog.Logger
	metrics         *metrics.Metrics
	auditPublisher  AuditPublisher
	confirmationTTL time.Duration
	providerTimeout time.Duration
}

type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(d *Dispatcher) {
		d.auditPublisher = publisher
	}
}

func WithConfirmationTTL(ttl time.Duration) Option {
	return func(d *Dispatcher) {
		if ttl > 0 {
			d.confirmationTTL = ttl
		}
	}
}

func WithProviderTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.providerTimeout = timeout
		}
	}
}

func New(
	officers officer.Store,
	classifier Classifier,
	limiter Limiter,
	ledger Ledger,
	confirms confirm.Store,
	routing provider.Routing,
	results request.Store,
	opts ...Option,
) (*Dispatcher, error) {
	if officers == nil {
		return nil, errors.New("officer store is required")
	}
	if classifier == nil {
		return nil, errors.New("classifier is required")
	}
	if limiter == nil {
		return nil, errors.New("limiter is required")
	}
	if ledger == nil {
		return nil, errors.New("ledger is required")
	}
	if confirms == nil {
		return nil, errors.New("confirmation store is required")
	}
	if routing.Free == nil && routing.Paid == nil {
		return nil, errors.New("provider routing is required")
	}
	if results == nil {
		return nil, errors.New("result store is required")
	}

	d := &Dispatcher{
		officers:        officers,
		classifier:      classifier,
		limiter:         limiter,
		ledger:          ledger,
		confirms:        confirms,
		routing:         routing,
		results:         results,
		confirmationTTL: defaultConfirmationTTL,
		providerTimeout: defaultProviderTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Submit runs the admission pipeline for raw officer input. Free queries
// execute immediately; paid queries stop at an offer that must be confirmed.
func (d *Dispatcher) Submit(ctx context.Context, officerID id.OfficerID, rawText string) (query.DispatchOutcome, error) {
	now := requestcontext.Now(ctx)
	if d.metrics != nil {
		d.metrics.IncrementSubmitted()
	}

	o, err := d.officers.FindByID(ctx, officerID)
	if err != nil {
		return query.DispatchOutcome{}, err
	}
	if !o.IsActive() {
		return d.reject(ctx, officerID, rawText, query.ReasonAccountInactive), nil
	}

	q, ok := d.classifier.Classify(rawText)
	if !ok {
		return d.reject(ctx, officerID, rawText, query.ReasonUnrecognized), nil
	}

	decision, err := d.limiter.Admit(ctx, officerID, now, o.EffectiveRateLimit())
	if err != nil {
		return query.DispatchOutcome{}, err
	}
	if !decision.Allowed {
		d.emit(ctx, officerID, audit.EventRateLimitHit, q.NormalizedValue, "", 0)
		return d.reject(ctx, officerID, rawText, query.ReasonRateLimited), nil
	}

	if q.Tier == query.TierFree {
		result := d.Execute(ctx, officerID, q)
		if err := d.results.Save(ctx, &result); err != nil {
			return query.DispatchOutcome{}, err
		}
		d.emit(ctx, officerID, audit.EventQueryCompleted, q.NormalizedValue, string(result.Status), 0)
		if d.metrics != nil {
			d.metrics.IncrementCompleted(string(result.Status))
		}
		return query.Completed(&result), nil
	}

	if !o.ProAccessEnabled {
		return d.reject(ctx, officerID, rawText, query.ReasonProAccessDisabled), nil
	}
	cost := credits.EstimateCost(q.Kind)
	if !d.ledger.CheckAndReserve(o, cost) {
		return d.reject(ctx, officerID, rawText, query.ReasonInsufficientCredits), nil
	}

	pending := &confirm.PendingConfirmation{
		Key:           confirm.Key(officerID, cost),
		OfficerID:     officerID,
		Query:         q,
		EstimatedCost: cost,
		CreatedAt:     now,
		ExpiresAt:     now.Add(d.confirmationTTL),
	}
	if err := d.confirms.Offer(ctx, pending); err != nil {
		return query.DispatchOutcome{}, err
	}
	d.emit(ctx, officerID, audit.EventOfferCreated, q.NormalizedValue, "", 0)
	return query.NeedsConfirmation(q, cost, pending.Key), nil
}

// Confirm consumes the caller's own offer and runs the paid query. Ordering
// is execute, persist, debit: a persistence failure aborts before any balance
// movement, and a debit failure after successful execution is the
// reconciliation path, never a second execution.
func (d *Dispatcher) Confirm(ctx context.Context, officerID id.OfficerID, key string) (query.DispatchOutcome, error) {
	now := requestcontext.Now(ctx)
	if _, err := d.confirms.Expire(ctx, now); err != nil && d.logger != nil {
		d.logger.WarnContext(ctx, "failed to sweep expired confirmations", "error", err)
	}

	// Offers are keyed by owner. A key that is not the caller's own is
	// rejected before Resolve so the real owner's offer is never consumed.
	if !d.ownsKey(officerID, key) {
		return query.Rejected(query.ReasonOfferExpiredOrUnknown), nil
	}

	pending, err := d.confirms.Resolve(ctx, key, now)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrExpired) {
			return query.Rejected(query.ReasonOfferExpiredOrUnknown), nil
		}
		return query.DispatchOutcome{}, err
	}

	result := d.Execute(ctx, officerID, pending.Query)
	if err := d.results.Save(ctx, &result); err != nil {
		return query.DispatchOutcome{}, err
	}

	if result.Status != query.StatusFailed {
		// Never under-charge for work performed: the debit is the greater of
		// the quoted estimate and what providers actually reported.
		amount := pending.EstimatedCost
		if result.CreditsUsed > amount {
			amount = result.CreditsUsed
		}
		if amount > 0 {
			if _, err := d.ledger.Debit(ctx, officerID, amount, &result.ID, "confirmed "+string(pending.Query.Kind)+" lookup"); err != nil {
				if errors.Is(err, sentinel.ErrInsufficientCredits) {
					d.emit(ctx, officerID, audit.EventQueryRejected, pending.Query.NormalizedValue, string(query.ReasonInsufficientCredits), 0)
					return query.Rejected(query.ReasonInsufficientCredits), nil
				}
				// Work was done and persisted but the charge did not land.
				// Surface loudly for reconciliation instead of re-executing.
				if d.logger != nil {
					d.logger.ErrorContext(ctx, "debit failed after execution",
						"officer_id", officerID.String(), "request_id", result.ID.String(),
						"amount", amount, "error", err)
				}
				d.emit(ctx, officerID, audit.EventDebitUnreconciled, result.ID.String(), err.Error(), -amount)
			} else if d.metrics != nil {
				d.metrics.AddCreditsDebited(amount)
			}
		}
	}

	d.emit(ctx, officerID, audit.EventOfferConfirmed, pending.Query.NormalizedValue, string(result.Status), 0)
	if d.metrics != nil {
		d.metrics.IncrementCompleted(string(result.Status))
	}
	return query.Completed(&result), nil
}

// Cancel consumes the caller's own offer without executing anything. The
// balance is never touched: reservations are logical only.
func (d *Dispatcher) Cancel(ctx context.Context, officerID id.OfficerID, key string) error {
	now := requestcontext.Now(ctx)
	if _, err := d.confirms.Expire(ctx, now); err != nil && d.logger != nil {
		d.logger.WarnContext(ctx, "failed to sweep expired confirmations", "error", err)
	}

	if !d.ownsKey(officerID, key) {
		return dErrors.New(dErrors.CodeNotFound, "confirmation expired or unknown")
	}

	pending, err := d.confirms.Resolve(ctx, key, now)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrExpired) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "confirmation expired or unknown")
		}
		return err
	}
	d.emit(ctx, pending.OfficerID, audit.EventOfferCancelled, pending.Query.NormalizedValue, "", 0)
	return nil
}

// Execute fans the query out to every provider configured for its kind.
// Calls run concurrently but results land in the configured priority order,
// so output is reproducible across runs. A provider failure is recorded in
// place and never aborts its siblings.
func (d *Dispatcher) Execute(ctx context.Context, officerID id.OfficerID, q query.Query) query.AggregatedResult {
	now := requestcontext.Now(ctx)
	providers := d.routing.For(q.Kind, q.Tier)
	results := make([]query.ProviderResult, len(providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range providers {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, d.providerTimeout)
			defer cancel()

			start := time.Now()
			payload, err := p.Lookup(callCtx, q)
			latency := time.Since(start)
			if d.metrics != nil {
				d.metrics.ObserveProviderLatency(p.Name(), latency)
			}

			if err != nil {
				if d.metrics != nil {
					d.metrics.IncrementProviderFailures(p.Name())
				}
				if d.logger != nil {
					d.logger.WarnContext(ctx, "provider lookup failed",
						"provider", p.Name(), "kind", q.Kind.String(), "error", err)
				}
				d.emit(ctx, officerID, audit.EventProviderFailed, q.NormalizedValue, err.Error(), 0)
				results[i] = query.ProviderResult{
					Provider:  p.Name(),
					Succeeded: false,
					Error:     err.Error(),
					LatencyMS: latency.Milliseconds(),
				}
				return nil
			}
			results[i] = query.ProviderResult{
				Provider:    p.Name(),
				Succeeded:   true,
				Payload:     payload.Fields,
				LatencyMS:   latency.Milliseconds(),
				CostCredits: payload.CostCredits,
			}
			return nil
		})
	}
	_ = g.Wait()

	return query.NewAggregatedResult(officerID, q, results, summarize(q, results), now)
}

// ownsKey reports whether the confirmation key belongs to the officer, per
// the officerID:cost key format.
func (d *Dispatcher) ownsKey(officerID id.OfficerID, key string) bool {
	return strings.HasPrefix(key, officerID.String()+":")
}

func (d *Dispatcher) reject(ctx context.Context, officerID id.OfficerID, rawText string, reason query.RejectReason) query.DispatchOutcome {
	d.emit(ctx, officerID, audit.EventQueryRejected, rawText, string(reason), 0)
	if d.metrics != nil {
		d.metrics.IncrementRejected(string(reason))
	}
	return query.Rejected(reason)
}

func (d *Dispatcher) emit(ctx context.Context, officerID id.OfficerID, action audit.AuditEvent, subject, reason string, delta int) {
	if d.auditPublisher == nil {
		return
	}
	event := audit.Event{
		OfficerID: officerID,
		Action:    string(action),
		Subject:   subject,
		Reason:    reason,
		Delta:     delta,
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := d.auditPublisher.Emit(ctx, event); err != nil && d.logger != nil {
		d.logger.WarnContext(ctx, "failed to emit audit event", "event", string(action), "error", err)
	}
}
