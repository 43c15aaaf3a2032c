// Package query defines the core value types flowing through the dispatcher:
// typed queries, per-provider results, and aggregated outcomes.
package query

import (
	"time"

	"github.com/google/uuid"

	id "github.com/teddybearwork/pickme/pkg/domain"
	dErrors "github.com/teddybearwork/pickme/pkg/domain-errors"
)

// Kind identifies what a query is looking up.
type Kind string

const (
	KindPhone          Kind = "phone"
	KindEmail          Kind = "email"
	KindAadhaar        Kind = "aadhaar"
	KindPAN            Kind = "pan"
	KindDrivingLicense Kind = "driving_license"
	KindVoterID        Kind = "voter_id"
	KindUsername       Kind = "username"
	KindGeneral        Kind = "general"
)

// IsValid checks if the kind is one of the supported enum values.
func (k Kind) IsValid() bool {
	switch k {
	case KindPhone, KindEmail, KindAadhaar, KindPAN, KindDrivingLicense,
		KindVoterID, KindUsername, KindGeneral:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }

// Tier separates open-data lookups from credit-charged vendor lookups.
type Tier string

const (
	TierFree Tier = "free"
	TierPaid Tier = "paid"
)

// Query is an immutable classified lookup. Created by the classifier and
// never mutated afterwards.
type Query struct {
	Kind            Kind
	RawText         string
	NormalizedValue string
	Tier            Tier
	RequestedAt     time.Time
}

// NewQuery validates invariants at construction so downstream code can trust
// the value.
func NewQuery(kind Kind, rawText, normalized string, tier Tier, requestedAt time.Time) (Query, error) {
	if !kind.IsValid() {
		return Query{}, dErrors.New(dErrors.CodeInvariantViolation, "invalid query kind")
	}
	if normalized == "" {
		return Query{}, dErrors.New(dErrors.CodeInvariantViolation, "normalized value cannot be empty")
	}
	if tier != TierFree && tier != TierPaid {
		return Query{}, dErrors.New(dErrors.CodeInvariantViolation, "invalid query tier")
	}
	return Query{
		Kind:            kind,
		RawText:         rawText,
		NormalizedValue: normalized,
		Tier:            tier,
		RequestedAt:     requestedAt,
	}, nil
}

// ProviderResult is the outcome of one provider call. Providers that fail
// report zero cost: work that produced nothing is never charged.
type ProviderResult struct {
	Provider    string            `json:"provider"`
	Succeeded   bool              `json:"succeeded"`
	Payload     map[string]string `json:"payload,omitempty"`
	Error       string            `json:"error,omitempty"`
	LatencyMS   int64             `json:"latency_ms"`
	CostCredits int               `json:"cost_credits"`
}

// Status summarizes an aggregated result.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusPartialSuccess Status = "partial_success"
	StatusFailed         Status = "failed"
)

// AggregatedResult is the user-facing outcome of one Execute call. Immutable
// after creation; provider results are held in call order so output is
// reproducible across runs.
type AggregatedResult struct {
	ID              id.RequestID     `json:"id"`
	OfficerID       id.OfficerID     `json:"officer_id"`
	Query           Query            `json:"query"`
	Status          Status           `json:"status"`
	ProviderResults []ProviderResult `json:"provider_results"`
	CreditsUsed     int              `json:"credits_used"`
	SummaryText     string           `json:"summary_text"`
	CompletedAt     time.Time        `json:"completed_at"`
}

// NewAggregatedResult derives status and credits from the ordered provider
// results. The first-listed provider is mandatory: its failure downgrades an
// otherwise successful result to partial.
func NewAggregatedResult(officerID id.OfficerID, q Query, results []ProviderResult, summary string, completedAt time.Time) AggregatedResult {
	status := StatusFailed
	credits := 0
	anySucceeded := false
	for _, r := range results {
		if r.Succeeded {
			anySucceeded = true
			credits += r.CostCredits
		}
	}
	if anySucceeded {
		if len(results) > 0 && !results[0].Succeeded {
			status = StatusPartialSuccess
		} else {
			status = StatusSuccess
		}
	}
	return AggregatedResult{
		ID:              id.RequestID(uuid.New()),
		OfficerID:       officerID,
		Query:           q,
		Status:          status,
		ProviderResults: results,
		CreditsUsed:     credits,
		SummaryText:     summary,
		CompletedAt:     completedAt,
	}
}

// Decision discriminates the dispatch outcome variants.
type Decision string

const (
	DecisionRejected          Decision = "rejected"
	DecisionNeedsConfirmation Decision = "needs_confirmation"
	DecisionCompleted         Decision = "completed"
)

// RejectReason enumerates why a submission was refused.
type RejectReason string

const (
	ReasonAccountInactive       RejectReason = "account_inactive"
	ReasonUnrecognized          RejectReason = "unrecognized"
	ReasonRateLimited           RejectReason = "rate_limited"
	ReasonProAccessDisabled     RejectReason = "pro_access_disabled"
	ReasonInsufficientCredits   RejectReason = "insufficient_credits"
	ReasonOfferExpiredOrUnknown RejectReason = "offer_expired_or_unknown"
)

// DispatchOutcome is the result of Submit/Confirm/Cancel. Exactly one variant
// is populated, discriminated by Decision.
type DispatchOutcome struct {
	Decision Decision
	Reason   RejectReason // set when Decision == DecisionRejected

	// Set when Decision == DecisionNeedsConfirmation.
	Query           Query
	EstimatedCost   int
	ConfirmationKey string

	// Set when Decision == DecisionCompleted.
	Result *AggregatedResult
}

// Rejected builds a rejection outcome.
func Rejected(reason RejectReason) DispatchOutcome {
	return DispatchOutcome{Decision: DecisionRejected, Reason: reason}
}

// NeedsConfirmation builds a pending-confirmation outcome.
func NeedsConfirmation(q Query, cost int, key string) DispatchOutcome {
	return DispatchOutcome{
		Decision:        DecisionNeedsConfirmation,
		Query:           q,
		EstimatedCost:   cost,
		ConfirmationKey: key,
	}
}

// Completed builds a completed outcome.
func Completed(result *AggregatedResult) DispatchOutcome {
	return DispatchOutcome{Decision: DecisionCompleted, Result: result}
}
