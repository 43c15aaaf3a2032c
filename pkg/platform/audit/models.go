package audit

import (
	"time"

	id "github.com/teddybearwork/pickme/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	OfficerID id.OfficerID
	Action    string
	Subject   string // what was acted on: normalized query value, key, transaction id
	Reason    string
	Delta     int // credit delta for ledger events, 0 otherwise
	RequestID string
}

type AuditEvent string

const (
	// Dispatch events
	EventQuerySubmitted    AuditEvent = "query_submitted"
	EventQueryRejected     AuditEvent = "query_rejected"
	EventQueryCompleted    AuditEvent = "query_completed"
	EventOfferCreated      AuditEvent = "confirmation_offered"
	EventOfferConfirmed    AuditEvent = "confirmation_confirmed"
	EventOfferCancelled    AuditEvent = "confirmation_cancelled"
	EventOfferExpired      AuditEvent = "confirmation_expired"
	EventRateLimitHit      AuditEvent = "rate_limit_exceeded"
	EventProviderFailed    AuditEvent = "provider_failed"
	EventDebitUnreconciled AuditEvent = "debit_unreconciled"

	// Ledger events
	EventCreditsDebited AuditEvent = "credits_debited"
	EventCreditsAdded   AuditEvent = "credits_added"
)
