// Package credits implements the prepaid credit ledger: a pure cost table,
// balance checks, and an append-only transaction log with before/after
// balances so every balance movement is auditable.
package credits

import (
	"time"

	id "github.com/teddybearwork/pickme/pkg/domain"
)

// Action classifies a ledger entry.
type Action string

const (
	ActionRenewal    Action = "renewal"
	ActionTopUp      Action = "top_up"
	ActionRefund     Action = "refund"
	ActionAdjustment Action = "adjustment"
	ActionDeduction  Action = "deduction"
)

// Transaction is one immutable ledger entry. Amount is a positive magnitude;
// the action says which direction the balance moved.
type Transaction struct {
	ID              id.TransactionID
	OfficerID       id.OfficerID
	RequestID       *id.RequestID // set for deductions tied to a dispatched query
	Action          Action
	Amount          int
	PreviousBalance int
	NewBalance      int
	Description     string
	CreatedAt       time.Time
}
