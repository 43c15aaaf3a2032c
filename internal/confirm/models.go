// Package confirm holds the two-step confirmation state for paid queries: an
// offer is created when a paid query passes its balance check and must be
// explicitly confirmed or cancelled before anything executes or is charged.
package confirm

import (
	"fmt"
	"time"

	"github.com/teddybearwork/pickme/internal/query"
	id "github.com/teddybearwork/pickme/pkg/domain"
)

// PendingConfirmation is one outstanding offer. At most one live offer exists
// per (officer, cost) key; a newer identical offer overwrites the older one.
type PendingConfirmation struct {
	Key           string
	OfficerID     id.OfficerID
	Query         query.Query
	EstimatedCost int
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// Key derives the lookup key for an offer. Costs are small bucketed integers,
// so officer plus cost is collision-safe across distinct queries only in the
// last-writer-wins sense the overwrite rule provides.
func Key(officerID id.OfficerID, cost int) string {
	return fmt.Sprintf("%s:%d", officerID.String(), cost)
}

// Expired reports whether the offer is past its deadline at the given time.
func (p *PendingConfirmation) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
