package credits

import (
	"context"

	id "github.com/teddybearwork/pickme/pkg/domain"
)

// Store persists the transaction log. Append-only: entries are never updated
// or deleted.
type Store interface {
	Append(ctx context.Context, tx *Transaction) error

	// ListByOfficer returns the officer's entries newest first, capped at
	// limit (0 means no cap).
	ListByOfficer(ctx context.Context, officerID id.OfficerID, limit int) ([]*Transaction, error)
}
