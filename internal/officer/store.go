package officer

import (
	"context"

	id "github.com/teddybearwork/pickme/pkg/domain"
)

// Store persists officer accounts. Balance mutations are atomic at the store
// level so concurrent paid dispatches can never double-spend: DebitCredits
// re-checks the balance inside the same critical section that decrements it.
type Store interface {
	// FindByID returns the officer or sentinel.ErrNotFound.
	FindByID(ctx context.Context, officerID id.OfficerID) (*Officer, error)

	// Save inserts or replaces the officer record.
	Save(ctx context.Context, o *Officer) error

	// DebitCredits atomically subtracts amount from the balance and returns
	// the updated officer. Returns sentinel.ErrInsufficientCredits when the
	// balance cannot cover the amount; the balance is left untouched.
	DebitCredits(ctx context.Context, officerID id.OfficerID, amount int) (*Officer, error)

	// AddCredits atomically adds amount to the balance and to the lifetime
	// total, returning the updated officer.
	AddCredits(ctx context.Context, officerID id.OfficerID, amount int) (*Officer, error)
}
