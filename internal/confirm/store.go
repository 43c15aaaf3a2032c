package confirm

import (
	"context"
	"time"
)

// Store holds outstanding offers. Resolve is the only consumption path and
// must be atomic: two concurrent resolves of the same key must not both
// succeed.
type Store interface {
	// Offer stores a pending confirmation, overwriting any live offer under
	// the same key.
	Offer(ctx context.Context, pending *PendingConfirmation) error

	// Resolve atomically fetches and deletes the offer. Returns
	// sentinel.ErrNotFound for unknown keys and sentinel.ErrExpired for
	// offers past their deadline (the expired offer is deleted too).
	Resolve(ctx context.Context, key string, now time.Time) (*PendingConfirmation, error)

	// Expire garbage-collects offers past their deadline, returning how many
	// were removed.
	Expire(ctx context.Context, now time.Time) (int, error)
}
