// Package ports defines the storage interface for the ratelimit module.
package ports

import (
	"context"
	"time"

	id "github.com/teddybearwork/pickme/pkg/domain"
)

// WindowStore manages per-officer counters keyed by hour bucket. Stores are
// pure I/O: the service owns bucket computation and limit comparison.
type WindowStore interface {
	// Increment adds one to the officer's counter for the given bucket and
	// returns the post-increment count.
	Increment(ctx context.Context, officerID id.OfficerID, bucket time.Time) (int, error)

	// Decrement undoes one increment. Used to roll back an admission that
	// overshot the limit.
	Decrement(ctx context.Context, officerID id.OfficerID, bucket time.Time) error

	// Count returns the current counter for the bucket without mutating it.
	Count(ctx context.Context, officerID id.OfficerID, bucket time.Time) (int, error)

	// Reset clears the counter for the bucket.
	Reset(ctx context.Context, officerID id.OfficerID, bucket time.Time) error
}
