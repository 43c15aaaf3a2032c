// Package request persists completed query results so officers can review
// their dispatch history.
package request

import (
	"context"

	"github.com/teddybearwork/pickme/internal/query"
	id "github.com/teddybearwork/pickme/pkg/domain"
)

// Store persists aggregated results. Results are immutable once saved.
type Store interface {
	Save(ctx context.Context, result *query.AggregatedResult) error

	// FindByID returns the result or sentinel.ErrNotFound.
	FindByID(ctx context.Context, requestID id.RequestID) (*query.AggregatedResult, error)

	// ListByOfficer returns the officer's results newest first, capped at
	// limit (0 means no cap).
	ListByOfficer(ctx context.Context, officerID id.OfficerID, limit int) ([]*query.AggregatedResult, error)
}
