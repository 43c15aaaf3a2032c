// Package publisher delivers audit events to a store. Emission is synchronous
// and best-effort; callers treat a failed emit as a logging concern, never as
// a reason to abort the guarded operation.
package publisher

import (
	"context"
	"time"

	id "github.com/teddybearwork/pickme/pkg/domain"
	audit "github.com/teddybearwork/pickme/pkg/platform/audit"
)

// Store is the minimal sink the publisher writes to.
type Store interface {
	Append(ctx context.Context, event audit.Event) error
	ListByOfficer(ctx context.Context, officerID id.OfficerID) ([]audit.Event, error)
}

type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

// Emit stamps and persists an audit event.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return p.store.Append(ctx, event)
}

// List returns the audit trail for one officer, oldest first.
func (p *Publisher) List(ctx context.Context, officerID id.OfficerID) ([]audit.Event, error) {
	return p.store.ListByOfficer(ctx, officerID)
}
