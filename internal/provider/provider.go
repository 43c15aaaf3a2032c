// Package provider defines the lookup interface implemented by data sources:
// the free open-data collector and the paid external verifiers.
package provider

import (
	"context"

	"github.com/teddybearwork/pickme/internal/query"
)

// Payload is the successful output of one provider call. CostCredits is the
// provider's reported charge for this call; free sources report 0.
type Payload struct {
	Fields      map[string]string
	CostCredits int
}

// Provider performs one lookup against a single data source. Implementations
// return an error for failed work and must never report a cost alongside an
// error.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, q query.Query) (Payload, error)
}

// Routing maps a query's kind and tier onto its ordered provider list. Free
// queries route to open-data collectors, paid ones to vendor verifiers.
// Order matters: the first provider is mandatory for a full success, and
// results are recorded in this order.
type Routing struct {
	Free map[query.Kind][]Provider
	Paid map[query.Kind][]Provider
}

// For returns the providers applicable to a query, in priority order.
func (r Routing) For(kind query.Kind, tier query.Tier) []Provider {
	if tier == query.TierPaid {
		return r.Paid[kind]
	}
	return r.Free[kind]
}
