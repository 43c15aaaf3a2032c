// Package mockprovider is a deterministic stand-in for external verifiers.
// Wired in instead of the real clients when the deployment has no vendor
// keys, and used directly by tests that need scriptable provider behavior.
package mockprovider

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/teddybearwork/pickme/internal/provider"
	"github.com/teddybearwork/pickme/internal/query"
)

// Provider returns synthetic records derived from the query value, so the
// same input always yields the same output.
type Provider struct {
	name string
	cost int
	err  error
}

type Option func(*Provider)

// WithFailure makes every Lookup return err.
func WithFailure(err error) Option {
	return func(p *Provider) {
		p.err = err
	}
}

func New(name string, cost int, opts ...Option) *Provider {
	p := &Provider{name: name, cost: cost}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Lookup(_ context.Context, q query.Query) (provider.Payload, error) {
	if p.err != nil {
		return provider.Payload{}, p.err
	}

	h := fnv.New32a()
	h.Write([]byte(q.NormalizedValue))
	seed := h.Sum32()

	return provider.Payload{
		Fields: map[string]string{
			"record_id": fmt.Sprintf("%s-%08x", p.name, seed),
			"name":      fmt.Sprintf("Subject %04d", seed%10000),
			"region":    regions[seed%uint32(len(regions))],
			"verified":  "true",
		},
		CostCredits: p.cost,
	}, nil
}

var regions = []string{"Chennai", "Mumbai", "Delhi", "Bengaluru", "Kolkata", "Hyderabad"}
