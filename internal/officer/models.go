// Package officer holds the officer account model: identity, standing,
// prepaid credit balance, and per-account dispatch limits.
package officer

import (
	"strings"
	"time"

	id "github.com/teddybearwork/pickme/pkg/domain"
	dErrors "github.com/teddybearwork/pickme/pkg/domain-errors"
)

// Status is the account standing. Only active officers may dispatch queries.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusPending   Status = "pending"
)

// DefaultRateLimitPerHour applies when an account has no explicit limit.
const DefaultRateLimitPerHour = 100

// Officer is a registered account. CreditsRemaining is the prepaid balance
// spendable on paid lookups; TotalCredits tracks lifetime grants.
type Officer struct {
	ID               id.OfficerID
	Name             string
	BadgeNumber      string
	Email            string
	Status           Status
	CreditsRemaining int
	TotalCredits     int
	RateLimitPerHour int
	ProAccessEnabled bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// New creates an officer in pending standing with zero balance and the
// default rate limit. Activation and credit grants happen separately.
func New(name, badgeNumber, email string, now time.Time) (*Officer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "officer name is required")
	}
	if strings.TrimSpace(badgeNumber) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "badge number is required")
	}
	return &Officer{
		ID:               id.NewOfficerID(),
		Name:             name,
		BadgeNumber:      strings.TrimSpace(badgeNumber),
		Email:            strings.TrimSpace(email),
		Status:           StatusPending,
		RateLimitPerHour: DefaultRateLimitPerHour,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// IsActive reports whether the account may dispatch queries at all.
func (o *Officer) IsActive() bool {
	return o.Status == StatusActive
}

// EffectiveRateLimit returns the per-hour query cap, falling back to the
// default when the stored value is unset or nonsensical.
func (o *Officer) EffectiveRateLimit() int {
	if o.RateLimitPerHour <= 0 {
		return DefaultRateLimitPerHour
	}
	return o.RateLimitPerHour
}
