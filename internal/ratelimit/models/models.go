// Package models holds the rate limit decision types.
package models

import "time"

// Decision is the outcome of one admission check against an officer's
// hourly query budget.
type Decision struct {
	Allowed   bool
	Remaining int
	Limit     int
	ResetAt   time.Time
}
