// Package domain holds typed identifiers shared across features. Wrapping
// uuid.UUID in distinct named types makes cross-entity ID mixups a compile
// error instead of a data corruption bug.
package domain

import (
	"github.com/google/uuid"

	dErrors "github.com/teddybearwork/pickme/pkg/domain-errors"
)

// OfficerID identifies a registered officer.
type OfficerID uuid.UUID

// RequestID identifies a single dispatched query request.
type RequestID uuid.UUID

// TransactionID identifies a credit ledger entry.
type TransactionID uuid.UUID

func (id OfficerID) String() string     { return uuid.UUID(id).String() }
func (id RequestID) String() string     { return uuid.UUID(id).String() }
func (id TransactionID) String() string { return uuid.UUID(id).String() }

func (id OfficerID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id RequestID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// NewOfficerID generates a fresh officer ID.
func NewOfficerID() OfficerID { return OfficerID(uuid.New()) }

// NewRequestID generates a fresh request ID.
func NewRequestID() RequestID { return RequestID(uuid.New()) }

// NewTransactionID generates a fresh ledger entry ID.
func NewTransactionID() TransactionID { return TransactionID(uuid.New()) }

// ParseOfficerID validates and converts a string into an OfficerID.
// IDs must be valid, non-empty, non-nil UUIDs.
func ParseOfficerID(s string) (OfficerID, error) {
	u, err := parse(s)
	if err != nil {
		return OfficerID{}, err
	}
	return OfficerID(u), nil
}

// ParseRequestID validates and converts a string into a RequestID.
func ParseRequestID(s string) (RequestID, error) {
	u, err := parse(s)
	if err != nil {
		return RequestID{}, err
	}
	return RequestID(u), nil
}

func parse(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	if len(s) > 64 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id too long")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}
