package httptransport

import (
	"strings"

	"github.com/teddybearwork/pickme/internal/credits"
	id "github.com/teddybearwork/pickme/pkg/domain"
	dErrors "github.com/teddybearwork/pickme/pkg/domain-errors"
)

const maxQueryLength = 500

// SubmitRequest is the HTTP request body for POST /api/query.
type SubmitRequest struct {
	Text string `json:"text"`
}

// Validate trims and bounds the raw input.
func (r *SubmitRequest) Validate() error {
	r.Text = strings.TrimSpace(r.Text)
	if r.Text == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "text is required")
	}
	if len(r.Text) > maxQueryLength {
		return dErrors.New(dErrors.CodeInvalidInput, "text must be at most 500 characters")
	}
	return nil
}

// ConfirmRequest is the HTTP request body for POST /api/query/confirm and
// POST /api/query/cancel.
type ConfirmRequest struct {
	ConfirmationKey string `json:"confirmation_key"`
}

func (r *ConfirmRequest) Validate() error {
	r.ConfirmationKey = strings.TrimSpace(r.ConfirmationKey)
	if r.ConfirmationKey == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "confirmation_key is required")
	}
	return nil
}

// AddCreditsRequest is the HTTP request body for POST /api/credits/add.
type AddCreditsRequest struct {
	OfficerID   string `json:"officer_id"`
	Amount      int    `json:"amount"`
	Action      string `json:"action"`
	Description string `json:"description"`

	parsedOfficerID id.OfficerID
	parsedAction    credits.Action
}

// Validate parses the officer ID and ledger action. An empty action defaults
// to a top-up.
func (r *AddCreditsRequest) Validate() error {
	officerID, err := id.ParseOfficerID(strings.TrimSpace(r.OfficerID))
	if err != nil {
		return err
	}
	r.parsedOfficerID = officerID

	if r.Amount <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "amount must be positive")
	}

	action := credits.Action(strings.TrimSpace(r.Action))
	if action == "" {
		action = credits.ActionTopUp
	}
	switch action {
	case credits.ActionRenewal, credits.ActionTopUp, credits.ActionRefund, credits.ActionAdjustment:
	default:
		return dErrors.New(dErrors.CodeInvalidInput, "action must be one of renewal, top_up, refund, adjustment")
	}
	r.parsedAction = action
	return nil
}

// ParsedOfficerID returns the validated officer ID.
func (r *AddCreditsRequest) ParsedOfficerID() id.OfficerID { return r.parsedOfficerID }

// ParsedAction returns the validated ledger action.
func (r *AddCreditsRequest) ParsedAction() credits.Action { return r.parsedAction }
