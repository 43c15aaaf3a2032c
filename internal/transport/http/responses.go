package httptransport

import (
	"time"

	"github.com/teddybearwork/pickme/internal/credits"
	"github.com/teddybearwork/pickme/internal/officer"
	"github.com/teddybearwork/pickme/internal/query"
)

// OutcomeResponse is the envelope for POST /api/query and /api/query/confirm.
// Exactly one of the variant blocks is populated, discriminated by Decision.
type OutcomeResponse struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason,omitempty"`

	// Populated when the decision is needs_confirmation.
	Kind            string `json:"kind,omitempty"`
	NormalizedValue string `json:"normalized_value,omitempty"`
	EstimatedCost   int    `json:"estimated_cost,omitempty"`
	ConfirmationKey string `json:"confirmation_key,omitempty"`

	// Populated when the decision is completed.
	Result *ResultResponse `json:"result,omitempty"`
}

// ResultResponse is the wire shape of one aggregated query result.
type ResultResponse struct {
	ID              string                   `json:"id"`
	Kind            string                   `json:"kind"`
	NormalizedValue string                   `json:"normalized_value"`
	Tier            string                   `json:"tier"`
	Status          string                   `json:"status"`
	Providers       []ProviderResultResponse `json:"providers"`
	CreditsUsed     int                      `json:"credits_used"`
	Summary         string                   `json:"summary"`
	CompletedAt     time.Time                `json:"completed_at"`
}

// ProviderResultResponse is one provider's slice of a result.
type ProviderResultResponse struct {
	Provider    string            `json:"provider"`
	Succeeded   bool              `json:"succeeded"`
	Payload     map[string]string `json:"payload,omitempty"`
	Error       string            `json:"error,omitempty"`
	LatencyMS   int64             `json:"latency_ms"`
	CostCredits int               `json:"cost_credits"`
}

// FromOutcome converts a dispatch outcome to its wire shape.
func FromOutcome(outcome query.DispatchOutcome) *OutcomeResponse {
	resp := &OutcomeResponse{
		Decision: string(outcome.Decision),
		Reason:   string(outcome.Reason),
	}
	switch outcome.Decision {
	case query.DecisionNeedsConfirmation:
		resp.Kind = string(outcome.Query.Kind)
		resp.NormalizedValue = outcome.Query.NormalizedValue
		resp.EstimatedCost = outcome.EstimatedCost
		resp.ConfirmationKey = outcome.ConfirmationKey
	case query.DecisionCompleted:
		resp.Result = FromResult(outcome.Result)
	}
	return resp
}

// FromResult converts an aggregated result to its wire shape.
func FromResult(result *query.AggregatedResult) *ResultResponse {
	if result == nil {
		return nil
	}
	providers := make([]ProviderResultResponse, len(result.ProviderResults))
	for i, pr := range result.ProviderResults {
		providers[i] = ProviderResultResponse{
			Provider:    pr.Provider,
			Succeeded:   pr.Succeeded,
			Payload:     pr.Payload,
			Error:       pr.Error,
			LatencyMS:   pr.LatencyMS,
			CostCredits: pr.CostCredits,
		}
	}
	return &ResultResponse{
		ID:              result.ID.String(),
		Kind:            string(result.Query.Kind),
		NormalizedValue: result.Query.NormalizedValue,
		Tier:            string(result.Query.Tier),
		Status:          string(result.Status),
		Providers:       providers,
		CreditsUsed:     result.CreditsUsed,
		Summary:         result.SummaryText,
		CompletedAt:     result.CompletedAt,
	}
}

// OfficerStatusResponse is the read model for GET /api/officer/me.
type OfficerStatusResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	BadgeNumber      string `json:"badge_number"`
	Status           string `json:"status"`
	CreditsRemaining int    `json:"credits_remaining"`
	TotalCredits     int    `json:"total_credits"`
	RateLimitPerHour int    `json:"rate_limit_per_hour"`
	ProAccessEnabled bool   `json:"pro_access_enabled"`
	QueriesToday     int    `json:"queries_today"`
}

// FromOfficer builds the status read model.
func FromOfficer(o *officer.Officer, queriesToday int) *OfficerStatusResponse {
	return &OfficerStatusResponse{
		ID:               o.ID.String(),
		Name:             o.Name,
		BadgeNumber:      o.BadgeNumber,
		Status:           string(o.Status),
		CreditsRemaining: o.CreditsRemaining,
		TotalCredits:     o.TotalCredits,
		RateLimitPerHour: o.EffectiveRateLimit(),
		ProAccessEnabled: o.ProAccessEnabled,
		QueriesToday:     queriesToday,
	}
}

// TransactionResponse is the wire shape of one ledger entry.
type TransactionResponse struct {
	ID              string    `json:"id"`
	RequestID       string    `json:"request_id,omitempty"`
	Action          string    `json:"action"`
	Amount          int       `json:"amount"`
	PreviousBalance int       `json:"previous_balance"`
	NewBalance      int       `json:"new_balance"`
	Description     string    `json:"description,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// FromTransaction converts a ledger entry to its wire shape.
func FromTransaction(tx *credits.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:              tx.ID.String(),
		Action:          string(tx.Action),
		Amount:          tx.Amount,
		PreviousBalance: tx.PreviousBalance,
		NewBalance:      tx.NewBalance,
		Description:     tx.Description,
		CreatedAt:       tx.CreatedAt,
	}
	if tx.RequestID != nil {
		resp.RequestID = tx.RequestID.String()
	}
	return resp
}
