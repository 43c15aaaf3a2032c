package httptransport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/teddybearwork/pickme/internal/credits"
	"github.com/teddybearwork/pickme/internal/officer"
	"github.com/teddybearwork/pickme/internal/query"
	"github.com/teddybearwork/pickme/internal/request"
	id "github.com/teddybearwork/pickme/pkg/domain"
	dErrors "github.com/teddybearwork/pickme/pkg/domain-errors"
	"github.com/teddybearwork/pickme/pkg/platform/httputil"
	"github.com/teddybearwork/pickme/pkg/requestcontext"
)

// DispatchService defines the dispatch operations the transport exposes.
type DispatchService interface {
	Submit(ctx context.Context, officerID id.OfficerID, rawText string) (query.DispatchOutcome, error)
	Confirm(ctx context.Context, officerID id.OfficerID, key string) (query.DispatchOutcome, error)
	Cancel(ctx context.Context, officerID id.OfficerID, key string) error
}

// CreditService defines the ledger operations the transport exposes.
type CreditService interface {
	Credit(ctx context.Context, officerID id.OfficerID, amount int, action credits.Action, description string) (*credits.Transaction, error)
	History(ctx context.Context, officerID id.OfficerID, limit int) ([]*credits.Transaction, error)
}

// Handler wires the query and officer endpoints to their services.
type Handler struct {
	dispatcher DispatchService
	ledger     CreditService
	officers   officer.Store
	results    request.Store
	logger     *slog.Logger
}

// New constructs the HTTP handler with its dependencies.
func New(dispatcher DispatchService, ledger CreditService, officers officer.Store, results request.Store, logger *slog.Logger) (*Handler, error) {
	if dispatcher == nil {
		return nil, errors.New("dispatch service is required")
	}
	if ledger == nil {
		return nil, errors.New("credit service is required")
	}
	if officers == nil {
		return nil, errors.New("officer store is required")
	}
	if results == nil {
		return nil, errors.New("result store is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Handler{
		dispatcher: dispatcher,
		ledger:     ledger,
		officers:   officers,
		results:    results,
		logger:     logger,
	}, nil
}

// HandleHealth handles GET /healthz.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// authenticatedOfficer pulls the officer ID the auth middleware stashed in
// context. A zero ID means the route was mounted without RequireAuth.
func (h *Handler) authenticatedOfficer(w http.ResponseWriter, r *http.Request) (id.OfficerID, bool) {
	officerID := requestcontext.OfficerID(r.Context())
	if officerID.IsNil() {
		h.logger.ErrorContext(r.Context(), "officer ID missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.OfficerID{}, false
	}
	return officerID, true
}
