package httptransport

import (
	"net/http"

	"github.com/teddybearwork/pickme/pkg/platform/httputil"
	"github.com/teddybearwork/pickme/pkg/requestcontext"
)

// HandleAddCredits handles POST /api/credits/add requests. Admin only: the
// router guards this route with the operator token.
func (h *Handler) HandleAddCredits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.Decode[AddCreditsRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	tx, err := h.ledger.Credit(ctx, req.ParsedOfficerID(), req.Amount, req.ParsedAction(), req.Description)
	if err != nil {
		h.logger.ErrorContext(ctx, "credit grant failed",
			"request_id", requestID,
			"officer_id", req.OfficerID,
			"amount", req.Amount,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "credits granted",
		"request_id", requestID,
		"officer_id", req.OfficerID,
		"action", string(req.ParsedAction()),
		"amount", req.Amount,
		"new_balance", tx.NewBalance,
	)
	httputil.WriteJSON(w, http.StatusOK, FromTransaction(tx))
}
