package httptransport

import (
	"net/http"
	"time"

	"github.com/teddybearwork/pickme/internal/query"
	"github.com/teddybearwork/pickme/pkg/platform/httputil"
	"github.com/teddybearwork/pickme/pkg/requestcontext"
)

// HandleSubmit handles POST /api/query requests.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	officerID, ok := h.authenticatedOfficer(w, r)
	if !ok {
		return
	}

	req, ok := httputil.Decode[SubmitRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	outcome, err := h.dispatcher.Submit(ctx, officerID, req.Text)
	if err != nil {
		h.logger.ErrorContext(ctx, "query submission failed",
			"request_id", requestID,
			"officer_id", officerID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "query submitted",
		"request_id", requestID,
		"officer_id", officerID.String(),
		"decision", string(outcome.Decision),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, statusForOutcome(outcome), FromOutcome(outcome))
}

// HandleConfirm handles POST /api/query/confirm requests.
func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	officerID, ok := h.authenticatedOfficer(w, r)
	if !ok {
		return
	}

	req, ok := httputil.Decode[ConfirmRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	outcome, err := h.dispatcher.Confirm(ctx, officerID, req.ConfirmationKey)
	if err != nil {
		h.logger.ErrorContext(ctx, "query confirmation failed",
			"request_id", requestID,
			"officer_id", officerID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "query confirmed",
		"request_id", requestID,
		"officer_id", officerID.String(),
		"decision", string(outcome.Decision),
	)
	httputil.WriteJSON(w, statusForOutcome(outcome), FromOutcome(outcome))
}

// HandleCancel handles POST /api/query/cancel requests.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	officerID, ok := h.authenticatedOfficer(w, r)
	if !ok {
		return
	}

	req, ok := httputil.Decode[ConfirmRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.dispatcher.Cancel(ctx, officerID, req.ConfirmationKey); err != nil {
		h.logger.WarnContext(ctx, "query cancellation failed",
			"request_id", requestID,
			"officer_id", officerID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "query cancelled",
		"request_id", requestID,
		"officer_id", officerID.String(),
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleQueryHistory handles GET /api/query/history requests.
func (h *Handler) HandleQueryHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	officerID, ok := h.authenticatedOfficer(w, r)
	if !ok {
		return
	}

	limit := queryLimit(r, 10, 100)
	results, err := h.results.ListByOfficer(ctx, officerID, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list query history",
			"request_id", requestcontext.RequestID(ctx),
			"officer_id", officerID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	items := make([]*ResultResponse, len(results))
	for i, result := range results {
		items[i] = FromResult(result)
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"results": items})
}

// statusForOutcome maps a dispatch decision to an HTTP status. Rejections are
// domain outcomes, not transport errors, but still signal the caller via 4xx.
func statusForOutcome(outcome query.DispatchOutcome) int {
	if outcome.Decision != query.DecisionRejected {
		return http.StatusOK
	}
	switch outcome.Reason {
	case query.ReasonRateLimited:
		return http.StatusTooManyRequests
	case query.ReasonInsufficientCredits:
		return http.StatusPaymentRequired
	case query.ReasonAccountInactive, query.ReasonProAccessDisabled:
		return http.StatusForbidden
	case query.ReasonOfferExpiredOrUnknown:
		return http.StatusNotFound
	default:
		return http.StatusUnprocessableEntity
	}
}
