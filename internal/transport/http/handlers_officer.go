package httptransport

import (
	"net/http"
	"strconv"

	"github.com/teddybearwork/pickme/pkg/platform/httputil"
	"github.com/teddybearwork/pickme/pkg/requestcontext"
)

// historyScanLimit bounds how many recent results the queries-today counter
// scans. Officers dispatching more than this in a day just see the cap.
const historyScanLimit = 500

// HandleOfficerStatus handles GET /api/officer/me requests.
func (h *Handler) HandleOfficerStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	officerID, ok := h.authenticatedOfficer(w, r)
	if !ok {
		return
	}

	o, err := h.officers.FindByID(ctx, officerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load officer",
			"request_id", requestcontext.RequestID(ctx),
			"officer_id", officerID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	queriesToday := 0
	now := requestcontext.Now(ctx)
	results, err := h.results.ListByOfficer(ctx, officerID, historyScanLimit)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to count today's queries",
			"officer_id", officerID.String(),
			"error", err,
		)
	} else {
		y, m, d := now.UTC().Date()
		for _, result := range results {
			ry, rm, rd := result.CompletedAt.UTC().Date()
			if ry == y && rm == m && rd == d {
				queriesToday++
			}
		}
	}

	httputil.WriteJSON(w, http.StatusOK, FromOfficer(o, queriesToday))
}

// HandleCreditHistory handles GET /api/credits/history requests.
func (h *Handler) HandleCreditHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	officerID, ok := h.authenticatedOfficer(w, r)
	if !ok {
		return
	}

	limit := queryLimit(r, 20, 100)
	transactions, err := h.ledger.History(ctx, officerID, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list credit history",
			"request_id", requestcontext.RequestID(ctx),
			"officer_id", officerID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	items := make([]TransactionResponse, len(transactions))
	for i, tx := range transactions {
		items[i] = FromTransaction(tx)
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"transactions": items})
}

// queryLimit reads the optional ?limit= parameter, clamped to (0, max].
func queryLimit(r *http.Request, fallback, max int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	if n > max {
		return max
	}
	return n
}
