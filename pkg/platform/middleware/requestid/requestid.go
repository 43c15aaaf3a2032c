// Package requestid assigns a correlation ID to every request so log lines
// and audit events from one dispatch can be stitched back together.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/teddybearwork/pickme/pkg/requestcontext"
)

const headerName = "X-Request-ID"

// Middleware honors an inbound X-Request-ID when present, otherwise mints a
// fresh UUID. The chosen ID is echoed on the response and placed in context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerName)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}
		w.Header().Set(headerName, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
