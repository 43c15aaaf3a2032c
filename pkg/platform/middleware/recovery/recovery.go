// Package recovery converts handler panics into 500 responses.
package recovery

import (
	"log/slog"
	"net/http"

	dErrors "github.com/teddybearwork/pickme/pkg/domain-errors"
	"github.com/teddybearwork/pickme/pkg/platform/httputil"
	"github.com/teddybearwork/pickme/pkg/requestcontext"
)

// Middleware recovers from a panic in any downstream handler, logs it with
// the request ID, and replies with a generic internal error.
func Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					ctx := r.Context()
					if logger != nil {
						logger.ErrorContext(ctx, "panic recovered in handler",
							"request_id", requestcontext.RequestID(ctx),
							"path", r.URL.Path,
							"panic", rec,
						)
					}
					httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "internal error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
