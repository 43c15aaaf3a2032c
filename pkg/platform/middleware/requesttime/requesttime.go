// Package requesttime pins a single "now" per HTTP request. Every timestamp
// taken during the request (audit entries, ledger rows, result completion)
// then agrees, which keeps ordering assertions and logs coherent.
package requesttime

import (
	"net/http"
	"time"

	"github.com/teddybearwork/pickme/pkg/requestcontext"
)

// Middleware captures the wall clock at request start and stores it in the
// context for downstream code to read via requestcontext.Now.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
