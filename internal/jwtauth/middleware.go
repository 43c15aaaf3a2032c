package jwtauth

import (
	"net/http"
	"strings"

	dErrors "github.com/teddybearwork/pickme/pkg/domain-errors"
	"github.com/teddybearwork/pickme/pkg/platform/httputil"
	"github.com/teddybearwork/pickme/pkg/requestcontext"
)

// Middleware authenticates requests with a Bearer token and stashes the
// officer ID in the request context for handlers downstream.
func Middleware(service *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			officerID, err := service.ExtractOfficerID(token)
			if err != nil {
				httputil.WriteError(w, err)
				return
			}

			ctx := requestcontext.WithOfficerID(r.Context(), officerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
