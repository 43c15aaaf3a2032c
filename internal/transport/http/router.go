// Package httptransport is the thin HTTP layer. Handlers parse, delegate to
// domain services, and map outcomes to JSON; business rules live below.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teddybearwork/pickme/internal/jwtauth"
	adminmw "github.com/teddybearwork/pickme/pkg/platform/middleware/admin"
	"github.com/teddybearwork/pickme/pkg/platform/middleware/recovery"
	"github.com/teddybearwork/pickme/pkg/platform/middleware/requestid"
	"github.com/teddybearwork/pickme/pkg/platform/middleware/requesttime"
)

// NewRouter mounts every endpoint: public health and metrics, officer-facing
// dispatch and read models behind JWT auth, and token-guarded admin routes.
func NewRouter(h *Handler, jwtService *jwtauth.Service, adminToken string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(recovery.Middleware(logger))
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", h.HandleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Middleware(jwtService))
		r.Post("/api/query", h.HandleSubmit)
		r.Post("/api/query/confirm", h.HandleConfirm)
		r.Post("/api/query/cancel", h.HandleCancel)
		r.Get("/api/query/history", h.HandleQueryHistory)
		r.Get("/api/officer/me", h.HandleOfficerStatus)
		r.Get("/api/credits/history", h.HandleCreditHistory)
	})

	r.Group(func(r chi.Router) {
		r.Use(adminmw.RequireToken(adminToken, logger))
		r.Post("/api/credits/add", h.HandleAddCredits)
	})

	return r
}
