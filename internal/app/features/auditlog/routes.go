// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/posthub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts all audit log routes under the path where this
// router is mounted (typically "/v1/audit" from bootstrap).
//
// Access is restricted to admins.
func Routes(h *Handler, am *auth.Manager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(am.RequireAdmin(h.Log))

		pr.Get("/", h.ServeList)
	})

	return r
}
