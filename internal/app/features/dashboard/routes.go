// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/posthub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes wires the dashboard feature under whatever mount point the
// top-level router chooses (e.g., "/v1/dashboard"). Every endpoint
// requires an admin.
func Routes(h *Handler, am *auth.Manager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(am.RequireAdmin(h.Log))

		pr.Get("/summary", h.ServeSummary)
		pr.Get("/userActions", h.ServeUserActions)
		pr.Get("/postActivities", h.ServePostActivities)
		pr.Get("/topCategories", h.ServeTopCategories)
		pr.Get("/topContributors", h.ServeTopContributors)
		pr.Get("/signupsByCountry", h.ServeSignupsByCountry)
		pr.Get("/userPostCorrelation", h.ServeUserPostCorrelation)
	})

	return r
}
