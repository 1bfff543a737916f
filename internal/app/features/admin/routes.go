// internal/app/features/admin/routes.go
package admin

import (
	"github.com/go-chi/chi/v5"
)

// Routes wires the admin feature under whatever mount point the
// top-level router chooses (e.g., "/v1/admin").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Public.
	if h.AllowRegistration {
		r.Post("/register-admin", h.HandleRegisterAdmin)
	}
	r.Post("/login-admin", h.HandleLogin)
	r.Post("/logout", h.HandleLogout)
	r.Post("/register-user", h.HandleRegisterUser)

	// Admin only.
	r.Group(func(pr chi.Router) {
		pr.Use(h.Auth.RequireAdmin(h.Log))

		pr.Get("/admin-profile", h.ServeProfile)
		pr.Post("/create-user", h.HandleCreateUser)
		pr.Get("/allUsers", h.ServeList)
		pr.Get("/getById/{id}", h.ServeUser)
		pr.Put("/update/{id}", h.HandleUpdate)
		pr.Delete("/delete/{id}", h.HandleDelete)
		pr.Get("/exportUser", h.ServeExportUsers)
		pr.Get("/exportSingleUser/{id}", h.ServeExportUser)
	})

	return r
}
