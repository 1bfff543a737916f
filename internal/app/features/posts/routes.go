// internal/app/features/posts/routes.go
package posts

import (
	"github.com/dalemusser/posthub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the admin post endpoints. Every route requires an admin.
func Routes(h *Handler, am *auth.Manager) chi.Router {
	r := chi.NewRouter()
	r.Use(am.RequireAdmin(h.Log))

	r.Post("/create-post", h.HandleCreate)
	r.Get("/allPosts", h.ServeList)
	r.Get("/getById/{id}", h.ServePost)
	r.Put("/update/{id}", h.HandleUpdate)
	r.Delete("/delete/{id}", h.HandleDelete)
	r.Put("/like/{id}", h.HandleLike)
	r.Put("/dislike/{id}", h.HandleDislike)
	r.Put("/comment/{id}", h.HandleComment)
	r.Delete("/delete/{postId}/{commentId}", h.HandleDeleteComment)
	r.Get("/exportPost", h.ServeExportPosts)
	r.Get("/exportSinglePost/{id}", h.ServeExportPost)

	return r
}
