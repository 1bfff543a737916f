// internal/app/features/posts/delete.go
package posts

import (
	"net/http"

	"github.com/dalemusser/posthub/internal/app/system/respond"
	"github.com/dalemusser/posthub/internal/app/system/timeouts"
)

// HandleDelete removes a post and, best effort, its stored images.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(w, r, h)
	if !ok {
		return
	}
	id, err := objectIDParam(r, "id", msgPostNotFound)
	if err != nil {
		h.ErrLog.Respond(w, r, "delete post", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete post")
	defer cancel()

	p, err := h.Posts.Delete(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, "delete post", storeErr(err))
		return
	}
	h.removeImages(ctx, p.Images)
	h.AuditLog.PostDeleted(ctx, r, admin.ID, id, p.Title)

	respond.OK(w, messageResponse{Success: true, Message: msgDeleted})
}
