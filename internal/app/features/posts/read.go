// internal/app/features/posts/read.go
package posts

import (
	"net/http"

	uierrors "github.com/dalemusser/posthub/internal/app/features/errors"
	"github.com/dalemusser/posthub/internal/app/system/respond"
	"github.com/dalemusser/posthub/internal/app/system/timeouts"
)

// ServeList returns every post with its user references joined.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "list posts")
	defer cancel()

	posts, err := h.Details.List(ctx)
	if err != nil {
		h.ErrLog.Respond(w, r, "list posts", uierrors.Store(err))
		return
	}
	respond.OK(w, listResponse{Success: true, Count: len(posts), Data: posts})
}

// ServePost returns one joined post.
func (h *Handler) ServePost(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id", msgPostNotFound)
	if err != nil {
		h.ErrLog.Respond(w, r, "get post", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "get post")
	defer cancel()

	p, err := h.Details.Get(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, "get post", storeErr(err))
		return
	}
	respond.OK(w, detailResponse{Success: true, Message: msgRetrieved, Data: *p})
}
