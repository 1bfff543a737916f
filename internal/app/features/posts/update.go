// internal/app/features/posts/update.go
package posts

import (
	"net/http"
	"slices"
	"strings"

	poststore "github.com/dalemusser/posthub/internal/app/store/posts"
	"github.com/dalemusser/posthub/internal/app/system/formutil"
	"github.com/dalemusser/posthub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/posthub/internal/app/system/normalize"
	"github.com/dalemusser/posthub/internal/app/system/respond"
	"github.com/dalemusser/posthub/internal/app/system/timeouts"
)

type updateInput struct {
	Title      string         `json:"title"`
	Desc       string         `json:"desc"`
	Categories *formutil.List `json:"categories"`
	OldImages  *formutil.List `json:"oldImages"`
}

// toUpdate builds the store update. Blank title and desc leave the stored
// values alone.
func (in updateInput) toUpdate() poststore.Update {
	var upd poststore.Update
	if t := htmlsanitize.Sanitize(strings.TrimSpace(in.Title)); t != "" {
		upd.Title = &t
	}
	if d := htmlsanitize.Sanitize(strings.TrimSpace(in.Desc)); d != "" {
		upd.Desc = &d
	}
	if in.Categories != nil {
		cats := normalize.Categories(*in.Categories)
		upd.Categories = &cats
	}
	return upd
}

// keptImages returns the images that survive an edit: those of current
// listed in oldImages, or all of current when oldImages was not sent.
func keptImages(current []string, oldImages *formutil.List) []string {
	if oldImages == nil {
		return slices.Clone(current)
	}
	kept := []string{}
	for _, img := range *oldImages {
		if slices.Contains(current, img) && !slices.Contains(kept, img) {
			kept = append(kept, img)
		}
	}
	return kept
}

// HandleUpdate edits a post. Stored images not kept are deleted after the
// update is saved.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(w, r, h)
	if !ok {
		return
	}
	id, err := objectIDParam(r, "id", msgPostNotFound)
	if err != nil {
		h.ErrLog.Respond(w, r, "update post", err)
		return
	}
	var in updateInput
	if err := bind(w, r, &in); err != nil {
		h.ErrLog.Respond(w, r, "update post", err)
		return
	}
	files, err := imageFiles(r)
	if err != nil {
		h.ErrLog.Respond(w, r, "update post", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "update post")
	defer cancel()

	current, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, "update post", storeErr(err))
		return
	}
	added, err := h.saveImages(ctx, files)
	if err != nil {
		h.ErrLog.Respond(w, r, "update post", err)
		return
	}

	upd := in.toUpdate()
	images := append(keptImages(current.Images, in.OldImages), added...)
	upd.Images = &images

	before, after, err := h.Posts.Update(ctx, id, upd)
	if err != nil {
		h.removeImages(ctx, added)
		h.ErrLog.Respond(w, r, "update post", storeErr(err))
		return
	}
	h.removeImages(ctx, dropped(before.Images, images))
	h.AuditLog.PostUpdated(ctx, r, admin.ID, id)

	respond.OK(w, postResponse{Success: true, Message: msgUpdated, Data: *after})
}
