// internal/app/features/posts/create.go
package posts

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/posthub/internal/app/features/errors"
	userstore "github.com/dalemusser/posthub/internal/app/store/users"
	"github.com/dalemusser/posthub/internal/app/system/formutil"
	"github.com/dalemusser/posthub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/posthub/internal/app/system/normalize"
	"github.com/dalemusser/posthub/internal/app/system/respond"
	"github.com/dalemusser/posthub/internal/app/system/timeouts"
	"github.com/dalemusser/posthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createInput struct {
	Title      string        `json:"title"`
	Desc       string        `json:"desc"`
	Categories formutil.List `json:"categories"`
	UserID     string        `json:"userId"`
	Name       string        `json:"name"`
}

// resolveOwner picks the post owner from an explicit id or, failing that,
// a user name.
func (h *Handler) resolveOwner(ctx context.Context, userID, name string) (primitive.ObjectID, error) {
	userID, name = strings.TrimSpace(userID), strings.TrimSpace(name)
	switch {
	case userID != "":
		oid, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return primitive.NilObjectID, uierrors.Invalid("userId must be a valid id")
		}
		u, err := h.Users.GetByID(ctx, oid)
		if errors.Is(err, userstore.ErrNotFound) || (err == nil && u.IsDeleted) {
			return primitive.NilObjectID, uierrors.NotFound(msgUserNotFound)
		}
		if err != nil {
			return primitive.NilObjectID, uierrors.Store(err)
		}
		return oid, nil
	case name != "":
		u, err := h.Users.GetByName(ctx, name)
		if errors.Is(err, userstore.ErrNotFound) {
			return primitive.NilObjectID, uierrors.NotFound(msgUserNotFoundByName)
		}
		if err != nil {
			return primitive.NilObjectID, uierrors.Store(err)
		}
		return u.ID, nil
	default:
		return primitive.NilObjectID, uierrors.Invalid(msgOwnerRequired)
	}
}

// HandleCreate creates a post owned by the given user, storing any
// uploaded images first.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(w, r, h)
	if !ok {
		return
	}
	var in createInput
	if err := bind(w, r, &in); err != nil {
		h.ErrLog.Respond(w, r, "create post", err)
		return
	}
	title := htmlsanitize.Sanitize(strings.TrimSpace(in.Title))
	desc := htmlsanitize.Sanitize(strings.TrimSpace(in.Desc))
	if title == "" || desc == "" {
		h.ErrLog.Respond(w, r, "create post", uierrors.Invalid(msgTitleDescRequired))
		return
	}
	files, err := imageFiles(r)
	if err != nil {
		h.ErrLog.Respond(w, r, "create post", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create post")
	defer cancel()

	owner, err := h.resolveOwner(ctx, in.UserID, in.Name)
	if err != nil {
		h.ErrLog.Respond(w, r, "create post", err)
		return
	}
	images, err := h.saveImages(ctx, files)
	if err != nil {
		h.ErrLog.Respond(w, r, "create post", err)
		return
	}

	p, err := h.Posts.Create(ctx, models.Post{
		Title:      title,
		Desc:       desc,
		Images:     images,
		Categories: normalize.Categories(in.Categories),
		User:       owner,
	})
	if err != nil {
		h.removeImages(ctx, images)
		h.ErrLog.Respond(w, r, "create post", uierrors.Store(err))
		return
	}
	h.AuditLog.PostCreated(ctx, r, admin.ID, p.ID, owner)

	respond.Created(w, postResponse{Success: true, Message: msgCreated, Data: p})
}
