// internal/app/features/posts/reactions.go
package posts

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/posthub/internal/app/features/errors"
	poststore "github.com/dalemusser/posthub/internal/app/store/posts"
	userstore "github.com/dalemusser/posthub/internal/app/store/users"
	"github.com/dalemusser/posthub/internal/app/system/respond"
	"github.com/dalemusser/posthub/internal/app/system/timeouts"
	"github.com/dalemusser/posthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type reactionInput struct {
	UserID string `json:"userId"`
}

// actingUser parses and checks the user a reaction or comment is made for.
func (h *Handler) actingUser(ctx context.Context, raw string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
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
}

func (h *Handler) HandleLike(w http.ResponseWriter, r *http.Request) {
	h.react(w, r, poststore.Like, msgLiked)
}

func (h *Handler) HandleDislike(w http.ResponseWriter, r *http.Request) {
	h.react(w, r, poststore.Dislike, msgDisliked)
}

// react records a like or dislike on behalf of a user and returns the
// joined post.
func (h *Handler) react(w http.ResponseWriter, r *http.Request, kind poststore.Reaction, msg string) {
	id, err := objectIDParam(r, "id", msgPostNotFound)
	if err != nil {
		h.ErrLog.Respond(w, r, "react", err)
		return
	}
	var in reactionInput
	if err := bind(w, r, &in); err != nil {
		h.ErrLog.Respond(w, r, "react", err)
		return
	}
	if strings.TrimSpace(in.UserID) == "" {
		h.ErrLog.Respond(w, r, "react", uierrors.Invalid(msgUserIDRequired))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "react")
	defer cancel()

	userID, err := h.actingUser(ctx, in.UserID)
	if err != nil {
		h.ErrLog.Respond(w, r, "react", err)
		return
	}
	p, err := h.Posts.React(ctx, id, userID, kind)
	if err != nil {
		h.ErrLog.Respond(w, r, "react", storeErr(err))
		return
	}
	joined, err := h.Details.Join(ctx, []models.Post{*p})
	if err != nil {
		h.ErrLog.Respond(w, r, "join post", uierrors.Store(err))
		return
	}

	respond.OK(w, detailResponse{Success: true, Message: msg, Data: joined[0]})
}
