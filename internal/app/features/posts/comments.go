// internal/app/features/posts/comments.go
package posts

import (
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/posthub/internal/app/features/errors"
	"github.com/dalemusser/posthub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/posthub/internal/app/system/respond"
	"github.com/dalemusser/posthub/internal/app/system/timeouts"
	"github.com/dalemusser/posthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type commentInput struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
	Emoji  string `json:"emoji"`
}

// HandleComment appends a comment written on behalf of a user and returns
// it with the author resolved.
func (h *Handler) HandleComment(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id", msgPostNotFound)
	if err != nil {
		h.ErrLog.Respond(w, r, "comment", err)
		return
	}
	var in commentInput
	if err := bind(w, r, &in); err != nil {
		h.ErrLog.Respond(w, r, "comment", err)
		return
	}
	text := htmlsanitize.Sanitize(strings.TrimSpace(in.Text))
	if strings.TrimSpace(in.UserID) == "" || text == "" {
		h.ErrLog.Respond(w, r, "comment", uierrors.Invalid(msgCommentRequired))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "comment")
	defer cancel()

	userID, err := h.actingUser(ctx, in.UserID)
	if err != nil {
		h.ErrLog.Respond(w, r, "comment", err)
		return
	}
	c, count, err := h.Posts.AddComment(ctx, id, models.Comment{
		UserID: userID,
		Text:   text,
		Emoji:  strings.TrimSpace(in.Emoji),
	})
	if err != nil {
		h.ErrLog.Respond(w, r, "comment", storeErr(err))
		return
	}
	refs, err := h.Users.Refs(ctx, []primitive.ObjectID{userID})
	if err != nil {
		h.ErrLog.Respond(w, r, "resolve commenter", uierrors.Store(err))
		return
	}
	detail := models.CommentDetail{
		ID:        c.ID,
		Text:      c.Text,
		Emoji:     c.Emoji,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if ref, ok := refs[userID]; ok {
		detail.User = &ref
	}

	respond.Created(w, commentResponse{
		Success: true,
		Message: msgCommentAdded,
		Data:    commentData{Comment: &detail, CommentCount: count},
	})
}

// HandleDeleteComment removes one comment from a post.
func (h *Handler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(w, r, h)
	if !ok {
		return
	}
	postID, err := objectIDParam(r, "postId", msgPostNotFound)
	if err != nil {
		h.ErrLog.Respond(w, r, "delete comment", err)
		return
	}
	commentID, err := objectIDParam(r, "commentId", msgCommentNotFound)
	if err != nil {
		h.ErrLog.Respond(w, r, "delete comment", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete comment")
	defer cancel()

	count, err := h.Posts.DeleteComment(ctx, postID, commentID)
	if err != nil {
		h.ErrLog.Respond(w, r, "delete comment", storeErr(err))
		return
	}
	h.AuditLog.CommentDeleted(ctx, r, admin.ID, postID, commentID)

	respond.OK(w, commentResponse{
		Success: true,
		Message: msgCommentDeleted,
		Data:    commentData{CommentCount: count},
	})
}
