// internal/app/features/posts/types.go
package posts

import (
	"github.com/dalemusser/posthub/internal/domain/models"
)

const (
	msgPostNotFound       = "Post not found"
	msgCommentNotFound    = "Comment not found"
	msgUserNotFound       = "User not found"
	msgUserNotFoundByName = "User not found by username"
	msgOwnerRequired      = "Either userId or username is required"
	msgTitleDescRequired  = "Title and description are required"
	msgUserIDRequired     = "userId is required"
	msgCommentRequired    = "userId and text are required to comment"
	msgTooManyImages      = "At most 10 images can be uploaded"
	msgAlreadyLiked       = "User already liked this post"
	msgAlreadyDisliked    = "User already disliked this post"
	msgNoPosts            = "No posts found"

	msgCreated        = "Post created successfully"
	msgRetrieved      = "Post retrieved successfully"
	msgUpdated        = "Post updated successfully"
	msgDeleted        = "Post deleted successfully"
	msgLiked          = "Post liked successfully"
	msgDisliked       = "Post disliked successfully"
	msgCommentAdded   = "Comment added successfully"
	msgCommentDeleted = "Comment deleted successfully"
)

type postResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    models.Post `json:"data"`
}

type detailResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    models.PostDetail `json:"data"`
}

type listResponse struct {
	Success bool                `json:"success"`
	Count   int                 `json:"count"`
	Data    []models.PostDetail `json:"data"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type commentData struct {
	Comment      *models.CommentDetail `json:"comment,omitempty"`
	CommentCount int                   `json:"commentCount"`
}

type commentResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    commentData `json:"data"`
}
