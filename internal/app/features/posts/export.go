// internal/app/features/posts/export.go
package posts

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/posthub/internal/app/features/errors"
	"github.com/dalemusser/posthub/internal/app/system/timeouts"
	"github.com/dalemusser/posthub/internal/app/system/xlsxexport"
	"github.com/dalemusser/posthub/internal/domain/models"
	"go.uber.org/zap"
)

const exportTime = time.RFC3339

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func authorName(u *models.UserRef) string {
	if u == nil {
		return "N/A"
	}
	return orNA(u.Name)
}

func names(refs []models.UserRef) string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Name)
	}
	return strings.Join(out, ", ")
}

// PostsSheet lays out one row per post.
func PostsSheet(posts []models.PostDetail) xlsxexport.Sheet {
	rows := make([][]any, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, []any{
			p.Title,
			orNA(p.Desc),
			authorName(p.User),
			strings.Join(p.Categories, ", "),
			p.CreatedAt.UTC().Format(exportTime),
			strings.Join(p.Images, ", "),
		})
	}
	return xlsxexport.Sheet{
		Name: "Posts",
		Columns: []xlsxexport.Column{
			{Header: "Title", Width: 45},
			{Header: "Desc", Width: 50},
			{Header: "Author", Width: 15},
			{Header: "Category", Width: 15},
			{Header: "CreatedAt", Width: 30},
			{Header: "Images", Width: 50},
		},
		Rows:   rows,
		Stripe: xlsxexport.StripeRows,
	}
}

// PostSheet lays out one post, its comments and reactions in a single row.
func PostSheet(p models.PostDetail) xlsxexport.Sheet {
	comments := make([]string, 0, len(p.Comments))
	for _, c := range p.Comments {
		name := "Unknown"
		if c.User != nil {
			name = c.User.Name
		}
		comments = append(comments, name+": "+c.Text)
	}
	return xlsxexport.Sheet{
		Name: "Single Post",
		Columns: []xlsxexport.Column{
			{Header: "Title", Width: 30},
			{Header: "Desc", Width: 30},
			{Header: "Author", Width: 15},
			{Header: "Category", Width: 15},
			{Header: "Images", Width: 30},
			{Header: "CommentsCount", Width: 20},
			{Header: "Comments", Width: 30},
			{Header: "LikesCount", Width: 15},
			{Header: "Likes", Width: 15},
			{Header: "DislikesCount", Width: 15},
			{Header: "Dislikes", Width: 15},
			{Header: "CreatedAt", Width: 30},
		},
		Rows: [][]any{{
			orNA(p.Title),
			orNA(p.Desc),
			authorName(p.User),
			orNA(strings.Join(p.Categories, ", ")),
			orNA(strings.Join(p.Images, ", ")),
			p.CommentCount,
			orNA(strings.Join(comments, "\n")),
			p.LikeCount,
			orNA(names(p.Likes)),
			p.DislikeCount,
			orNA(names(p.Dislikes)),
			p.CreatedAt.UTC().Format(exportTime),
		}},
		Stripe: xlsxexport.StripeColumns,
	}
}

// ServeExportPosts streams every post as posts.xlsx.
func (h *Handler) ServeExportPosts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "export posts")
	defer cancel()

	posts, err := h.Details.List(ctx)
	if err != nil {
		h.ErrLog.Respond(w, r, "export posts", uierrors.Store(err))
		return
	}
	if len(posts) == 0 {
		h.ErrLog.Respond(w, r, "export posts", uierrors.NotFound(msgNoPosts))
		return
	}
	if err := xlsxexport.Serve(w, "posts.xlsx", PostsSheet(posts)); err != nil {
		h.Log.Error("write posts.xlsx", zap.Error(err))
	}
}

// ServeExportPost streams one post as post_<id>.xlsx.
func (h *Handler) ServeExportPost(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id", msgPostNotFound)
	if err != nil {
		h.ErrLog.Respond(w, r, "export post", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "export post")
	defer cancel()

	p, err := h.Details.Get(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, "export post", storeErr(err))
		return
	}
	if err := xlsxexport.Serve(w, fmt.Sprintf("post_%s.xlsx", p.ID.Hex()), PostSheet(*p)); err != nil {
		h.Log.Error("write post export", zap.Error(err))
	}
}
