// internal/app/features/dashboard/summary.go
package dashboard

import (
	"context"
	"fmt"
	"net/http"

	uierrors "github.com/dalemusser/posthub/internal/app/features/errors"
	"github.com/dalemusser/posthub/internal/app/system/auth"
	"github.com/dalemusser/posthub/internal/app/system/daterange"
	"github.com/dalemusser/posthub/internal/app/system/respond"
	"github.com/dalemusser/posthub/internal/app/system/timeouts"
	"golang.org/x/sync/errgroup"
)

const summaryMessage = "Dashboard summary fetched successfully"

// Summary is the body of GET /summary.
type Summary struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	WelcomeMessage  string `json:"welcomeMessage"`
	TotalPosts      int64  `json:"totalPosts"`
	TotalUsers      int64  `json:"totalUsers"`
	DeletedUsers    int64  `json:"deletedUsers"`
	TotalComments   int64  `json:"totalComments"`
	TotalCategories int64  `json:"totalCategories"`
}

// WelcomeMessage greets the named admin.
func WelcomeMessage(name string) string {
	return fmt.Sprintf("Welcome back, %s!", name)
}

// ComposeSummary runs the five summary counts concurrently. The first
// failure cancels the rest and is returned; there is no partial summary.
func ComposeSummary(ctx context.Context, q Queries, rng daterange.Range, admin *auth.Principal) (Summary, error) {
	s := Summary{
		Success:        true,
		Message:        summaryMessage,
		WelcomeMessage: WelcomeMessage(admin.Name),
	}

	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, fn func(context.Context, daterange.Range) (int64, error)) {
		g.Go(func() error {
			n, err := fn(gctx, rng)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	count(&s.TotalPosts, q.CountPosts)
	count(&s.TotalUsers, q.CountUsers)
	count(&s.DeletedUsers, q.CountDeletedUsers)
	count(&s.TotalComments, q.CountComments)
	count(&s.TotalCategories, q.CountCategories)

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return s, nil
}

// ServeSummary handles GET /summary.
func (h *Handler) ServeSummary(w http.ResponseWriter, r *http.Request) {
	admin, ok := auth.CurrentAdmin(r)
	if !ok {
		h.ErrLog.Respond(w, r, "dashboard summary", uierrors.Unauthenticated(auth.MsgAdminNotFound))
		return
	}
	rng, ok := h.resolveRange(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Dashboard(), h.Log, "dashboard summary")
	defer cancel()

	s, err := ComposeSummary(ctx, h.Queries, rng, admin)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard summary", err)
		return
	}
	respond.OK(w, s)
}
