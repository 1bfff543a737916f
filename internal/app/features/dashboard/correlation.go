// internal/app/features/dashboard/correlation.go
package dashboard

import (
	"context"
	"net/http"
	"slices"

	"github.com/dalemusser/posthub/internal/app/system/daterange"
	"github.com/dalemusser/posthub/internal/app/system/respond"
	"github.com/dalemusser/posthub/internal/app/system/timeouts"
	"golang.org/x/sync/errgroup"
)

// DayCount is one row of the user/post correlation series.
type DayCount struct {
	Date      string `json:"date"`
	UserCount int64  `json:"userCount"`
	PostCount int64  `json:"postCount"`
}

// Correlate counts users and posts created on each day of rng. Days are
// queried concurrently, at most workers at a time, and the result is in
// day order regardless of completion order.
func Correlate(ctx context.Context, q Queries, rng daterange.Range, workers int) ([]DayCount, error) {
	days := slices.Collect(rng.Days())
	out := make([]DayCount, len(days))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for i, d := range days {
		g.Go(func() error {
			users, err := q.CountUsersCreated(gctx, d.Start, d.End)
			if err != nil {
				return err
			}
			posts, err := q.CountPostsCreated(gctx, d.Start, d.End)
			if err != nil {
				return err
			}
			out[i] = DayCount{Date: d.Key, UserCount: users, PostCount: posts}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type correlationResponse struct {
	Success bool       `json:"success"`
	Data    []DayCount `json:"data"`
}

// ServeUserPostCorrelation handles GET /userPostCorrelation.
func (h *Handler) ServeUserPostCorrelation(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.resolveRange(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Dashboard(), h.Log, "dashboard user/post correlation")
	defer cancel()

	data, err := Correlate(ctx, h.Queries, rng, h.Workers)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard user/post correlation", err)
		return
	}
	respond.OK(w, correlationResponse{Success: true, Data: data})
}
