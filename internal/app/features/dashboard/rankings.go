// internal/app/features/dashboard/rankings.go
package dashboard

import (
	"net/http"

	metricsstore "github.com/dalemusser/posthub/internal/app/store/metrics"
	"github.com/dalemusser/posthub/internal/app/system/paging"
	"github.com/dalemusser/posthub/internal/app/system/respond"
	"github.com/dalemusser/posthub/internal/app/system/timeouts"
)

// TopCategories is the body of GET /topCategories. Total counts distinct
// categories and TotalPostCount sums every category's count, both over the
// full list rather than the page.
type TopCategories struct {
	Success        bool                         `json:"success"`
	Categories     []metricsstore.CategoryCount `json:"categories"`
	Total          int                          `json:"total"`
	TotalPostCount int64                        `json:"totalPostCount"`
}

// PageCategories paginates an already sorted category list.
func PageCategories(all []metricsstore.CategoryCount, page, limit int) TopCategories {
	var sum int64
	for _, c := range all {
		sum += c.Count
	}
	return TopCategories{
		Success:        true,
		Categories:     paging.Paginate(all, page, limit),
		Total:          len(all),
		TotalPostCount: sum,
	}
}

// ServeTopCategories handles GET /topCategories.
func (h *Handler) ServeTopCategories(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.resolveRange(w, r)
	if !ok {
		return
	}
	page, limit := paging.ParsePageLimit(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Dashboard(), h.Log, "dashboard top categories")
	defer cancel()

	all, err := h.Queries.CategoryCounts(ctx, rng)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard top categories", err)
		return
	}
	respond.OK(w, PageCategories(all, page, limit))
}

type topContributorsResponse struct {
	Success      bool                       `json:"success"`
	Contributors []metricsstore.Contributor `json:"contributors"`
}

// ServeTopContributors handles GET /topContributors.
func (h *Handler) ServeTopContributors(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.resolveRange(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Dashboard(), h.Log, "dashboard top contributors")
	defer cancel()

	rows, err := h.Queries.TopContributors(ctx, rng)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard top contributors", err)
		return
	}
	respond.OK(w, topContributorsResponse{Success: true, Contributors: nonNil(rows)})
}

type signupsResponse struct {
	Success   bool                          `json:"success"`
	Countries []metricsstore.CountrySignups `json:"countries"`
}

// ServeSignupsByCountry handles GET /signupsByCountry.
func (h *Handler) ServeSignupsByCountry(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.resolveRange(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Dashboard(), h.Log, "dashboard signups by country")
	defer cancel()

	rows, err := h.Queries.SignupsByCountry(ctx, rng)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard signups by country", err)
		return
	}
	respond.OK(w, signupsResponse{Success: true, Countries: nonNil(rows)})
}
