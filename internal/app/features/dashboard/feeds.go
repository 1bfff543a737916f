// internal/app/features/dashboard/feeds.go
package dashboard

import (
	"net/http"

	metricsstore "github.com/dalemusser/posthub/internal/app/store/metrics"
	"github.com/dalemusser/posthub/internal/app/system/respond"
	"github.com/dalemusser/posthub/internal/app/system/timeouts"
)

type userActionsResponse struct {
	Success bool                        `json:"success"`
	Actions []metricsstore.UserActivity `json:"actions"`
}

// ServeUserActions handles GET /userActions.
func (h *Handler) ServeUserActions(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.resolveRange(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Dashboard(), h.Log, "dashboard user actions")
	defer cancel()

	actions, err := h.Queries.UserActions(ctx, rng)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard user actions", err)
		return
	}
	respond.OK(w, userActionsResponse{Success: true, Actions: nonNil(actions)})
}

type postActivitiesResponse struct {
	Success    bool                        `json:"success"`
	Activities []metricsstore.PostActivity `json:"activities"`
}

// ServePostActivities handles GET /postActivities.
func (h *Handler) ServePostActivities(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.resolveRange(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Dashboard(), h.Log, "dashboard post activities")
	defer cancel()

	activities, err := h.Queries.PostActivities(ctx, rng)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard post activities", err)
		return
	}
	respond.OK(w, postActivitiesResponse{Success: true, Activities: nonNil(activities)})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
