// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/posthub/internal/app/features/errors"
	metricsstore "github.com/dalemusser/posthub/internal/app/store/metrics"
	"github.com/dalemusser/posthub/internal/app/system/daterange"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// Queries is the read-only port the dashboard aggregates through.
// *metricsstore.Store satisfies it.
type Queries interface {
	CountPosts(ctx context.Context, r daterange.Range) (int64, error)
	CountUsers(ctx context.Context, r daterange.Range) (int64, error)
	CountDeletedUsers(ctx context.Context, r daterange.Range) (int64, error)
	CountComments(ctx context.Context, r daterange.Range) (int64, error)
	CountCategories(ctx context.Context, r daterange.Range) (int64, error)

	UserActions(ctx context.Context, r daterange.Range) ([]metricsstore.UserActivity, error)
	PostActivities(ctx context.Context, r daterange.Range) ([]metricsstore.PostActivity, error)
	CategoryCounts(ctx context.Context, r daterange.Range) ([]metricsstore.CategoryCount, error)
	TopContributors(ctx context.Context, r daterange.Range) ([]metricsstore.Contributor, error)
	SignupsByCountry(ctx context.Context, r daterange.Range) ([]metricsstore.CountrySignups, error)

	CountUsersCreated(ctx context.Context, start, end time.Time) (int64, error)
	CountPostsCreated(ctx context.Context, start, end time.Time) (int64, error)
}

// DefaultWorkers bounds concurrent per-day correlation queries.
const DefaultWorkers = 4

type Handler struct {
	Queries Queries
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger

	// Loc is the calendar used for day boundaries.
	Loc     *time.Location
	Workers int
	Now     func() time.Time
}

// NewHandler constructs a dashboard handler. A nil loc means UTC and
// workers < 1 means DefaultWorkers.
func NewHandler(q Queries, loc *time.Location, workers int, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Handler{
		Queries: q,
		Log:     logger,
		ErrLog:  errLog,
		Loc:     loc,
		Workers: workers,
		Now:     time.Now,
	}
}

// resolveRange reads from/to. It writes a 400 and returns false when either
// is present but unparsable.
func (h *Handler) resolveRange(w http.ResponseWriter, r *http.Request) (daterange.Range, bool) {
	rng, err := daterange.Resolve(query.Get(r, "from"), query.Get(r, "to"), h.Now(), h.Loc)
	if err != nil {
		h.ErrLog.Respond(w, r, "dashboard: resolve range", uierrors.Invalid(err.Error()))
		return daterange.Range{}, false
	}
	return rng, true
}
