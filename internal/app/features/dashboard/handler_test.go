package dashboard_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/posthub/internal/app/features/dashboard"
	uierrors "github.com/dalemusser/posthub/internal/app/features/errors"
	metricsstore "github.com/dalemusser/posthub/internal/app/store/metrics"
	"github.com/dalemusser/posthub/internal/app/system/auth"
	"github.com/dalemusser/posthub/internal/app/system/daterange"
	"github.com/dalemusser/posthub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// fakeQueries is an in-memory dashboard.Queries. Any non-nil err is
// returned by every method.
type fakeQueries struct {
	err error

	posts, users, deleted, comments, categories int64

	actions       []metricsstore.UserActivity
	activities    []metricsstore.PostActivity
	categoryRows  []metricsstore.CategoryCount
	contributors  []metricsstore.Contributor
	signups       []metricsstore.CountrySignups
	usersOn       map[string]int64
	postsOn       map[string]int64
	delay         func(day string) time.Duration
	inFlight, max atomic.Int64

	mu        sync.Mutex
	lastRange daterange.Range
}

func (f *fakeQueries) count(r daterange.Range, n int64) (int64, error) {
	f.mu.Lock()
	f.lastRange = r
	f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return n, nil
}

func (f *fakeQueries) CountPosts(_ context.Context, r daterange.Range) (int64, error) {
	return f.count(r, f.posts)
}
func (f *fakeQueries) CountUsers(_ context.Context, r daterange.Range) (int64, error) {
	return f.count(r, f.users)
}
func (f *fakeQueries) CountDeletedUsers(_ context.Context, r daterange.Range) (int64, error) {
	return f.count(r, f.deleted)
}
func (f *fakeQueries) CountComments(_ context.Context, r daterange.Range) (int64, error) {
	return f.count(r, f.comments)
}
func (f *fakeQueries) CountCategories(_ context.Context, r daterange.Range) (int64, error) {
	return f.count(r, f.categories)
}
func (f *fakeQueries) UserActions(context.Context, daterange.Range) ([]metricsstore.UserActivity, error) {
	return f.actions, f.err
}
func (f *fakeQueries) PostActivities(context.Context, daterange.Range) ([]metricsstore.PostActivity, error) {
	return f.activities, f.err
}
func (f *fakeQueries) CategoryCounts(context.Context, daterange.Range) ([]metricsstore.CategoryCount, error) {
	return f.categoryRows, f.err
}
func (f *fakeQueries) TopContributors(context.Context, daterange.Range) ([]metricsstore.Contributor, error) {
	return f.contributors, f.err
}
func (f *fakeQueries) SignupsByCountry(context.Context, daterange.Range) ([]metricsstore.CountrySignups, error) {
	return f.signups, f.err
}

func (f *fakeQueries) perDay(start time.Time, m map[string]int64) (int64, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		cur := f.max.Load()
		if n <= cur || f.max.CompareAndSwap(cur, n) {
			break
		}
	}
	key := start.Format(daterange.KeyLayout)
	if f.delay != nil {
		time.Sleep(f.delay(key))
	}
	if f.err != nil {
		return 0, f.err
	}
	return m[key], nil
}

func (f *fakeQueries) CountUsersCreated(_ context.Context, start, _ time.Time) (int64, error) {
	return f.perDay(start, f.usersOn)
}
func (f *fakeQueries) CountPostsCreated(_ context.Context, start, _ time.Time) (int64, error) {
	return f.perDay(start, f.postsOn)
}

var fixedNow = time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)

func newTestHandler(q dashboard.Queries) *dashboard.Handler {
	logger := zap.NewNop()
	h := dashboard.NewHandler(q, time.UTC, 2, uierrors.NewErrorLogger(logger), logger)
	h.Now = func() time.Time { return fixedNow }
	return h
}

func serve(h http.HandlerFunc, target string) *testutil.ResponseRecorder {
	admin := &auth.Principal{ID: primitive.NewObjectID(), Name: "Ada", Role: auth.RoleAdmin}
	rec := testutil.NewRecorder()
	h(rec, testutil.NewAuthenticatedRequest(http.MethodGet, target, admin))
	return rec
}

func TestServeSummary(t *testing.T) {
	q := &fakeQueries{posts: 5, users: 4, deleted: 1, comments: 9, categories: 3}
	h := newTestHandler(q)

	rec := serve(h.ServeSummary, "/summary")
	rec.AssertStatus(t, http.StatusOK)

	var got dashboard.Summary
	rec.DecodeJSON(t, &got)
	want := dashboard.Summary{
		Success:         true,
		Message:         "Dashboard summary fetched successfully",
		WelcomeMessage:  "Welcome back, Ada!",
		TotalPosts:      5,
		TotalUsers:      4,
		DeletedUsers:    1,
		TotalComments:   9,
		TotalCategories: 3,
	}
	if got != want {
		t.Errorf("summary = %+v, want %+v", got, want)
	}

	wantFrom := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	if !q.lastRange.From.Equal(wantFrom) || !q.lastRange.To.Equal(fixedNow) {
		t.Errorf("default range = %v..%v, want %v..%v", q.lastRange.From, q.lastRange.To, wantFrom, fixedNow)
	}
}

func TestServeSummary_StoreFailure(t *testing.T) {
	h := newTestHandler(&fakeQueries{err: errors.New("connection refused")})

	rec := serve(h.ServeSummary, "/summary")
	rec.AssertStatus(t, http.StatusInternalServerError)
	rec.AssertContains(t, `"success":false`)
	rec.AssertContains(t, "connection refused")
}

func TestServeSummary_NoAdmin(t *testing.T) {
	h := newTestHandler(&fakeQueries{})
	rec := testutil.NewRecorder()
	h.ServeSummary(rec, httptest.NewRequest(http.MethodGet, "/summary", nil))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestInvalidDate(t *testing.T) {
	h := newTestHandler(&fakeQueries{})
	handlers := map[string]http.HandlerFunc{
		"summary":      h.ServeSummary,
		"userActions":  h.ServeUserActions,
		"topCategory":  h.ServeTopCategories,
		"correlation":  h.ServeUserPostCorrelation,
		"signups":      h.ServeSignupsByCountry,
		"contributors": h.ServeTopContributors,
		"activities":   h.ServePostActivities,
	}
	for name, fn := range handlers {
		t.Run(name, func(t *testing.T) {
			rec := serve(fn, "/x?from=yesterday")
			rec.AssertStatus(t, http.StatusBadRequest)
		})
	}
}

func TestServeTopCategories_Pagination(t *testing.T) {
	var rows []metricsstore.CategoryCount
	var sum int64
	for i := 0; i < 10; i++ {
		n := int64(100 - i)
		rows = append(rows, metricsstore.CategoryCount{Category: fmt.Sprintf("c%d", i), Count: n})
		sum += n
	}
	h := newTestHandler(&fakeQueries{categoryRows: rows})

	rec := serve(h.ServeTopCategories, "/topCategories?page=2&limit=4")
	rec.AssertStatus(t, http.StatusOK)

	var got dashboard.TopCategories
	rec.DecodeJSON(t, &got)
	if got.Total != 10 || got.TotalPostCount != sum {
		t.Errorf("total=%d totalPostCount=%d, want 10 and %d", got.Total, got.TotalPostCount, sum)
	}
	if len(got.Categories) != 4 {
		t.Fatalf("page size = %d, want 4", len(got.Categories))
	}
	for i, c := range got.Categories {
		if c != rows[4+i] {
			t.Errorf("categories[%d] = %+v, want %+v", i, c, rows[4+i])
		}
	}
}

func TestServeTopCategories_PageFarPastEnd(t *testing.T) {
	rows := []metricsstore.CategoryCount{{Category: "a", Count: 5}, {Category: "b", Count: 4}}
	h := newTestHandler(&fakeQueries{categoryRows: rows})

	rec := serve(h.ServeTopCategories, "/topCategories?page=2305843009213693953&limit=5")
	rec.AssertStatus(t, http.StatusOK)

	var got dashboard.TopCategories
	rec.DecodeJSON(t, &got)
	if len(got.Categories) != 0 || got.Total != 2 || got.TotalPostCount != 9 {
		t.Errorf("got %+v, want empty page over 2 categories", got)
	}
}

func TestServeTopCategories_Defaults(t *testing.T) {
	rows := []metricsstore.CategoryCount{
		{Category: "a", Count: 5}, {Category: "b", Count: 4}, {Category: "c", Count: 3},
		{Category: "d", Count: 2}, {Category: "e", Count: 1},
	}
	h := newTestHandler(&fakeQueries{categoryRows: rows})

	rec := serve(h.ServeTopCategories, "/topCategories?page=0&limit=abc")
	var got dashboard.TopCategories
	rec.DecodeJSON(t, &got)
	if len(got.Categories) != 4 || got.Categories[0].Category != "a" {
		t.Errorf("default page = %+v", got.Categories)
	}
}

func TestEmptyResultsAreArrays(t *testing.T) {
	h := newTestHandler(&fakeQueries{})
	tests := []struct {
		fn   http.HandlerFunc
		want string
	}{
		{h.ServeUserActions, `"actions":[]`},
		{h.ServePostActivities, `"activities":[]`},
		{h.ServeTopContributors, `"contributors":[]`},
		{h.ServeSignupsByCountry, `"countries":[]`},
		{h.ServeTopCategories, `"categories":[]`},
	}
	for _, tt := range tests {
		rec := serve(tt.fn, "/x")
		rec.AssertStatus(t, http.StatusOK)
		rec.AssertContains(t, tt.want)
	}
}

func TestServeUserActions_Shape(t *testing.T) {
	updated := time.Date(2024, 1, 9, 8, 0, 0, 0, time.UTC)
	q := &fakeQueries{actions: []metricsstore.UserActivity{{
		ID:        primitive.NewObjectID(),
		Name:      "Bob",
		Email:     "bob@example.com",
		IsDeleted: true,
		Status:    "inactive",
		Action:    metricsstore.ActionDeleted,
		UpdatedAt: updated,
	}}}
	h := newTestHandler(q)

	rec := serve(h.ServeUserActions, "/userActions")
	var body struct {
		Success bool             `json:"success"`
		Actions []map[string]any `json:"actions"`
	}
	rec.DecodeJSON(t, &body)
	if !body.Success || len(body.Actions) != 1 {
		t.Fatalf("body = %+v", body)
	}
	a := body.Actions[0]
	if a["action"] != "deleted" || a["name"] != "Bob" {
		t.Errorf("action row = %v", a)
	}
	for _, hidden := range []string{"isDeleted", "status"} {
		if _, ok := a[hidden]; ok {
			t.Errorf("field %q should not be serialized", hidden)
		}
	}
}

func TestCorrelate_OrderAndBound(t *testing.T) {
	rng, err := daterange.Resolve("2024-01-01", "2024-01-05", fixedNow, time.UTC)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	q := &fakeQueries{
		usersOn: map[string]int64{"2024-01-01": 1, "2024-01-03": 3},
		postsOn: map[string]int64{"2024-01-02": 2, "2024-01-05": 5},
		// Earlier days finish last.
		delay: func(day string) time.Duration {
			switch day {
			case "2024-01-01":
				return 30 * time.Millisecond
			case "2024-01-02":
				return 20 * time.Millisecond
			default:
				return time.Millisecond
			}
		},
	}

	got, err := dashboard.Correlate(context.Background(), q, rng, 2)
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}
	want := []dashboard.DayCount{
		{Date: "2024-01-01", UserCount: 1, PostCount: 0},
		{Date: "2024-01-02", UserCount: 0, PostCount: 2},
		{Date: "2024-01-03", UserCount: 3, PostCount: 0},
		{Date: "2024-01-04", UserCount: 0, PostCount: 0},
		{Date: "2024-01-05", UserCount: 0, PostCount: 5},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if m := q.max.Load(); m > 2 {
		t.Errorf("max concurrent per-day queries = %d, want <= 2", m)
	}
}

func TestCorrelate_EmptyAndSingle(t *testing.T) {
	q := &fakeQueries{}

	inverted, _ := daterange.Resolve("2024-01-05", "2024-01-01", fixedNow, time.UTC)
	got, err := dashboard.Correlate(context.Background(), q, inverted, 4)
	if err != nil || len(got) != 0 {
		t.Errorf("inverted range: got %v, %v", got, err)
	}

	single, _ := daterange.Resolve("2024-01-05", "2024-01-05", fixedNow, time.UTC)
	got, err = dashboard.Correlate(context.Background(), q, single, 4)
	if err != nil || len(got) != 1 || got[0].Date != "2024-01-05" {
		t.Errorf("single day: got %v, %v", got, err)
	}
}

func TestServeUserPostCorrelation(t *testing.T) {
	h := newTestHandler(&fakeQueries{usersOn: map[string]int64{"2024-01-02": 7}})

	rec := serve(h.ServeUserPostCorrelation, "/userPostCorrelation?from=2024-01-01&to=2024-01-03")
	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		Success bool                 `json:"success"`
		Data    []dashboard.DayCount `json:"data"`
	}
	rec.DecodeJSON(t, &body)
	if len(body.Data) != 3 || body.Data[1] != (dashboard.DayCount{Date: "2024-01-02", UserCount: 7, PostCount: 0}) {
		t.Errorf("data = %+v", body.Data)
	}

	failing := newTestHandler(&fakeQueries{err: errors.New("boom")})
	rec = serve(failing.ServeUserPostCorrelation, "/userPostCorrelation")
	rec.AssertStatus(t, http.StatusInternalServerError)
	rec.AssertContains(t, "boom")
}

func TestStoreSatisfiesQueries(t *testing.T) {
	var _ dashboard.Queries = (*metricsstore.Store)(nil)
}

func TestSummaryJSONKeys(t *testing.T) {
	b, _ := json.Marshal(dashboard.Summary{})
	var m map[string]any
	json.Unmarshal(b, &m)
	for _, k := range []string{"success", "message", "welcomeMessage", "totalPosts", "totalUsers", "deletedUsers", "totalComments", "totalCategories"} {
		if _, ok := m[k]; !ok {
			t.Errorf("missing key %q", k)
		}
	}
}
