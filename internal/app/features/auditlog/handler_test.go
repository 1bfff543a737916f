package auditlog_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/posthub/internal/app/features/auditlog"
	uierrors "github.com/dalemusser/posthub/internal/app/features/errors"
	"github.com/dalemusser/posthub/internal/app/store/audit"
	"github.com/dalemusser/posthub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type listBody struct {
	Success    bool  `json:"success"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	Data       []struct {
		EventType string `json:"eventType"`
		ActorID   string `json:"actorId"`
		ActorName string `json:"actorName"`
		UserName  string `json:"userName"`
	} `json:"data"`
}

func setup(t *testing.T) (*auditlog.Handler, *testutil.Fixtures, *audit.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	h := auditlog.NewHandler(db, nil, uierrors.NewErrorLogger(logger), logger)
	return h, testutil.NewFixtures(t, db), audit.New(db)
}

func TestServeList(t *testing.T) {
	h, fx, store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateAdmin(ctx, "Ada", "ada@example.com", "Passw0rd!")
	user := fx.CreateUser(ctx, "Bob", "bob@example.com", "US")
	missing := primitive.NewObjectID()

	day := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	events := []audit.Event{
		{Timestamp: day, Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, UserID: &admin.ID, Success: true},
		{Timestamp: day.Add(time.Hour), Category: audit.CategoryAdmin, EventType: audit.EventUserCreated, ActorID: &admin.ID, UserID: &user.ID, Success: true},
		{Timestamp: day.Add(24 * time.Hour), Category: audit.CategoryAdmin, EventType: audit.EventUserDeleted, ActorID: &missing, UserID: &user.ID, Success: true},
	}
	for _, e := range events {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	tests := []struct {
		name      string
		target    string
		wantTotal int64
		wantFirst string
	}{
		{"all", "/v1/audit", 3, audit.EventUserDeleted},
		{"category", "/v1/audit?category=auth", 1, audit.EventLoginSuccess},
		{"event type", "/v1/audit?eventType=user_created", 1, audit.EventUserCreated},
		{"actor", "/v1/audit?actorId=" + admin.ID.Hex(), 1, audit.EventUserCreated},
		{"single day", "/v1/audit?from=2024-03-10&to=2024-03-10", 2, audit.EventUserCreated},
		{"paged", "/v1/audit?limit=1&page=2", 3, audit.EventUserCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.ServeList(rec, testutil.NewAuthenticatedRequest(http.MethodGet, tt.target, testutil.AdminPrincipal()))
			rec.AssertStatus(t, http.StatusOK)

			var body listBody
			rec.DecodeJSON(t, &body)
			if body.Total != tt.wantTotal {
				t.Fatalf("total = %d, want %d", body.Total, tt.wantTotal)
			}
			if len(body.Data) == 0 || body.Data[0].EventType != tt.wantFirst {
				t.Fatalf("first event = %+v, want %s", body.Data, tt.wantFirst)
			}
		})
	}

	t.Run("names resolved", func(t *testing.T) {
		rec := testutil.NewRecorder()
		h.ServeList(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/v1/audit?eventType=user_created", testutil.AdminPrincipal()))
		var body listBody
		rec.DecodeJSON(t, &body)
		if len(body.Data) != 1 {
			t.Fatalf("got %d events, want 1", len(body.Data))
		}
		if body.Data[0].ActorName != "Ada" || body.Data[0].UserName != "Bob" {
			t.Errorf("names = %q/%q, want Ada/Bob", body.Data[0].ActorName, body.Data[0].UserName)
		}
	})

	t.Run("unknown actor keeps id", func(t *testing.T) {
		rec := testutil.NewRecorder()
		h.ServeList(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/v1/audit?eventType=user_deleted", testutil.AdminPrincipal()))
		var body listBody
		rec.DecodeJSON(t, &body)
		if len(body.Data) != 1 || body.Data[0].ActorID != missing.Hex() || body.Data[0].ActorName != "" {
			t.Errorf("unexpected item %+v", body.Data)
		}
	})

	t.Run("limit capped", func(t *testing.T) {
		rec := testutil.NewRecorder()
		h.ServeList(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/v1/audit?limit=1000", testutil.AdminPrincipal()))
		var body listBody
		rec.DecodeJSON(t, &body)
		if body.Limit != auditlog.MaxPageSize || body.TotalPages != 1 {
			t.Errorf("limit/pages = %d/%d", body.Limit, body.TotalPages)
		}
	})

	t.Run("page far past the end", func(t *testing.T) {
		rec := testutil.NewRecorder()
		h.ServeList(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/v1/audit?limit=5&page=2305843009213693953", testutil.AdminPrincipal()))
		rec.AssertStatus(t, http.StatusOK)
		var body listBody
		rec.DecodeJSON(t, &body)
		if body.Page != auditlog.MaxPage || body.Total != 3 || len(body.Data) != 0 {
			t.Errorf("page/total/items = %d/%d/%d", body.Page, body.Total, len(body.Data))
		}
	})
}

func TestServeList_BadFilters(t *testing.T) {
	h, _, _ := setup(t)

	for _, target := range []string{
		"/v1/audit?category=security",
		"/v1/audit?category=auth&eventType=user_created",
		"/v1/audit?userId=nope",
		"/v1/audit?actorId=123",
		"/v1/audit?from=10-03-2024",
		"/v1/audit?to=tomorrow",
	} {
		t.Run(target, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.ServeList(rec, testutil.NewAuthenticatedRequest(http.MethodGet, target, testutil.AdminPrincipal()))
			rec.AssertStatus(t, http.StatusBadRequest)
		})
	}
}
