// internal/app/features/auditlog/list.go
package auditlog

import (
	"errors"
	"net/http"
	"slices"
	"strconv"
	"time"

	uierrors "github.com/dalemusser/posthub/internal/app/features/errors"
	"github.com/dalemusser/posthub/internal/app/store/audit"
	"github.com/dalemusser/posthub/internal/app/system/daterange"
	"github.com/dalemusser/posthub/internal/app/system/respond"
	"github.com/dalemusser/posthub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeList handles GET /v1/audit.
//
// Query parameters, all optional:
//
//	category   auth | admin
//	eventType  one of the recorded event types
//	userId     affected user
//	actorId    acting admin
//	from, to   YYYY-MM-DD, inclusive
//	page       1-based, default 1, at most MaxPage
//	limit      default 50, at most 200
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	filter, page, limit, err := h.parseFilter(r)
	if err != nil {
		h.ErrLog.Respond(w, r, "audit log: parse filter", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.ErrLog.Respond(w, r, "audit log: query", uierrors.Store(err))
		return
	}
	total, err := h.Events.Count(ctx, filter)
	if err != nil {
		h.ErrLog.Respond(w, r, "audit log: count", uierrors.Store(err))
		return
	}

	// Collect unique user ids for name resolution
	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, e := range events {
		for _, id := range []*primitive.ObjectID{e.ActorID, e.UserID} {
			if id == nil {
				continue
			}
			if _, ok := seen[*id]; !ok {
				seen[*id] = struct{}{}
				ids = append(ids, *id)
			}
		}
	}
	refs, err := h.Users.Refs(ctx, ids)
	if err != nil {
		h.Log.Warn("failed to resolve user names for audit log", zap.Error(err))
	}

	items := make([]eventItem, 0, len(events))
	for _, e := range events {
		item := eventItem{
			ID:            e.ID.Hex(),
			Timestamp:     e.Timestamp,
			Category:      e.Category,
			EventType:     e.EventType,
			IP:            e.IP,
			Success:       e.Success,
			FailureReason: e.FailureReason,
			Details:       e.Details,
		}
		if e.ActorID != nil {
			item.ActorID = e.ActorID.Hex()
			item.ActorName = refs[*e.ActorID].Name
		}
		if e.UserID != nil {
			item.UserID = e.UserID.Hex()
			item.UserName = refs[*e.UserID].Name
		}
		if e.PostID != nil {
			item.PostID = e.PostID.Hex()
		}
		items = append(items, item)
	}

	respond.OK(w, listResponse{
		Success:    true,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
		Data:       items,
	})
}

func (h *Handler) parseFilter(r *http.Request) (audit.QueryFilter, int, int, error) {
	var f audit.QueryFilter

	f.Category = query.Get(r, "category")
	known := eventTypesForCategory(f.Category)
	if known == nil {
		return f, 0, 0, uierrors.Invalid("category must be auth or admin")
	}
	if f.EventType = query.Get(r, "eventType"); f.EventType != "" && !slices.Contains(known, f.EventType) {
		return f, 0, 0, uierrors.Invalid("Unknown eventType")
	}

	var err error
	if f.UserID, err = optionalID(query.Get(r, "userId")); err != nil {
		return f, 0, 0, uierrors.Invalid("Invalid userId")
	}
	if f.ActorID, err = optionalID(query.Get(r, "actorId")); err != nil {
		return f, 0, 0, uierrors.Invalid("Invalid actorId")
	}

	if s := query.Get(r, "from"); s != "" {
		t, err := time.ParseInLocation(daterange.KeyLayout, s, h.Loc)
		if err != nil {
			return f, 0, 0, uierrors.Invalid("Invalid from date")
		}
		start := daterange.StartOfDay(t).UTC()
		f.StartTime = &start
	}
	if s := query.Get(r, "to"); s != "" {
		t, err := time.ParseInLocation(daterange.KeyLayout, s, h.Loc)
		if err != nil {
			return f, 0, 0, uierrors.Invalid("Invalid to date")
		}
		end := daterange.EndOfDay(t).UTC()
		f.EndTime = &end
	}

	page := min(positive(query.Get(r, "page"), 1), MaxPage)
	limit := min(positive(query.Get(r, "limit"), DefaultPageSize), MaxPageSize)
	f.Limit = int64(limit)
	f.Offset = int64(page-1) * int64(limit)
	return f, page, limit, nil
}

var errBadID = errors.New("invalid object id")

func optionalID(s string) (*primitive.ObjectID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return nil, errBadID
	}
	return &id, nil
}

func positive(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
