// internal/app/features/auditlog/types.go
package auditlog

import (
	"math"
	"time"

	"github.com/dalemusser/posthub/internal/app/store/audit"
)

// Paging bounds for GET /v1/audit. Larger page numbers are clamped to MaxPage.
const (
	DefaultPageSize = 50
	MaxPageSize     = 200
	MaxPage         = math.MaxInt32
)

// eventItem is one audit event as returned to the client. Actor and
// target names are resolved from the users collection when possible.
type eventItem struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"eventType"`
	ActorID       string            `json:"actorId,omitempty"`
	ActorName     string            `json:"actorName,omitempty"`
	UserID        string            `json:"userId,omitempty"`
	UserName      string            `json:"userName,omitempty"`
	PostID        string            `json:"postId,omitempty"`
	IP            string            `json:"ip"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failureReason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

type listResponse struct {
	Success    bool        `json:"success"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"totalPages"`
	Data       []eventItem `json:"data"`
}

// eventTypesForCategory returns the event types recorded under category.
// An empty category returns every type; an unknown one returns nil.
func eventTypesForCategory(category string) []string {
	authEvents := []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailedUserNotFound,
		audit.EventLoginFailedWrongPassword,
		audit.EventLoginFailedRateLimit,
		audit.EventLogout,
		audit.EventAdminRegistered,
		audit.EventUserRegistered,
	}

	adminEvents := []string{
		audit.EventUserCreated,
		audit.EventUserUpdated,
		audit.EventUserDeleted,
		audit.EventPostCreated,
		audit.EventPostUpdated,
		audit.EventPostDeleted,
		audit.EventCommentDeleted,
	}

	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(adminEvents))
		all = append(all, authEvents...)
		all = append(all, adminEvents...)
		return all
	default:
		return nil
	}
}
