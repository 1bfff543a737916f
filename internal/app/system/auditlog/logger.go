// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/posthub/internal/app/store/audit"
	"github.com/dalemusser/posthub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destination settings for a category.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"
	ModeLog = "log"
	ModeOff = "off"
)

// Config selects where each category of events goes.
type Config struct {
	Auth  string
	Admin string
}

// Logger records audit events to the audit_events collection and/or zap.
// A nil *Logger is valid and drops everything.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

// NewNopLogger returns a Logger with every category switched off.
func NewNopLogger() *Logger {
	return &Logger{zapLog: zap.NewNop(), config: Config{Auth: ModeOff, Admin: ModeOff}}
}

// IsValidMode reports whether s is a recognised destination setting.
func IsValidMode(s string) bool {
	switch s {
	case ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.PostID != nil {
		fields = append(fields, zap.String("post_id", event.PostID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to the setting for its category.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = ModeAll
	}
	if setting == ModeOff || setting == "" {
		return
	}

	if setting == ModeAll || setting == ModeLog {
		l.logToZap(event)
	}
	if (setting == ModeAll || setting == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func base(r *http.Request, category, eventType string, success bool) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

// --- Authentication events ---

// LoginSuccess logs a successful admin login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginSuccess, true)
	e.UserID = &userID
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginFailedUserNotFound logs a login for an unknown or non-admin email.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, email string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginFailedUserNotFound, false)
	e.FailureReason = "admin not found"
	e.Details = map[string]string{"attempted_email": email}
	l.Log(ctx, e)
}

// LoginFailedWrongPassword logs a login with a bad password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginFailedWrongPassword, false)
	e.UserID = &userID
	e.FailureReason = "wrong password"
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginFailedRateLimit logs a login rejected by the limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, email string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginFailedRateLimit, false)
	e.FailureReason = "rate limit exceeded"
	e.Details = map[string]string{"attempted_email": email}
	l.Log(ctx, e)
}

// Logout logs an admin logout. adminID may be empty when no valid token was sent.
func (l *Logger) Logout(ctx context.Context, r *http.Request, adminID string) {
	e := base(r, audit.CategoryAuth, audit.EventLogout, true)
	if oid, err := primitive.ObjectIDFromHex(adminID); err == nil {
		e.UserID = &oid
	}
	l.Log(ctx, e)
}

// AdminRegistered logs a new admin account.
func (l *Logger) AdminRegistered(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	e := base(r, audit.CategoryAuth, audit.EventAdminRegistered, true)
	e.UserID = &userID
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// UserRegistered logs a public self-registration.
func (l *Logger) UserRegistered(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	e := base(r, audit.CategoryAuth, audit.EventUserRegistered, true)
	e.UserID = &userID
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// --- Admin events ---

func (l *Logger) adminUser(ctx context.Context, r *http.Request, eventType string, actorID, userID primitive.ObjectID, details map[string]string) {
	e := base(r, audit.CategoryAdmin, eventType, true)
	e.ActorID = &actorID
	e.UserID = &userID
	e.Details = details
	l.Log(ctx, e)
}

func (l *Logger) adminPost(ctx context.Context, r *http.Request, eventType string, actorID, postID primitive.ObjectID, details map[string]string) {
	e := base(r, audit.CategoryAdmin, eventType, true)
	e.ActorID = &actorID
	e.PostID = &postID
	e.Details = details
	l.Log(ctx, e)
}

// UserCreated logs an admin creating a user.
func (l *Logger) UserCreated(ctx context.Context, r *http.Request, actorID, userID primitive.ObjectID, email string) {
	l.adminUser(ctx, r, audit.EventUserCreated, actorID, userID, map[string]string{"email": email})
}

// UserUpdated logs an admin editing a user. fields lists what changed.
func (l *Logger) UserUpdated(ctx context.Context, r *http.Request, actorID, userID primitive.ObjectID, fields string) {
	l.adminUser(ctx, r, audit.EventUserUpdated, actorID, userID, map[string]string{"fields": fields})
}

// UserDeleted logs a soft delete.
func (l *Logger) UserDeleted(ctx context.Context, r *http.Request, actorID, userID primitive.ObjectID) {
	l.adminUser(ctx, r, audit.EventUserDeleted, actorID, userID, nil)
}

// PostCreated logs a post created by an admin on behalf of ownerID.
func (l *Logger) PostCreated(ctx context.Context, r *http.Request, actorID, postID, ownerID primitive.ObjectID) {
	l.adminPost(ctx, r, audit.EventPostCreated, actorID, postID, map[string]string{"owner_id": ownerID.Hex()})
}

// PostUpdated logs a post edit.
func (l *Logger) PostUpdated(ctx context.Context, r *http.Request, actorID, postID primitive.ObjectID) {
	l.adminPost(ctx, r, audit.EventPostUpdated, actorID, postID, nil)
}

// PostDeleted logs a post removal.
func (l *Logger) PostDeleted(ctx context.Context, r *http.Request, actorID, postID primitive.ObjectID, title string) {
	l.adminPost(ctx, r, audit.EventPostDeleted, actorID, postID, map[string]string{"title": title})
}

// CommentDeleted logs a comment removal.
func (l *Logger) CommentDeleted(ctx context.Context, r *http.Request, actorID, postID, commentID primitive.ObjectID) {
	l.adminPost(ctx, r, audit.EventCommentDeleted, actorID, postID, map[string]string{"comment_id": commentID.Hex()})
}
