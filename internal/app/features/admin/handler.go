// internal/app/features/admin/handler.go
package admin

import (
	uierrors "github.com/dalemusser/posthub/internal/app/features/errors"
	poststore "github.com/dalemusser/posthub/internal/app/store/posts"
	userstore "github.com/dalemusser/posthub/internal/app/store/users"
	"github.com/dalemusser/posthub/internal/app/system/auditlog"
	"github.com/dalemusser/posthub/internal/app/system/auth"
	"github.com/dalemusser/posthub/internal/app/system/ratelimit"
	"github.com/dalemusser/posthub/internal/app/system/uploads"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users   *userstore.Store
	Posts   *poststore.Details
	Auth    *auth.Manager
	Uploads uploads.Store
	Limiter *ratelimit.LoginLimiter

	// AllowRegistration mounts POST /register-admin.
	AllowRegistration bool

	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

// NewHandler constructs the admin feature handler bound to db.
func NewHandler(
	db *mongo.Database,
	am *auth.Manager,
	store uploads.Store,
	limiter *ratelimit.LoginLimiter,
	allowRegistration bool,
	errLog *uierrors.ErrorLogger,
	auditLog *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:             userstore.New(db),
		Posts:             poststore.NewDetails(db),
		Auth:              am,
		Uploads:           store,
		Limiter:           limiter,
		AllowRegistration: allowRegistration,
		Log:               logger,
		ErrLog:            errLog,
		AuditLog:          auditLog,
	}
}
