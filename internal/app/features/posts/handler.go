// internal/app/features/posts/handler.go
package posts

import (
	uierrors "github.com/dalemusser/posthub/internal/app/features/errors"
	poststore "github.com/dalemusser/posthub/internal/app/store/posts"
	userstore "github.com/dalemusser/posthub/internal/app/store/users"
	"github.com/dalemusser/posthub/internal/app/system/auditlog"
	"github.com/dalemusser/posthub/internal/app/system/uploads"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MaxImages is the most images one request may upload.
const MaxImages = 10

type Handler struct {
	Posts   *poststore.Store
	Details *poststore.Details
	Users   *userstore.Store
	Uploads uploads.Store

	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

func NewHandler(db *mongo.Database, store uploads.Store, errLog *uierrors.ErrorLogger, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Posts:    poststore.New(db),
		Details:  poststore.NewDetails(db),
		Users:    userstore.New(db),
		Uploads:  store,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: auditLog,
	}
}
