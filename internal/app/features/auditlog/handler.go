// internal/app/features/auditlog/handler.go
package auditlog

import (
	"time"

	uierrors "github.com/dalemusser/posthub/internal/app/features/errors"
	"github.com/dalemusser/posthub/internal/app/store/audit"
	userstore "github.com/dalemusser/posthub/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Events *audit.Store
	Users  *userstore.Store
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger

	// Loc interprets the from/to calendar days.
	Loc *time.Location
}

// NewHandler constructs an Audit Log feature handler bound to
// the given Mongo database and logger. A nil loc means UTC.
func NewHandler(db *mongo.Database, loc *time.Location, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		Events: audit.New(db),
		Users:  userstore.New(db),
		Log:    logger,
		ErrLog: errLog,
		Loc:    loc,
	}
}
