// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/posthub/internal/app/system/respond"
	"go.uber.org/zap"
)

// ErrorLogger writes classified failures as JSON and logs the server-side ones.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

// Respond writes err as {"success":false,"message":...} with the status of
// its Kind. Store failures are logged with op before responding.
func (e *ErrorLogger) Respond(w http.ResponseWriter, r *http.Request, op string, err error) {
	if KindOf(err) == KindStore {
		e.LogServerError(w, r, op, err)
		return
	}
	respond.Fail(w, StatusOf(err), MessageOf(err))
}

// LogServerError logs err and responds 500 with the error's message.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if e != nil && e.Log != nil {
		e.Log.Error(op,
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
	}
	respond.Fail(w, http.StatusInternalServerError, MessageOf(err))
}
