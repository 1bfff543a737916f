package auth

import (
	"errors"
	"net/http"

	"github.com/dalemusser/posthub/internal/app/system/respond"
	"go.uber.org/zap"
)

// Client messages.
const (
	MsgNoToken       = "No token provided"
	MsgInvalidToken  = "Invalid token"
	MsgAdminNotFound = "Admin not found"
	MsgAccessDenied  = "Access denied"
)

// RequireAdmin resolves the request token to a live admin and places it in
// the request context.
//
//	no token            401 No token provided
//	bad or expired      401 Invalid token
//	subject not found   401 Admin not found
//	not an admin        403 Access denied
func (m *Manager) RequireAdmin(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := m.TokenFromRequest(r)
			if err != nil {
				if errors.Is(err, ErrMissingToken) {
					respond.Fail(w, http.StatusUnauthorized, MsgNoToken)
				} else {
					respond.Fail(w, http.StatusUnauthorized, MsgInvalidToken)
				}
				return
			}

			claims, err := m.ParseToken(raw)
			if err != nil {
				respond.Fail(w, http.StatusUnauthorized, MsgInvalidToken)
				return
			}

			p, err := m.fetcher.FetchPrincipal(r.Context(), claims.Subject)
			if err != nil {
				if log != nil {
					log.Error("auth: load principal failed", zap.Error(err), zap.String("subject", claims.Subject))
				}
				respond.Fail(w, http.StatusInternalServerError, err.Error())
				return
			}
			if p == nil {
				respond.Fail(w, http.StatusUnauthorized, MsgAdminNotFound)
				return
			}
			if p.Role != RoleAdmin {
				respond.Fail(w, http.StatusForbidden, MsgAccessDenied)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}
