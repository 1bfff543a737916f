// internal/app/features/admin/login.go
package admin

import (
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/posthub/internal/app/features/errors"
	userstore "github.com/dalemusser/posthub/internal/app/store/users"
	"github.com/dalemusser/posthub/internal/app/system/respond"
	"github.com/dalemusser/posthub/internal/app/system/timeouts"
	"github.com/dalemusser/posthub/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin authenticates an admin by email and password, sets the auth
// cookie and returns the token.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := bind(w, r, &in); err != nil {
		h.ErrLog.Respond(w, r, "login", err)
		return
	}
	in.Email = strings.TrimSpace(in.Email)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login")
	defer cancel()

	if h.Limiter != nil {
		if ok, msg := h.Limiter.Check(r, in.Email); !ok {
			h.AuditLog.LoginFailedRateLimit(ctx, r, in.Email)
			h.ErrLog.Respond(w, r, "login", uierrors.TooManyRequests(msg))
			return
		}
	}

	u, err := h.Users.GetByEmail(ctx, in.Email)
	if errors.Is(err, userstore.ErrNotFound) || (err == nil && (u.Role != models.RoleAdmin || u.IsDeleted)) {
		h.AuditLog.LoginFailedUserNotFound(ctx, r, in.Email)
		h.ErrLog.Respond(w, r, "login", uierrors.NotFound(msgAdminNotFound))
		return
	}
	if err != nil {
		h.ErrLog.Respond(w, r, "load admin", uierrors.Store(err))
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.Password)) != nil {
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, u.Email)
		h.ErrLog.Respond(w, r, "login", uierrors.Invalid(msgInvalidPassword))
		return
	}

	token, err := h.Auth.IssueToken(u.ID, u.Role)
	if err != nil {
		h.ErrLog.Respond(w, r, "issue token", uierrors.Store(err))
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetEmail(in.Email)
	}
	h.Auth.SetCookie(w, token)
	h.AuditLog.LoginSuccess(ctx, r, u.ID, u.Email)
	h.Log.Info("admin logged in", zap.String("admin_id", u.ID.Hex()))

	respond.OK(w, loginResponse{Success: true, Message: msgLoginSuccessful, Admin: u, Token: token})
}

// HandleLogout clears the auth cookie. It succeeds with or without a valid token.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var adminID string
	if tok, err := h.Auth.TokenFromRequest(r); err == nil {
		if claims, err := h.Auth.ParseToken(tok); err == nil {
			adminID = claims.Subject
		}
	}
	h.Auth.ClearCookie(w)
	h.AuditLog.Logout(r.Context(), r, adminID)

	respond.OK(w, messageResponse{Success: true, Message: msgLoggedOut})
}

// ServeProfile returns the calling admin's account.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(w, r, h)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "admin profile")
	defer cancel()

	u, err := h.Users.GetByID(ctx, admin.ID)
	if errors.Is(err, userstore.ErrNotFound) {
		h.ErrLog.Respond(w, r, "admin profile", uierrors.NotFound(msgAdminNotFound))
		return
	}
	if err != nil {
		h.ErrLog.Respond(w, r, "admin profile", uierrors.Store(err))
		return
	}
	respond.OK(w, struct {
		Success bool         `json:"success"`
		Admin   *models.User `json:"admin"`
	}{true, u})
}
