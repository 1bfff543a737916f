// internal/app/features/admin/register.go
package admin

import (
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/posthub/internal/app/features/errors"
	userstore "github.com/dalemusser/posthub/internal/app/store/users"
	"github.com/dalemusser/posthub/internal/app/system/inputval"
	"github.com/dalemusser/posthub/internal/app/system/respond"
	"github.com/dalemusser/posthub/internal/app/system/timeouts"
	"github.com/dalemusser/posthub/internal/domain/models"
)

type registerAdminInput struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleRegisterAdmin creates an admin account and returns a token for it.
func (h *Handler) HandleRegisterAdmin(w http.ResponseWriter, r *http.Request) {
	var in registerAdminInput
	if err := bind(w, r, &in); err != nil {
		h.ErrLog.Respond(w, r, "register admin", err)
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := inputval.Struct(in); err != nil {
		h.ErrLog.Respond(w, r, "register admin", uierrors.Invalid(inputval.Message(err)))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "register admin")
	defer cancel()

	hash, err := hashPassword(in.Password)
	if err != nil {
		h.ErrLog.Respond(w, r, "hash password", uierrors.Store(err))
		return
	}
	u, err := h.Users.Create(ctx, models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Role:     models.RoleAdmin,
		Status:   models.StatusActive,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		h.ErrLog.Respond(w, r, "register admin", uierrors.Invalid(msgAdminExists))
		return
	}
	if err != nil {
		h.ErrLog.Respond(w, r, "register admin", uierrors.Store(err))
		return
	}

	token, err := h.Auth.IssueToken(u.ID, u.Role)
	if err != nil {
		h.ErrLog.Respond(w, r, "issue token", uierrors.Store(err))
		return
	}
	h.AuditLog.AdminRegistered(ctx, r, u.ID, u.Email)

	respond.Created(w, tokenResponse{Success: true, Message: msgAdminRegistered, Token: token})
}

type registerUserInput struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
	profileFields
}

// checkNewUser applies the shared name/email/password rules of the two
// user-creation endpoints. weakMsg is the message for a weak password.
func checkNewUser(name, email, password, weakMsg string) error {
	if name == "" || email == "" || password == "" {
		return uierrors.Invalid(msgAllFieldsRequired)
	}
	if !inputval.IsValidEmail(email) {
		return uierrors.Invalid(inputval.MsgInvalidEmail)
	}
	if !inputval.IsStrongPassword(password) {
		return uierrors.Invalid(weakMsg)
	}
	return nil
}

// HandleRegisterUser is the public self-registration endpoint.
func (h *Handler) HandleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var in registerUserInput
	if err := bind(w, r, &in); err != nil {
		h.ErrLog.Respond(w, r, "register user", err)
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := checkNewUser(in.Name, in.Email, in.Password, inputval.MsgWeakPassword); err != nil {
		h.ErrLog.Respond(w, r, "register user", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "register user")
	defer cancel()

	exists, err := h.Users.EmailExists(ctx, in.Email)
	if err != nil {
		h.ErrLog.Respond(w, r, "check email", uierrors.Store(err))
		return
	}
	if exists {
		h.ErrLog.Respond(w, r, "register user", uierrors.Invalid(msgUserExists))
		return
	}

	u, err := h.createUser(ctx, r, in.Name, in.Email, in.Password, models.StatusActive, in.profileFields)
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		err = uierrors.Invalid(msgUserExists)
	}
	if err != nil {
		h.ErrLog.Respond(w, r, "register user", err)
		return
	}
	h.AuditLog.UserRegistered(ctx, r, u.ID, u.Email)

	respond.OK(w, userResponse{Success: true, User: &u})
}
