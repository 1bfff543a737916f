// internal/app/features/admin/users.go
package admin

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	uierrors "github.com/dalemusser/posthub/internal/app/features/errors"
	userstore "github.com/dalemusser/posthub/internal/app/store/users"
	"github.com/dalemusser/posthub/internal/app/system/formutil"
	"github.com/dalemusser/posthub/internal/app/system/inputval"
	"github.com/dalemusser/posthub/internal/app/system/respond"
	"github.com/dalemusser/posthub/internal/app/system/timeouts"
	"github.com/dalemusser/posthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// createUser stores the optional avatar, hashes password and inserts a
// role-user account. The avatar is removed again if the insert fails.
func (h *Handler) createUser(ctx context.Context, r *http.Request, name, email, password, status string, p profileFields) (models.User, error) {
	avatar, err := h.saveAvatar(ctx, r)
	if err != nil {
		return models.User{}, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		h.dropAvatar(ctx, avatar)
		return models.User{}, err
	}

	u := models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Avatar:   avatar,
		Role:     models.RoleUser,
		Status:   status,
	}
	p.apply(&u)

	created, err := h.Users.Create(ctx, u)
	if err != nil {
		h.dropAvatar(ctx, avatar)
		return models.User{}, err
	}
	return created, nil
}

type createUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	profileFields
}

// HandleCreateUser creates an inactive user on behalf of the calling admin.
func (h *Handler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(w, r, h)
	if !ok {
		return
	}
	var in createUserInput
	if err := bind(w, r, &in); err != nil {
		h.ErrLog.Respond(w, r, "create user", err)
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := checkNewUser(in.Name, in.Email, in.Password, msgWeakPassword); err != nil {
		h.ErrLog.Respond(w, r, "create user", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create user")
	defer cancel()

	exists, err := h.Users.EmailExists(ctx, in.Email)
	if err != nil {
		h.ErrLog.Respond(w, r, "check email", uierrors.Store(err))
		return
	}
	if exists {
		h.ErrLog.Respond(w, r, "create user", uierrors.Conflict(msgEmailExists))
		return
	}

	u, err := h.createUser(ctx, r, in.Name, in.Email, in.Password, models.StatusInactive, in.profileFields)
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		err = uierrors.Conflict(msgEmailExists)
	}
	if err != nil {
		h.ErrLog.Respond(w, r, "create user", err)
		return
	}
	h.AuditLog.UserCreated(ctx, r, admin.ID, u.ID, u.Email)

	respond.Created(w, userResponse{Success: true, Message: msgUserCreated, User: &u})
}

// ServeList returns every user that is not soft-deleted.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list users")
	defer cancel()

	users, err := h.Users.ListActive(ctx)
	if err != nil {
		h.ErrLog.Respond(w, r, "list users", uierrors.Store(err))
		return
	}
	respond.OK(w, usersResponse{Success: true, Message: msgUsersFetched, Users: users})
}

// ServeUser returns one user with their posts joined.
func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		h.ErrLog.Respond(w, r, "get user", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "get user")
	defer cancel()

	u, err := h.loadUser(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, "get user", err)
		return
	}
	posts, err := h.Posts.ListByUser(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, "list user posts", uierrors.Store(err))
		return
	}
	respond.OK(w, userDetailResponse{
		Success: true,
		Message: msgUserFetched,
		User:    userWithPosts{User: u, Posts: posts},
	})
}

func (h *Handler) loadUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := h.Users.GetByID(ctx, id)
	if errors.Is(err, userstore.ErrNotFound) {
		return nil, uierrors.NotFound(msgUserNotFound)
	}
	if err != nil {
		return nil, uierrors.Store(err)
	}
	return u, nil
}

// updateInput lists the fields an admin may change. Password and role are
// not editable here.
type updateInput struct {
	Name         *string        `json:"name"`
	Email        *string        `json:"email"`
	Status       *string        `json:"status"`
	PhoneNumber  *string        `json:"phoneNumber"`
	Address      *string        `json:"address"`
	State        *string        `json:"state"`
	ZipCode      *string        `json:"zipCode"`
	Country      *string        `json:"country"`
	Language     *formutil.List `json:"language"`
	TimeZone     *string        `json:"timeZone"`
	Currency     *string        `json:"currency"`
	Organization *string        `json:"organization"`
}

func (in updateInput) toUpdate() (userstore.Update, error) {
	upd := userstore.Update{
		Name:         in.Name,
		Email:        in.Email,
		Status:       in.Status,
		PhoneNumber:  in.PhoneNumber,
		Address:      in.Address,
		State:        in.State,
		ZipCode:      in.ZipCode,
		Country:      in.Country,
		TimeZone:     in.TimeZone,
		Currency:     in.Currency,
		Organization: in.Organization,
	}
	if in.Language != nil {
		lang := []string(*in.Language)
		upd.Language = &lang
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return upd, uierrors.Invalid("name cannot be empty")
	}
	if in.Email != nil && !inputval.IsValidEmail(*in.Email) {
		return upd, uierrors.Invalid(inputval.MsgInvalidEmail)
	}
	if in.Status != nil && !slices.Contains(userStatuses, strings.ToLower(strings.TrimSpace(*in.Status))) {
		return upd, uierrors.Invalid("status must be one of: " + strings.Join(userStatuses, ", "))
	}
	return upd, nil
}

var userStatuses = []string{models.StatusActive, models.StatusInactive, models.StatusPending}

// HandleUpdate applies a partial profile update, replacing the avatar when
// a new one is uploaded.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(w, r, h)
	if !ok {
		return
	}
	id, err := userIDParam(r)
	if err != nil {
		h.ErrLog.Respond(w, r, "update user", err)
		return
	}
	var in updateInput
	if err := bind(w, r, &in); err != nil {
		h.ErrLog.Respond(w, r, "update user", err)
		return
	}
	upd, err := in.toUpdate()
	if err != nil {
		h.ErrLog.Respond(w, r, "update user", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update user")
	defer cancel()

	before, err := h.loadUser(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, "update user", err)
		return
	}
	avatar, err := h.saveAvatar(ctx, r)
	if err != nil {
		h.ErrLog.Respond(w, r, "update user", err)
		return
	}
	if avatar != "" {
		upd.Avatar = &avatar
	}

	updated, err := h.Users.Update(ctx, id, upd)
	if err != nil {
		h.dropAvatar(ctx, avatar)
		switch {
		case errors.Is(err, userstore.ErrNotFound):
			err = uierrors.NotFound(msgUserNotFound)
		case errors.Is(err, userstore.ErrDuplicateEmail):
			err = uierrors.Conflict(msgEmailExists)
		default:
			err = uierrors.Store(err)
		}
		h.ErrLog.Respond(w, r, "update user", err)
		return
	}
	if avatar != "" && before.Avatar != "" {
		h.dropAvatar(ctx, before.Avatar)
	}
	h.AuditLog.UserUpdated(ctx, r, admin.ID, id, strings.Join(sortedFields(upd), ","))

	respond.OK(w, updatedResponse{Success: true, Message: msgUserUpdated, UpdatedUser: updated})
}

func sortedFields(upd userstore.Update) []string {
	f := upd.Fields()
	slices.Sort(f)
	return f
}

// HandleDelete soft-deletes a user.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(w, r, h)
	if !ok {
		return
	}
	id, err := userIDParam(r)
	if err != nil {
		h.ErrLog.Respond(w, r, "delete user", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete user")
	defer cancel()

	u, err := h.Users.SoftDelete(ctx, id, time.Now())
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		h.ErrLog.Respond(w, r, "delete user", uierrors.NotFound(msgUserNotFound))
		return
	case errors.Is(err, userstore.ErrAlreadyDeleted):
		h.ErrLog.Respond(w, r, "delete user", uierrors.Invalid(msgUserAlreadyGone))
		return
	case err != nil:
		h.ErrLog.Respond(w, r, "delete user", uierrors.Store(err))
		return
	}
	h.AuditLog.UserDeleted(ctx, r, admin.ID, id)

	respond.OK(w, userResponse{Success: true, Message: msgUserDeleted, User: u})
}
