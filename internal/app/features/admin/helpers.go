// internal/app/features/admin/helpers.go
package admin

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/posthub/internal/app/features/errors"
	"github.com/dalemusser/posthub/internal/app/system/auth"
	"github.com/dalemusser/posthub/internal/app/system/formutil"
	"github.com/dalemusser/posthub/internal/app/system/uploads"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the cost existing password hashes were created with.
const bcryptCost = 10

func hashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// userIDParam parses the {id} URL parameter. Malformed ids are reported as
// a missing user.
func userIDParam(r *http.Request) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, uierrors.NotFound(msgUserNotFound)
	}
	return oid, nil
}

// bind decodes the body into dst, mapping decode failures to 400.
func bind(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := formutil.Bind(w, r, dst); err != nil {
		return uierrors.Invalid(err.Error())
	}
	return nil
}

// saveAvatar stores the optional "avatar" upload and returns its URL, or
// "" when none was sent.
func (h *Handler) saveAvatar(ctx context.Context, r *http.Request) (string, error) {
	fh := formutil.File(r, "avatar")
	if fh == nil {
		return "", nil
	}
	url, err := uploads.SaveFormFile(ctx, h.Uploads, uploads.KindAvatar, fh)
	switch {
	case errors.Is(err, uploads.ErrTooLarge), errors.Is(err, uploads.ErrNotImage):
		return "", uierrors.Invalid(err.Error())
	case err != nil:
		return "", uierrors.Store(err)
	}
	return url, nil
}

// dropAvatar removes a stored avatar, logging rather than failing.
func (h *Handler) dropAvatar(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := uploads.RemoveURLs(ctx, h.Uploads, []string{url}); err != nil {
		h.Log.Warn("remove avatar failed", zap.String("url", url), zap.Error(err))
	}
}

// requireAdmin returns the authenticated admin, responding 401 when the
// request carries none.
func requireAdmin(w http.ResponseWriter, r *http.Request, h *Handler) (*auth.Principal, bool) {
	admin, ok := auth.CurrentAdmin(r)
	if !ok {
		h.ErrLog.Respond(w, r, "admin required", uierrors.Unauthenticated(msgAdminNotFound))
		return nil, false
	}
	return admin, true
}
