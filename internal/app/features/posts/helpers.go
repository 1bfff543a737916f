// internal/app/features/posts/helpers.go
package posts

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"slices"

	uierrors "github.com/dalemusser/posthub/internal/app/features/errors"
	poststore "github.com/dalemusser/posthub/internal/app/store/posts"
	"github.com/dalemusser/posthub/internal/app/system/auth"
	"github.com/dalemusser/posthub/internal/app/system/formutil"
	"github.com/dalemusser/posthub/internal/app/system/uploads"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// objectIDParam parses a URL parameter. Malformed ids are reported with
// notFound, since no document can carry them.
func objectIDParam(r *http.Request, name, notFound string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		return primitive.NilObjectID, uierrors.NotFound(notFound)
	}
	return oid, nil
}

// storeErr maps post store failures onto client errors.
func storeErr(err error) error {
	switch {
	case errors.Is(err, poststore.ErrNotFound):
		return uierrors.NotFound(msgPostNotFound)
	case errors.Is(err, poststore.ErrCommentNotFound):
		return uierrors.NotFound(msgCommentNotFound)
	case errors.Is(err, poststore.ErrAlreadyLiked):
		return uierrors.Invalid(msgAlreadyLiked)
	case errors.Is(err, poststore.ErrAlreadyDisliked):
		return uierrors.Invalid(msgAlreadyDisliked)
	default:
		return uierrors.Store(err)
	}
}

func bind(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := formutil.Bind(w, r, dst); err != nil {
		return uierrors.Invalid(err.Error())
	}
	return nil
}

func requireAdmin(w http.ResponseWriter, r *http.Request, h *Handler) (*auth.Principal, bool) {
	admin, ok := auth.CurrentAdmin(r)
	if !ok {
		h.ErrLog.Respond(w, r, "admin required", uierrors.Unauthenticated("Admin not found"))
		return nil, false
	}
	return admin, true
}

// imageFiles returns the uploaded "images" parts, rejecting more than MaxImages.
func imageFiles(r *http.Request) ([]*multipart.FileHeader, error) {
	files := formutil.Files(r, "images")
	if len(files) > MaxImages {
		return nil, uierrors.Invalid(msgTooManyImages)
	}
	return files, nil
}

func (h *Handler) saveImages(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	urls, err := uploads.SaveFormFiles(ctx, h.Uploads, uploads.KindPost, files)
	switch {
	case errors.Is(err, uploads.ErrTooLarge), errors.Is(err, uploads.ErrNotImage):
		return nil, uierrors.Invalid(err.Error())
	case err != nil:
		return nil, uierrors.Store(err)
	}
	return urls, nil
}

// removeImages deletes stored images, logging failures. Image cleanup
// never fails the request that triggered it.
func (h *Handler) removeImages(ctx context.Context, urls []string) {
	if len(urls) == 0 {
		return
	}
	if err := uploads.RemoveURLs(ctx, h.Uploads, urls); err != nil {
		h.Log.Warn("remove post images failed", zap.Strings("urls", urls), zap.Error(err))
	}
}

// dropped returns the entries of before missing from kept.
func dropped(before, kept []string) []string {
	var out []string
	for _, img := range before {
		if !slices.Contains(kept, img) {
			out = append(out, img)
		}
	}
	return out
}
