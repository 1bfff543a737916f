// Package uploads stores user-supplied images (avatars, post images) on
// local disk or in a MinIO bucket and hands back public URLs.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxFileSize is the per-file upload limit.
const MaxFileSize = 5 << 20

// Object kinds, used as the first key segment.
const (
	KindAvatar = "avatars"
	KindPost   = "posts"
)

var (
	// ErrTooLarge is returned for files over MaxFileSize.
	ErrTooLarge = errors.New("file exceeds 5 MB limit")
	// ErrNotImage is returned for files that are not images.
	ErrNotImage = errors.New("only image files are allowed")
)

// Store is an object store addressed by slash-separated keys.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	// URL returns the public URL for key.
	URL(key string) string
	// KeyFromURL reverses URL. ok is false for URLs this store did not produce.
	KeyFromURL(url string) (key string, ok bool)
}

// Checker is implemented by stores that can report their own availability.
type Checker interface {
	Check(ctx context.Context) error
}

// Key builds a unique object key: kind/YYYY/MM/uuid8-filename.
func Key(kind, filename string, now time.Time) string {
	now = now.UTC()
	return path.Join(
		kind,
		fmt.Sprintf("%04d", now.Year()),
		fmt.Sprintf("%02d", int(now.Month())),
		uuid.New().String()[:8]+"-"+sanitizeFilename(filename),
	)
}

// sanitizeFilename replaces anything outside [A-Za-z0-9._-] and caps the
// length at 100 bytes, keeping a short extension.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if filename == "." || filename == "/" {
		filename = ""
	}

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 {
		return "file"
	}
	if len(result) > 100 {
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}
	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}

// SaveFormFile validates fh as an image within MaxFileSize and stores it
// under a fresh key of the given kind. It returns the public URL.
func SaveFormFile(ctx context.Context, store Store, kind string, fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxFileSize {
		return "", ErrTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	// Content type comes from the bytes, not the client header.
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	contentType := http.DetectContentType(head[:n])
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrNotImage
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	key := Key(kind, fh.Filename, time.Now())
	if err := store.Put(ctx, key, f, fh.Size, contentType); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return store.URL(key), nil
}

// SaveFormFiles stores each file in order. On failure the files already
// stored are removed and the error is returned.
func SaveFormFiles(ctx context.Context, store Store, kind string, files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		u, err := SaveFormFile(ctx, store, kind, fh)
		if err != nil {
			RemoveURLs(ctx, store, urls)
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, nil
}

// RemoveURLs deletes the objects behind urls, ignoring URLs the store does
// not own. It returns the first error but attempts every URL.
func RemoveURLs(ctx context.Context, store Store, urls []string) error {
	var first error
	for _, u := range urls {
		key, ok := store.KeyFromURL(u)
		if !ok {
			continue
		}
		if err := store.Delete(ctx, key); err != nil && first == nil {
			first = err
		}
	}
	return first
}
