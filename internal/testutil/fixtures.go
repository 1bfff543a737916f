package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/posthub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Calling it again on the returned request adds to the same route context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insertUser(ctx context.Context, u models.User) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	if u.Status == "" {
		u.Status = models.StatusActive
	}
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateUser inserts an active role=user account. Country is stored as
// given so case-folding behavior can be tested.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, country string) models.User {
	f.t.Helper()
	return f.insertUser(ctx, models.User{
		Name:    name,
		Email:   email,
		Role:    models.RoleUser,
		Country: country,
	})
}

// CreateAdmin inserts an admin whose password is password (bcrypt-hashed
// at minimum cost).
func (f *Fixtures) CreateAdmin(ctx context.Context, name, email, password string) models.User {
	f.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash password: %v", err)
	}
	return f.insertUser(ctx, models.User{
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     models.RoleAdmin,
	})
}

// SetStatus sets a user's status and bumps updatedAt.
func (f *Fixtures) SetStatus(ctx context.Context, id primitive.ObjectID, status string) {
	f.t.Helper()
	_, err := f.db.Collection("users").UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		f.t.Fatalf("failed to set status: %v", err)
	}
}

// SoftDeleteUser flags a user deleted now.
func (f *Fixtures) SoftDeleteUser(ctx context.Context, id primitive.ObjectID) {
	f.t.Helper()
	now := time.Now().UTC()
	_, err := f.db.Collection("users").UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"isDeleted": true,
		"deletedAt": now,
		"updatedAt": now,
	}})
	if err != nil {
		f.t.Fatalf("failed to soft delete user: %v", err)
	}
}

// CreatePost inserts a post owned by owner with empty reaction and
// comment lists.
func (f *Fixtures) CreatePost(ctx context.Context, owner primitive.ObjectID, title string, categories []string) models.Post {
	f.t.Helper()

	if categories == nil {
		categories = []string{}
	}
	now := time.Now().UTC()
	p := models.Post{
		ID:         primitive.NewObjectID(),
		Title:      title,
		Desc:       title + " description",
		Images:     []string{},
		Categories: categories,
		User:       owner,
		Likes:      []primitive.ObjectID{},
		Dislikes:   []primitive.ObjectID{},
		Comments:   []models.Comment{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("posts").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test post: %v", err)
	}
	return p
}

// AddComment appends a comment by userID to the post and keeps
// commentCount in step.
func (f *Fixtures) AddComment(ctx context.Context, postID, userID primitive.ObjectID, text string) models.Comment {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := f.db.Collection("posts").UpdateByID(ctx, postID, bson.M{
		"$push": bson.M{"comments": c},
		"$inc":  bson.M{"commentCount": 1},
	})
	if err != nil {
		f.t.Fatalf("failed to add comment: %v", err)
	}
	return c
}
