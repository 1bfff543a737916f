package poststore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/posthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound        = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrAlreadyLiked    = errors.New("user already liked this post")
	ErrAlreadyDisliked = errors.New("user already disliked this post")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("posts")}
}

// Create inserts p with empty reaction and comment lists.
func (s *Store) Create(ctx context.Context, p models.Post) (models.Post, error) {
	p.ID = primitive.NewObjectID()
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Categories == nil {
		p.Categories = []string{}
	}
	p.Likes = []primitive.ObjectID{}
	p.Dislikes = []primitive.ObjectID{}
	p.Comments = []models.Comment{}
	p.LikeCount, p.DislikeCount, p.CommentCount = 0, 0, 0

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Post{}, err
	}
	return p, nil
}

// GetByID loads a post.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var p models.Post
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns all posts, newest first.
func (s *Store) List(ctx context.Context) ([]models.Post, error) {
	return s.find(ctx, bson.M{})
}

// ListByUser returns the posts owned by userID, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	return s.find(ctx, bson.M{"user": userID})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Post{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update holds editable post fields. Nil fields are left unchanged.
type Update struct {
	Title      *string
	Desc       *string
	Categories *[]string
	Images     *[]string
}

// Update applies upd and returns the post as it was before and after.
// The previous version lets callers clean up images that were dropped.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (before, after *models.Post, err error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Desc != nil {
		set["desc"] = *upd.Desc
	}
	if upd.Categories != nil {
		set["categories"] = *upd.Categories
	}
	if upd.Images != nil {
		set["images"] = *upd.Images
	}

	var prev models.Post
	err = s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.Before)).Decode(&prev)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	next := prev
	if upd.Title != nil {
		next.Title = *upd.Title
	}
	if upd.Desc != nil {
		next.Desc = *upd.Desc
	}
	if upd.Categories != nil {
		next.Categories = *upd.Categories
	}
	if upd.Images != nil {
		next.Images = *upd.Images
	}
	next.UpdatedAt = set["updatedAt"].(time.Time)
	return &prev, &next, nil
}

// Delete removes the post and returns it.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var p models.Post
	if err := s.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
