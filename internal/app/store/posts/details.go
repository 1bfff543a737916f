package poststore

import (
	"context"

	userstore "github.com/dalemusser/posthub/internal/app/store/users"
	"github.com/dalemusser/posthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Details joins posts with the users they reference.
type Details struct {
	posts *Store
	users *userstore.Store
}

// NewDetails creates a Details over db.
func NewDetails(db *mongo.Database) *Details {
	return &Details{posts: New(db), users: userstore.New(db)}
}

// Get returns one post with owner, commenters, likers and dislikers resolved.
func (d *Details) Get(ctx context.Context, id primitive.ObjectID) (*models.PostDetail, error) {
	p, err := d.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := d.Join(ctx, []models.Post{*p})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// List returns every post joined, newest first.
func (d *Details) List(ctx context.Context) ([]models.PostDetail, error) {
	posts, err := d.posts.List(ctx)
	if err != nil {
		return nil, err
	}
	return d.Join(ctx, posts)
}

// ListByUser returns userID's posts joined, newest first.
func (d *Details) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.PostDetail, error) {
	posts, err := d.posts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return d.Join(ctx, posts)
}

// Join resolves every user reference in posts with a single users query.
func (d *Details) Join(ctx context.Context, posts []models.Post) ([]models.PostDetail, error) {
	refs, err := d.users.Refs(ctx, referencedUsers(posts))
	if err != nil {
		return nil, err
	}
	out := make([]models.PostDetail, 0, len(posts))
	for _, p := range posts {
		out = append(out, JoinPost(p, refs))
	}
	return out, nil
}

func referencedUsers(posts []models.Post) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	add := func(id primitive.ObjectID) {
		if id.IsZero() {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, p := range posts {
		add(p.User)
		for _, id := range p.Likes {
			add(id)
		}
		for _, id := range p.Dislikes {
			add(id)
		}
		for _, c := range p.Comments {
			add(c.UserID)
		}
	}
	return ids
}

// JoinPost builds the detail view of p from resolved refs. Missing owners
// and comment authors become nil; missing likers and dislikers are omitted.
func JoinPost(p models.Post, refs map[primitive.ObjectID]models.UserRef) models.PostDetail {
	lookup := func(id primitive.ObjectID) *models.UserRef {
		if ref, ok := refs[id]; ok {
			return &ref
		}
		return nil
	}
	list := func(ids []primitive.ObjectID) []models.UserRef {
		out := []models.UserRef{}
		for _, id := range ids {
			if ref, ok := refs[id]; ok {
				out = append(out, ref)
			}
		}
		return out
	}

	comments := make([]models.CommentDetail, 0, len(p.Comments))
	for _, c := range p.Comments {
		comments = append(comments, models.CommentDetail{
			ID:        c.ID,
			User:      lookup(c.UserID),
			Text:      c.Text,
			Emoji:     c.Emoji,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}

	images, categories := p.Images, p.Categories
	if images == nil {
		images = []string{}
	}
	if categories == nil {
		categories = []string{}
	}

	return models.PostDetail{
		ID:           p.ID,
		Title:        p.Title,
		Desc:         p.Desc,
		Images:       images,
		Categories:   categories,
		User:         lookup(p.User),
		LikeCount:    p.LikeCount,
		Likes:        list(p.Likes),
		DislikeCount: p.DislikeCount,
		Dislikes:     list(p.Dislikes),
		CommentCount: p.CommentCount,
		Comments:     comments,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
