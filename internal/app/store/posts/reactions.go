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

// Reaction selects the list a user is added to.
type Reaction int

const (
	Like Reaction = iota
	Dislike
)

func (r Reaction) fields() (target, opposite string) {
	if r == Like {
		return "likes", "dislikes"
	}
	return "dislikes", "likes"
}

// ReactionPipeline builds the update that appends userID to the reaction's
// list, removes it from the opposite list, and recomputes both counters from
// the list lengths. It runs as a single document update, so concurrent
// toggles cannot leave a user in both lists or a counter out of step.
func ReactionPipeline(r Reaction, userID primitive.ObjectID, now time.Time) mongo.Pipeline {
	target, opposite := r.fields()
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			target: bson.M{"$concatArrays": bson.A{
				bson.M{"$ifNull": bson.A{"$" + target, bson.A{}}},
				bson.A{userID},
			}},
			opposite: bson.M{"$filter": bson.M{
				"input": bson.M{"$ifNull": bson.A{"$" + opposite, bson.A{}}},
				"cond":  bson.M{"$ne": bson.A{"$$this", userID}},
			}},
			"updatedAt": now,
		}}},
		{{Key: "$set", Value: bson.M{
			"likeCount":    bson.M{"$size": "$likes"},
			"dislikeCount": bson.M{"$size": "$dislikes"},
		}}},
	}
}

// React records userID's reaction on post id and returns the updated post.
// A user who already holds this reaction gets ErrAlreadyLiked or
// ErrAlreadyDisliked.
func (s *Store) React(ctx context.Context, id, userID primitive.ObjectID, r Reaction) (*models.Post, error) {
	target, _ := r.fields()
	filter := bson.M{"_id": id, target: bson.M{"$ne": userID}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.Post
	err := s.c.FindOneAndUpdate(ctx, filter, ReactionPipeline(r, userID, time.Now().UTC()), opts).Decode(&p)
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	if _, getErr := s.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	if r == Like {
		return nil, ErrAlreadyLiked
	}
	return nil, ErrAlreadyDisliked
}

// Like is React with Like.
func (s *Store) Like(ctx context.Context, id, userID primitive.ObjectID) (*models.Post, error) {
	return s.React(ctx, id, userID, Like)
}

// Dislike is React with Dislike.
func (s *Store) Dislike(ctx context.Context, id, userID primitive.ObjectID) (*models.Post, error) {
	return s.React(ctx, id, userID, Dislike)
}

// AddComment appends c to the post and returns the stored comment and the
// new comment count.
func (s *Store) AddComment(ctx context.Context, id primitive.ObjectID, c models.Comment) (models.Comment, int, error) {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = now
	c.UpdatedAt = now

	// $literal keeps user text starting with "$" from being read as a field path.
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"comments": bson.M{"$concatArrays": bson.A{
				bson.M{"$ifNull": bson.A{"$comments", bson.A{}}},
				bson.A{bson.M{"$literal": c}},
			}},
			"updatedAt": now,
		}}},
		{{Key: "$set", Value: bson.M{"commentCount": bson.M{"$size": "$comments"}}}},
	}

	var p struct {
		CommentCount int `bson:"commentCount"`
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"commentCount": 1})
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, pipeline, opts).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Comment{}, 0, ErrNotFound
		}
		return models.Comment{}, 0, err
	}
	return c, p.CommentCount, nil
}

// DeleteComment removes one comment and returns the new comment count.
func (s *Store) DeleteComment(ctx context.Context, postID, commentID primitive.ObjectID) (int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"comments": bson.M{"$filter": bson.M{
				"input": "$comments",
				"cond":  bson.M{"$ne": bson.A{"$$this._id", commentID}},
			}},
			"updatedAt": time.Now().UTC(),
		}}},
		{{Key: "$set", Value: bson.M{"commentCount": bson.M{"$size": "$comments"}}}},
	}

	var p struct {
		CommentCount int `bson:"commentCount"`
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"commentCount": 1})
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": postID, "comments._id": commentID}, pipeline, opts).Decode(&p)
	if err == nil {
		return p.CommentCount, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, err
	}

	if _, getErr := s.GetByID(ctx, postID); getErr != nil {
		return 0, getErr
	}
	return 0, ErrCommentNotFound
}
