// internal/domain/models/post.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a user-owned post with embedded comments and reaction lists.
//
// LikeCount, DislikeCount and CommentCount mirror the lengths of Likes,
// Dislikes and Comments. A user id is never present in both Likes and Dislikes.
type Post struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Title        string               `bson:"title" json:"title"`
	Desc         string               `bson:"desc" json:"desc"`
	Images       []string             `bson:"images" json:"images"`
	Categories   []string             `bson:"categories" json:"categories"`
	User         primitive.ObjectID   `bson:"user" json:"user"`
	LikeCount    int                  `bson:"likeCount" json:"likeCount"`
	Likes        []primitive.ObjectID `bson:"likes" json:"likes"`
	DislikeCount int                  `bson:"dislikeCount" json:"dislikeCount"`
	Dislikes     []primitive.ObjectID `bson:"dislikes" json:"dislikes"`
	CommentCount int                  `bson:"commentCount" json:"commentCount"`
	Comments     []Comment            `bson:"comments" json:"comments"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Comment is embedded in Post.Comments.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Text      string             `bson:"text" json:"text"`
	Emoji     string             `bson:"emoji,omitempty" json:"emoji,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PostDetail is a post with its user references resolved.
// References that no longer resolve are nil (owner, comment author) or
// omitted (likes, dislikes).
type PostDetail struct {
	ID           primitive.ObjectID `json:"_id"`
	Title        string             `json:"title"`
	Desc         string             `json:"desc"`
	Images       []string           `json:"images"`
	Categories   []string           `json:"categories"`
	User         *UserRef           `json:"user"`
	LikeCount    int                `json:"likeCount"`
	Likes        []UserRef          `json:"likes"`
	DislikeCount int                `json:"dislikeCount"`
	Dislikes     []UserRef          `json:"dislikes"`
	CommentCount int                `json:"commentCount"`
	Comments     []CommentDetail    `json:"comments"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// CommentDetail is a comment with its author resolved.
type CommentDetail struct {
	ID        primitive.ObjectID `json:"_id"`
	User      *UserRef           `json:"userId"`
	Text      string             `json:"text"`
	Emoji     string             `json:"emoji,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
