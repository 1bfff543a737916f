package poststore_test

import (
	"errors"
	"slices"
	"testing"

	poststore "github.com/dalemusser/posthub/internal/app/store/posts"
	"github.com/dalemusser/posthub/internal/domain/models"
	"github.com/dalemusser/posthub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := poststore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	created, err := store.Create(ctx, models.Post{Title: "Hello", Desc: "World", User: owner, Categories: []string{"tech"}})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID.IsZero() || created.CreatedAt.IsZero() {
		t.Error("expected ID and CreatedAt to be set")
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "Hello" || got.User != owner {
		t.Errorf("GetByID: got %+v", got)
	}
	if got.Likes == nil || got.Comments == nil {
		t.Error("lists should be stored empty, not null")
	}

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, poststore.ErrNotFound) {
		t.Errorf("missing post: got %v, want ErrNotFound", err)
	}
}

func TestStore_LikeThenDislike(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := poststore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	post := fx.CreatePost(ctx, primitive.NewObjectID(), "P", []string{"a"})
	u := primitive.NewObjectID()

	p, err := store.Like(ctx, post.ID, u)
	if err != nil {
		t.Fatalf("Like failed: %v", err)
	}
	if p.LikeCount != 1 || !slices.Contains(p.Likes, u) {
		t.Errorf("after like: likeCount=%d likes=%v", p.LikeCount, p.Likes)
	}

	if _, err := store.Like(ctx, post.ID, u); !errors.Is(err, poststore.ErrAlreadyLiked) {
		t.Errorf("second like: got %v, want ErrAlreadyLiked", err)
	}

	p, err = store.Dislike(ctx, post.ID, u)
	if err != nil {
		t.Fatalf("Dislike failed: %v", err)
	}
	if slices.Contains(p.Likes, u) || !slices.Contains(p.Dislikes, u) {
		t.Errorf("after dislike: likes=%v dislikes=%v", p.Likes, p.Dislikes)
	}
	if p.LikeCount != 0 || p.DislikeCount != 1 {
		t.Errorf("counts: likeCount=%d dislikeCount=%d, want 0 and 1", p.LikeCount, p.DislikeCount)
	}

	if _, err := store.Dislike(ctx, post.ID, u); !errors.Is(err, poststore.ErrAlreadyDisliked) {
		t.Errorf("second dislike: got %v, want ErrAlreadyDisliked", err)
	}
	if _, err := store.Like(ctx, primitive.NewObjectID(), u); !errors.Is(err, poststore.ErrNotFound) {
		t.Errorf("missing post: got %v, want ErrNotFound", err)
	}
}

func TestStore_Comments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := poststore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	post := fx.CreatePost(ctx, primitive.NewObjectID(), "P", nil)
	author := primitive.NewObjectID()

	c1, n, err := store.AddComment(ctx, post.ID, models.Comment{UserID: author, Text: "$100 well spent"})
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if n != 1 {
		t.Errorf("commentCount: got %d, want 1", n)
	}
	if _, n, _ = store.AddComment(ctx, post.ID, models.Comment{UserID: author, Text: "second"}); n != 2 {
		t.Errorf("commentCount: got %d, want 2", n)
	}

	got, _ := store.GetByID(ctx, post.ID)
	if got.Comments[0].Text != "$100 well spent" {
		t.Errorf("comment text stored as %q", got.Comments[0].Text)
	}

	n, err = store.DeleteComment(ctx, post.ID, c1.ID)
	if err != nil {
		t.Fatalf("DeleteComment failed: %v", err)
	}
	if n != 1 {
		t.Errorf("commentCount after delete: got %d, want 1", n)
	}
	if _, err := store.DeleteComment(ctx, post.ID, c1.ID); !errors.Is(err, poststore.ErrCommentNotFound) {
		t.Errorf("deleted twice: got %v, want ErrCommentNotFound", err)
	}
	if _, err := store.DeleteComment(ctx, primitive.NewObjectID(), c1.ID); !errors.Is(err, poststore.ErrNotFound) {
		t.Errorf("missing post: got %v, want ErrNotFound", err)
	}
}

func TestStore_UpdateReturnsBefore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := poststore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, _ := store.Create(ctx, models.Post{Title: "Old", Images: []string{"a.png", "b.png"}})
	title := "New"
	images := []string{"b.png"}
	before, after, err := store.Update(ctx, p.ID, poststore.Update{Title: &title, Images: &images})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if before.Title != "Old" || len(before.Images) != 2 {
		t.Errorf("before: %+v", before)
	}
	if after.Title != "New" || !slices.Equal(after.Images, images) {
		t.Errorf("after: %+v", after)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := poststore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, _ := store.Create(ctx, models.Post{Title: "Gone"})
	deleted, err := store.Delete(ctx, p.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted.Title != "Gone" {
		t.Errorf("Delete returned %+v", deleted)
	}
	if _, err := store.Delete(ctx, p.ID); !errors.Is(err, poststore.ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}
