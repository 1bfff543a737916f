package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/posthub/internal/app/system/validators"
	"github.com/dalemusser/posthub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_UsersSchema(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	users := db.Collection("users")
	now := time.Now().UTC()

	valid := bson.M{
		"_id":       primitive.NewObjectID(),
		"name":      "Ann",
		"email":     "ann@example.com",
		"role":      "user",
		"status":    "active",
		"isDeleted": false,
		"deletedAt": nil,
		"createdAt": now,
		"updatedAt": now,
	}
	if _, err := users.InsertOne(ctx, valid); err != nil {
		t.Fatalf("valid user rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(bson.M)
	}{
		{"unknown role", func(d bson.M) { d["role"] = "superadmin" }},
		{"unknown status", func(d bson.M) { d["status"] = "disabled" }},
		{"blank name", func(d bson.M) { d["name"] = "   " }},
		{"missing email", func(d bson.M) { delete(d, "email") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := bson.M{}
			for k, v := range valid {
				doc[k] = v
			}
			doc["_id"] = primitive.NewObjectID()
			doc["email"] = primitive.NewObjectID().Hex() + "@example.com"
			tt.mutate(doc)
			if _, err := users.InsertOne(ctx, doc); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestEnsureAll_PostsSchema(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	posts := db.Collection("posts")

	ok := bson.M{"title": "t", "desc": "d", "user": primitive.NewObjectID(), "likeCount": 0}
	if _, err := posts.InsertOne(ctx, ok); err != nil {
		t.Fatalf("valid post rejected: %v", err)
	}
	bad := bson.M{"title": "t", "desc": "d", "user": "not-an-id"}
	if _, err := posts.InsertOne(ctx, bad); err == nil {
		t.Error("post with string owner should be rejected")
	}
	negative := bson.M{"title": "t", "desc": "d", "user": primitive.NewObjectID(), "likeCount": -1}
	if _, err := posts.InsertOne(ctx, negative); err == nil {
		t.Error("negative likeCount should be rejected")
	}
}
