// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each collection's set is reconciled
idempotently; problems are aggregated so startup fails with the full list.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	for _, set := range []struct {
		coll   string
		models []mongo.IndexModel
	}{
		{"users", userIndexes()},
		{"posts", postIndexes()},
		{"audit_events", auditIndexes()},
	} {
		r := reconciler{coll: db.Collection(set.coll), log: logger}
		if err := r.ensure(ctx, set.models); err != nil {
			problems = append(problems, set.coll+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		// dashboard user counts, user actions feed and signups by country
		{
			Keys: bson.D{
				{Key: "role", Value: 1},
				{Key: "isDeleted", Value: 1},
				{Key: "updatedAt", Value: -1},
			},
			Options: options.Index().SetName("idx_users_role_deleted_updated"),
		},
		// user/post correlation per-day counts and user lists
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_users_created"),
		},
		{
			Keys:    bson.D{{Key: "deletedAt", Value: 1}},
			Options: options.Index().SetName("idx_users_deleted_at").SetSparse(true),
		},
	}
}

func postIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_posts_created"),
		},
		{
			Keys:    bson.D{{Key: "updatedAt", Value: -1}},
			Options: options.Index().SetName("idx_posts_updated"),
		},
		// posts by owner, top contributors
		{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_posts_user_created"),
		},
		{
			Keys:    bson.D{{Key: "comments.createdAt", Value: 1}},
			Options: options.Index().SetName("idx_posts_comments_created"),
		},
		{
			Keys:    bson.D{{Key: "categories", Value: 1}},
			Options: options.Index().SetName("idx_posts_categories"),
		},
	}
}

func auditIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_ts"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_category_ts"),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_user_ts").SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "actorId", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_actor_ts").SetSparse(true),
		},
	}
}

/* -------------------------------------------------------------------------- */
/* Reconcile a set of desired indexes for one collection                       */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

type desired struct {
	model  mongo.IndexModel
	name   string
	unique bool
	sig    string
}

func describe(m mongo.IndexModel) desired {
	d := desired{model: m, sig: keySig(m.Keys.(bson.D))}
	if m.Options != nil {
		if m.Options.Name != nil {
			d.name = *m.Options.Name
		}
		d.unique = m.Options.Unique != nil && *m.Options.Unique
	}
	return d
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isUnique(b *bool) bool { return b != nil && *b }

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict")
}

type reconciler struct {
	coll *mongo.Collection
	log  *zap.Logger
}

func (r reconciler) ensure(ctx context.Context, models []mongo.IndexModel) error {
	var errs []string
	for _, m := range models {
		if err := r.ensureOne(ctx, describe(m)); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (r reconciler) existing(ctx context.Context) (map[string]existingIndex, error) {
	cur, err := r.coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			r.log.Warn("failed to decode existing index",
				zap.String("collection", r.coll.Name()),
				zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

func (r reconciler) ensureOne(ctx context.Context, d desired) error {
	start := time.Now()
	fields := []zap.Field{
		zap.String("collection", r.coll.Name()),
		zap.String("name", d.name),
		zap.String("keys", d.sig),
		zap.Bool("unique", d.unique),
	}
	r.log.Info("ensuring index", fields...)

	existing, err := r.existing(ctx)
	if err != nil {
		// A collection that does not exist yet lists no indexes.
		existing = map[string]existingIndex{}
	}

	if ex, ok := existing[d.sig]; ok {
		if d.unique == isUnique(ex.Unique) && (d.name == "" || ex.Name == d.name) {
			r.log.Info("reusing existing index", append(fields, zap.Duration("took", time.Since(start)))...)
			return nil
		}
		// Name or uniqueness differs: drop and recreate.
		return r.recreate(ctx, d, ex.Name, start, fields)
	}

	_, err = r.coll.Indexes().CreateOne(ctx, d.model)
	if err == nil {
		r.log.Info("index ensured", append(fields, zap.Duration("took", time.Since(start)))...)
		return nil
	}
	if isOptionsConflictErr(err) {
		if again, lerr := r.existing(ctx); lerr == nil {
			if ex, ok := again[d.sig]; ok {
				return r.recreate(ctx, d, ex.Name, start, fields)
			}
		}
	}
	r.log.Warn("index ensure failed", append(fields, zap.Error(err))...)
	return r.failure(d, err)
}

func (r reconciler) recreate(ctx context.Context, d desired, oldName string, start time.Time, fields []zap.Field) error {
	if _, err := r.coll.Indexes().DropOne(ctx, oldName); err != nil {
		r.log.Warn("drop existing index failed", append(fields, zap.String("old_name", oldName), zap.Error(err))...)
		return fmt.Errorf("%s(%s): drop failed: %w", r.coll.Name(), d.name, err)
	}
	if _, err := r.coll.Indexes().CreateOne(ctx, d.model); err != nil {
		r.log.Warn("recreate index failed", append(fields, zap.Error(err))...)
		return r.failure(d, err)
	}
	r.log.Info("index dropped and recreated",
		append(fields, zap.String("old_name", oldName), zap.Duration("took", time.Since(start)))...)
	return nil
}

func (r reconciler) failure(d desired, err error) error {
	if d.unique && wafflemongo.IsDup(err) {
		helper := ""
		if r.coll.Name() == "users" && strings.Contains(d.sig, "email:1") {
			helper = ". Example finder: " +
				`db.users.aggregate([{ $group: { _id: "$email", n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`
		}
		return fmt.Errorf("%s(%s): cannot create unique index (duplicates present)%s", r.coll.Name(), d.name, helper)
	}
	return fmt.Errorf("%s(%s): %w", r.coll.Name(), d.name, err)
}
