// Package metricsstore runs the read-only dashboard aggregations over the
// users and posts collections. Every query takes a resolved date range and
// returns store errors unchanged; nothing here recovers partial results.
package metricsstore

import (
	"context"
	"time"

	"github.com/dalemusser/posthub/internal/app/system/daterange"
	"github.com/dalemusser/posthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TopContributorsLimit is how many contributors TopContributors returns.
const TopContributorsLimit = 10

// Store holds the two collections the aggregations read.
type Store struct {
	users *mongo.Collection
	posts *mongo.Collection
}

// New creates a Store over db.
func New(db *mongo.Database) *Store {
	return &Store{users: db.Collection("users"), posts: db.Collection("posts")}
}

// Row types.

// UserActivity is one row of the user actions feed.
type UserActivity struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Avatar    string             `bson:"avatar" json:"avatar"`
	IsDeleted bool               `bson:"isDeleted" json:"-"`
	Status    string             `bson:"status" json:"-"`
	Action    string             `bson:"-" json:"action"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PostActivity is one row of the post activities feed.
type PostActivity struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Title     string             `bson:"title" json:"title"`
	User      *models.UserRef    `bson:"user,omitempty" json:"user"`
	Activity  string             `bson:"-" json:"activity"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// CategoryCount is one category with its post count.
type CategoryCount struct {
	Category string `bson:"category" json:"category"`
	Count    int64  `bson:"count" json:"count"`
}

// Contributor is one top-contributor row.
type Contributor struct {
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Avatar    string             `bson:"avatar" json:"avatar"`
	PostCount int64              `bson:"postCount" json:"postCount"`
}

// CountrySignups groups users of one (upper-cased) country.
type CountrySignups struct {
	Country      string          `bson:"country" json:"country"`
	Count        int64           `bson:"count" json:"count"`
	LatestSignup time.Time       `bson:"latestSignup" json:"latestSignup"`
	Users        []CountryMember `bson:"users" json:"users"`
}

// CountryMember is a user listed under a country.
type CountryMember struct {
	Name      string    `bson:"name" json:"name"`
	Avatar    string    `bson:"avatar" json:"avatar"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Actions in the user actions feed.
const (
	ActionDeleted = "deleted"
	ActionBanned  = "banned"
	ActionUpdated = "updated"
)

// ActivityNew labels every post in the post activities feed.
const ActivityNew = "new"

// InferAction labels a user: deleted wins over banned, banned over updated.
func InferAction(isDeleted bool, status string) string {
	switch {
	case isDeleted:
		return ActionDeleted
	case status == models.StatusInactive:
		return ActionBanned
	default:
		return ActionUpdated
	}
}

// Filters.

func between(from, to time.Time) bson.M {
	return bson.M{"$gte": from, "$lte": to}
}

// DateFilter matches documents created or updated within r.
func DateFilter(r daterange.Range) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"createdAt": between(r.From, r.To)},
		bson.M{"updatedAt": between(r.From, r.To)},
	}}
}

// ActiveUsersFilter matches live role=user accounts created or updated within r.
func ActiveUsersFilter(r daterange.Range) bson.M {
	f := DateFilter(r)
	f["role"] = models.RoleUser
	f["isDeleted"] = false
	return f
}

// DeletedUsersFilter matches role=user accounts soft-deleted within r.
func DeletedUsersFilter(r daterange.Range) bson.M {
	return bson.M{
		"role":      models.RoleUser,
		"isDeleted": true,
		"deletedAt": between(r.From, r.To),
	}
}

// Counts.

// CountPosts counts posts created or updated within r.
func (s *Store) CountPosts(ctx context.Context, r daterange.Range) (int64, error) {
	return s.posts.CountDocuments(ctx, DateFilter(r))
}

// CountUsers counts live users created or updated within r.
func (s *Store) CountUsers(ctx context.Context, r daterange.Range) (int64, error) {
	return s.users.CountDocuments(ctx, ActiveUsersFilter(r))
}

// CountDeletedUsers counts users soft-deleted within r.
func (s *Store) CountDeletedUsers(ctx context.Context, r daterange.Range) (int64, error) {
	return s.users.CountDocuments(ctx, DeletedUsersFilter(r))
}

// CommentCountPipeline counts embedded comments whose own createdAt is
// within r widened to whole days.
func CommentCountPipeline(r daterange.Range) mongo.Pipeline {
	w := r.Widened()
	inRange := bson.M{"comments.createdAt": between(w.From, w.To)}
	return mongo.Pipeline{
		{{Key: "$match", Value: inRange}},
		{{Key: "$unwind", Value: "$comments"}},
		{{Key: "$match", Value: inRange}},
		{{Key: "$count", Value: "total"}},
	}
}

// CountComments runs CommentCountPipeline.
func (s *Store) CountComments(ctx context.Context, r daterange.Range) (int64, error) {
	cur, err := s.posts.Aggregate(ctx, CommentCountPipeline(r))
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// CountCategories counts distinct categories on posts created or updated within r.
func (s *Store) CountCategories(ctx context.Context, r daterange.Range) (int64, error) {
	vals, err := s.posts.Distinct(ctx, "categories", DateFilter(r))
	if err != nil {
		return 0, err
	}
	return int64(len(vals)), nil
}

// Feeds.

// UserActions returns users updated within r, most recent first, labelled
// by InferAction.
func (s *Store) UserActions(ctx context.Context, r daterange.Range) ([]UserActivity, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetProjection(bson.M{"name": 1, "email": 1, "avatar": 1, "isDeleted": 1, "status": 1, "updatedAt": 1})
	cur, err := s.users.Find(ctx, bson.M{"updatedAt": between(r.From, r.To)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []UserActivity{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Action = InferAction(out[i].IsDeleted, out[i].Status)
	}
	return out, nil
}

// PostActivitiesPipeline selects posts created within r, newest first, with
// the owner's public fields joined in.
func PostActivitiesPipeline(r daterange.Range) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": between(r.From, r.To)}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "user",
			"foreignField": "_id",
			"as":           "owner",
		}}},
		{{Key: "$project", Value: bson.M{
			"title":     1,
			"createdAt": 1,
			"user": bson.M{"$arrayElemAt": bson.A{
				bson.M{"$map": bson.M{
					"input": "$owner",
					"as":    "o",
					"in": bson.M{
						"_id":    "$$o._id",
						"name":   "$$o.name",
						"email":  "$$o.email",
						"avatar": "$$o.avatar",
					},
				}},
				0,
			}},
		}}},
	}
}

// PostActivities runs PostActivitiesPipeline. Posts whose owner is gone
// have a nil User.
func (s *Store) PostActivities(ctx context.Context, r daterange.Range) ([]PostActivity, error) {
	cur, err := s.posts.Aggregate(ctx, PostActivitiesPipeline(r))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []PostActivity{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Activity = ActivityNew
	}
	return out, nil
}

// Groupings.

// CategoryCountsPipeline counts posts created within r per category,
// highest count first.
func CategoryCountsPipeline(r daterange.Range) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": between(r.From, r.To)}}},
		{{Key: "$unwind", Value: "$categories"}},
		{{Key: "$group", Value: bson.M{"_id": "$categories", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		{{Key: "$project", Value: bson.M{"_id": 0, "category": "$_id", "count": 1}}},
	}
}

// CategoryCounts returns every category of posts created within r, sorted
// by count descending. Callers paginate.
func (s *Store) CategoryCounts(ctx context.Context, r daterange.Range) ([]CategoryCount, error) {
	cur, err := s.posts.Aggregate(ctx, CategoryCountsPipeline(r))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []CategoryCount{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TopContributorsPipeline ranks owners of posts created within r by post
// count and joins their identity. Owners without a user document drop out
// at the $unwind.
func TopContributorsPipeline(r daterange.Range, limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": between(r.From, r.To)}}},
		{{Key: "$group", Value: bson.M{"_id": "$user", "postCount": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "postCount", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "u",
		}}},
		{{Key: "$unwind", Value: "$u"}},
		{{Key: "$project", Value: bson.M{
			"_id":       0,
			"userId":    "$_id",
			"name":      "$u.name",
			"email":     "$u.email",
			"avatar":    "$u.avatar",
			"postCount": 1,
		}}},
	}
}

// TopContributors returns up to TopContributorsLimit contributors.
func (s *Store) TopContributors(ctx context.Context, r daterange.Range) ([]Contributor, error) {
	cur, err := s.posts.Aggregate(ctx, TopContributorsPipeline(r, TopContributorsLimit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Contributor{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SignupsByCountryPipeline groups live role=user accounts with a country,
// updated within r widened to whole days, by upper-cased country. Members
// are listed most recently updated first; groups by latest signup.
func SignupsByCountryPipeline(r daterange.Range) mongo.Pipeline {
	w := r.Widened()
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"role":      models.RoleUser,
			"isDeleted": false,
			"country":   bson.M{"$ne": nil},
			"updatedAt": between(w.From, w.To),
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "updatedAt", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":          bson.M{"$toUpper": "$country"},
			"count":        bson.M{"$sum": 1},
			"latestSignup": bson.M{"$first": "$updatedAt"},
			"users": bson.M{"$push": bson.M{
				"name":      "$name",
				"avatar":    "$avatar",
				"createdAt": "$createdAt",
				"updatedAt": "$updatedAt",
			}},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":          0,
			"country":      "$_id",
			"count":        1,
			"latestSignup": 1,
			"users":        1,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "latestSignup", Value: -1}}}},
	}
}

// SignupsByCountry runs SignupsByCountryPipeline.
func (s *Store) SignupsByCountry(ctx context.Context, r daterange.Range) ([]CountrySignups, error) {
	cur, err := s.users.Aggregate(ctx, SignupsByCountryPipeline(r))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []CountrySignups{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Per-day counts for the correlation series. Bounds are [start, end).

// CountUsersCreated counts role=user accounts created in [start, end).
func (s *Store) CountUsersCreated(ctx context.Context, start, end time.Time) (int64, error) {
	return s.users.CountDocuments(ctx, bson.M{
		"role":      models.RoleUser,
		"createdAt": bson.M{"$gte": start, "$lt": end},
	})
}

// CountPostsCreated counts posts created in [start, end).
func (s *Store) CountPostsCreated(ctx context.Context, start, end time.Time) (int64, error) {
	return s.posts.CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": start, "$lt": end}})
}
