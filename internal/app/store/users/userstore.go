package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/posthub/internal/app/system/normalize"
	"github.com/dalemusser/posthub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when the email is already taken.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrAlreadyDeleted is returned when soft-deleting a user twice.
	ErrAlreadyDeleted = errors.New("user already deleted")

	errBadRole   = errors.New(`role must be "admin"|"user"`)
	errBadStatus = errors.New(`status must be "active"|"inactive"|"pending"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByID loads a user by ObjectID, deleted or not.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail looks up a user by normalized email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": normalize.Email(email)})
}

// GetByName finds a live user by exact display name. When several users
// share a name the oldest wins.
func (s *Store) GetByName(ctx context.Context, name string) (*models.User, error) {
	var u models.User
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	err := s.c.FindOne(ctx, bson.M{"name": normalize.Name(name), "isDeleted": false}, opts).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EmailExists reports whether any user, deleted or not, has email.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"email": normalize.Email(email)}, options.Count().SetLimit(1))
	return n > 0, err
}

// Create inserts u after normalizing it. Password must already be hashed.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Name = normalize.Name(u.Name)
	u.Email = normalize.Email(u.Email)
	u.Country = normalize.Country(u.Country)
	if u.Role = normalize.Role(u.Role); u.Role == "" {
		return models.User{}, errBadRole
	}
	if u.Status == "" {
		u.Status = models.StatusActive
	}
	if u.Status = normalize.Status(u.Status); u.Status == "" {
		return models.User{}, errBadStatus
	}
	u.IsDeleted = false
	u.DeletedAt = nil

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// ListActive returns users that are not soft-deleted, newest first.
func (s *Store) ListActive(ctx context.Context) ([]models.User, error) {
	return s.list(ctx, bson.M{"isDeleted": false})
}

// ListAll returns every user, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.User, error) {
	return s.list(ctx, bson.M{})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetProjection(bson.M{"password": 0})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update holds the editable profile fields. Nil fields are left unchanged.
type Update struct {
	Name         *string
	Email        *string
	Avatar       *string
	Status       *string
	PhoneNumber  *string
	Address      *string
	State        *string
	ZipCode      *string
	Country      *string
	Language     *[]string
	TimeZone     *string
	Currency     *string
	Organization *string
}

// Fields lists the bson keys Update would set, for audit details.
func (u Update) Fields() []string {
	set, _ := u.toSet()
	out := make([]string, 0, len(set))
	for k := range set {
		if k != "updatedAt" {
			out = append(out, k)
		}
	}
	return out
}

func (u Update) toSet() (bson.M, error) {
	set := bson.M{}
	str := func(key string, v *string, norm func(string) string) {
		if v != nil {
			set[key] = norm(*v)
		}
	}
	keep := func(s string) string { return s }

	str("name", u.Name, normalize.Name)
	str("email", u.Email, normalize.Email)
	str("avatar", u.Avatar, keep)
	str("phoneNumber", u.PhoneNumber, normalize.Name)
	str("address", u.Address, normalize.Name)
	str("state", u.State, normalize.Name)
	str("zipCode", u.ZipCode, normalize.Name)
	str("country", u.Country, normalize.Country)
	str("timeZone", u.TimeZone, normalize.Name)
	str("currency", u.Currency, normalize.Name)
	str("organization", u.Organization, normalize.Name)
	if u.Language != nil {
		set["language"] = normalize.Languages(*u.Language)
	}
	if u.Status != nil {
		st := normalize.Status(*u.Status)
		if st == "" {
			return nil, errBadStatus
		}
		set["status"] = st
	}
	set["updatedAt"] = time.Now().UTC()
	return set, nil
}

// Update applies upd to the user and returns the updated document.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.User, error) {
	set, err := upd.toSet()
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var u models.User
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u); err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrNotFound
		case wafflemongo.IsDup(err):
			return nil, ErrDuplicateEmail
		default:
			return nil, err
		}
	}
	return &u, nil
}

// SoftDelete flags the user deleted at now. Deleting an already deleted
// user returns ErrAlreadyDeleted.
func (s *Store) SoftDelete(ctx context.Context, id primitive.ObjectID, now time.Time) (*models.User, error) {
	now = now.UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "isDeleted": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{"isDeleted": true, "deletedAt": now, "updatedAt": now}},
		opts,
	).Decode(&u)
	if err == nil {
		return &u, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	if _, getErr := s.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrAlreadyDeleted
}

// Refs resolves ids to public user references in one query. Ids without
// a user document are absent from the map.
func (s *Store) Refs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserRef, error) {
	out := make(map[primitive.ObjectID]models.UserRef, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"name": 1, "email": 1, "avatar": 1})
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("resolve users: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var ref models.UserRef
		if err := cur.Decode(&ref); err != nil {
			return nil, err
		}
		out[ref.ID] = ref
	}
	return out, cur.Err()
}
