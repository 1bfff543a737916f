// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Statuses
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusPending  = "pending"
)

// User represents both admins and regular users.
//
// NOTE:
//   - Users are soft-deleted (IsDeleted + DeletedAt); nothing in the service removes a user document.
//   - BSON keys are camelCase so existing documents decode without migration.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password,omitempty" json:"-"`
	Avatar    string             `bson:"avatar,omitempty" json:"avatar"`
	IsDeleted bool               `bson:"isDeleted" json:"isDeleted"`
	DeletedAt *time.Time         `bson:"deletedAt" json:"deletedAt"`
	Role      string             `bson:"role" json:"role"` // admin | user
	Status    string             `bson:"status" json:"status"`

	PhoneNumber  string   `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	Address      string   `bson:"address,omitempty" json:"address,omitempty"`
	State        string   `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode      string   `bson:"zipCode,omitempty" json:"zipCode,omitempty"`
	Country      string   `bson:"country,omitempty" json:"country,omitempty"`
	Language     []string `bson:"language,omitempty" json:"language,omitempty"`
	TimeZone     string   `bson:"timeZone,omitempty" json:"timeZone,omitempty"`
	Currency     string   `bson:"currency,omitempty" json:"currency,omitempty"`
	Organization string   `bson:"organization,omitempty" json:"organization,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// UserRef is the public projection of a user embedded in other responses.
type UserRef struct {
	ID     primitive.ObjectID `bson:"_id" json:"_id"`
	Name   string             `bson:"name" json:"name"`
	Email  string             `bson:"email" json:"email"`
	Avatar string             `bson:"avatar,omitempty" json:"avatar"`
}

// Ref returns the public projection of u.
func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar}
}
