// internal/app/features/admin/types.go
package admin

import (
	"github.com/dalemusser/posthub/internal/app/system/formutil"
	"github.com/dalemusser/posthub/internal/app/system/normalize"
	"github.com/dalemusser/posthub/internal/domain/models"
)

// Client messages.
const (
	msgAllFieldsRequired = "All fields are required"
	msgAdminExists       = "Admin already exists"
	msgAdminRegistered   = "Admin registered"
	msgAdminNotFound     = "Admin not found"
	msgInvalidPassword   = "Invalid password"
	msgLoginSuccessful   = "Login successful"
	msgLoggedOut         = "Logged out successfully"
	msgUserExists        = "User already exists"
	msgEmailExists       = "Email already exists"
	msgWeakPassword      = "Weak password"
	msgUserCreated       = "User created successfully"
	msgUsersFetched      = "Fetch all user successfully"
	msgUserFetched       = "Fetch the single user successfully"
	msgUserNotFound      = "User not found"
	msgUserUpdated       = "User updated successfully"
	msgUserDeleted       = "User marked as deleted successfully"
	msgUserAlreadyGone   = "User is already deleted"
	msgNoUsers           = "No users found"
)

// profileFields are the optional profile attributes accepted on
// registration and update.
type profileFields struct {
	PhoneNumber  string `json:"phoneNumber"`
	Address      string `json:"address"`
	State        string `json:"state"`
	ZipCode      string `json:"zipCode"`
	Country      string `json:"country"`
	TimeZone     string `json:"timeZone"`
	Currency     string `json:"currency"`
	Organization string `json:"organization"`

	Language formutil.List `json:"language"`
}

func (p profileFields) apply(u *models.User) {
	u.PhoneNumber = p.PhoneNumber
	u.Address = p.Address
	u.State = p.State
	u.ZipCode = p.ZipCode
	u.Country = p.Country
	u.TimeZone = p.TimeZone
	u.Currency = p.Currency
	u.Organization = p.Organization
	u.Language = normalize.Languages(p.Language)
}

type tokenResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

type loginResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Admin   *models.User `json:"admin"`
	Token   string       `json:"token"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type userResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	User    *models.User `json:"user"`
}

type usersResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Users   []models.User `json:"users"`
}

// userWithPosts is a user with their posts, references resolved.
type userWithPosts struct {
	*models.User
	Posts []models.PostDetail `json:"posts"`
}

type userDetailResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	User    userWithPosts `json:"user"`
}

type updatedResponse struct {
	Success     bool         `json:"success"`
	Message     string       `json:"message"`
	UpdatedUser *models.User `json:"updatedUser"`
}
