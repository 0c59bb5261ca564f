package model

import (
	"strings"
	"time"
)

const (
	RoleAdmin          = "admin"
	RoleUser           = "user"
	RoleContentCreator = "content-creator"
	RoleTourGuide      = "tour-guide"
)

// User represents a registered account in the system.
// The JSON tags match the persisted layout of the file backend; API responses
// go through PublicUser / UserListEntry and never carry the password hash.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"` // stored lower-cased, unique
	PasswordHash string    `json:"passwordHash"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicUser is the subset of a User record safe to return to a caller.
type PublicUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Public returns the caller-facing view of the user.
func (u *User) Public() PublicUser {
	return PublicUser{Email: u.Email, Name: u.Name, Role: u.Role}
}

// UserListEntry is a row in the administrative user listing.
type UserListEntry struct {
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// NormalizeEmail lower-cases and trims an email address. Email uniqueness is
// case-insensitive, so every store lookup and insert goes through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
