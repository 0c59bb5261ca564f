package repository

import (
	"context"
	"errors"

	"heritage_auth/internal/model"
)

var (
	// ErrDuplicateEmail is returned by Create when the email is already
	// registered. Email matching is case-insensitive.
	ErrDuplicateEmail = errors.New("user with this email already exists")
	// ErrUserNotFound is returned by UpdatePassword and DeleteByEmail when no
	// user matches the given email.
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository defines operations for user records. All implementations
// must behave identically under this contract; FindByEmail returns (nil, nil)
// when no user matches.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.UserListEntry, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	DeleteByEmail(ctx context.Context, email string) error
}
