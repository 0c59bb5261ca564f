package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"heritage_auth/internal/model"
	"heritage_auth/internal/repository"
	"heritage_auth/internal/utils"

	"github.com/google/uuid"
)

// MinPasswordLength is the only password policy the service enforces
const MinPasswordLength = 6

var (
	ErrMissingFields      = errors.New("all fields are required")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthService provides authentication related services
type AuthService interface {
	Register(ctx context.Context, email, password, name, role string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	List(ctx context.Context) ([]model.UserListEntry, error)
	DeleteUser(ctx context.Context, email string) error
}

type authService struct {
	userRepo repository.UserRepository
	jwtUtil  *utils.JWTUtil
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, jwtUtil *utils.JWTUtil) AuthService {
	return &authService{
		userRepo: userRepo,
		jwtUtil:  jwtUtil,
	}
}

// Register creates a new user account and issues a token for it
func (s *authService) Register(ctx context.Context, email, password, name, role string) (*model.User, string, error) {
	if email == "" || password == "" || name == "" || role == "" {
		return nil, "", ErrMissingFields
	}
	if len(password) < MinPasswordLength {
		return nil, "", ErrWeakPassword
	}

	email = model.NormalizeEmail(email)

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, "", ErrUserAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         name,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent register can win the race between the existence check
		// and the insert; the store's conflict is authoritative.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", ErrUserAlreadyExists
		}
		return nil, "", fmt.Errorf("failed to create user in repository: %w", err)
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("user created, but failed to generate token: %w", err)
	}

	return user, token, nil
}

// Login authenticates a user and returns a JWT token. Unknown email and wrong
// password produce the identical error so accounts cannot be enumerated.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	if email == "" || password == "" {
		return nil, "", ErrMissingFields
	}

	user, err := s.userRepo.FindByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		return nil, "", fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// List returns the public view of all users
func (s *authService) List(ctx context.Context) ([]model.UserListEntry, error) {
	entries, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return entries, nil
}

// DeleteUser removes an account by email (explicit administrative action)
func (s *authService) DeleteUser(ctx context.Context, email string) error {
	err := s.userRepo.DeleteByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrNoSuchAccount
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
