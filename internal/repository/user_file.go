package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"heritage_auth/internal/model"
)

type fileUserRepository struct {
	path string
	mu   sync.RWMutex
}

// NewFileUserRepository creates a UserRepository backed by a JSON array file.
// Every write re-reads the whole collection, mutates it in memory and rewrites
// the file. The mutex serializes writers within this process only; concurrent
// writers from other processes can still race (last writer wins). Acceptable
// for low-concurrency development use; prefer the sqlite backend otherwise.
func NewFileUserRepository(path string) UserRepository {
	return &fileUserRepository{path: path}
}

func (r *fileUserRepository) load() ([]model.User, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var users []model.User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users file: %w", err)
	}
	return users, nil
}

func (r *fileUserRepository) save(users []model.User) error {
	if users == nil {
		users = []model.User{}
	}
	raw, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode users: %w", err)
	}
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create users dir: %w", err)
		}
	}
	if err := os.WriteFile(r.path, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write users file: %w", err)
	}
	return nil
}

func (r *fileUserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return err
	}
	user.Email = model.NormalizeEmail(user.Email)
	for i := range users {
		if model.NormalizeEmail(users[i].Email) == user.Email {
			return ErrDuplicateEmail
		}
	}
	users = append(users, *user)
	return r.save(users)
}

func (r *fileUserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users, err := r.load()
	if err != nil {
		return nil, err
	}
	normalized := model.NormalizeEmail(email)
	for i := range users {
		if model.NormalizeEmail(users[i].Email) == normalized {
			found := users[i]
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fileUserRepository) List(_ context.Context) ([]model.UserListEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users, err := r.load()
	if err != nil {
		return nil, err
	}
	var entries []model.UserListEntry
	for i := range users {
		entries = append(entries, model.UserListEntry{
			Email:     users[i].Email,
			Role:      users[i].Role,
			CreatedAt: users[i].CreatedAt,
		})
	}
	return entries, nil
}

func (r *fileUserRepository) UpdatePassword(_ context.Context, email, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return err
	}
	normalized := model.NormalizeEmail(email)
	for i := range users {
		if model.NormalizeEmail(users[i].Email) == normalized {
			users[i].PasswordHash = passwordHash
			return r.save(users)
		}
	}
	return ErrUserNotFound
}

func (r *fileUserRepository) DeleteByEmail(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return err
	}
	normalized := model.NormalizeEmail(email)
	for i := range users {
		if model.NormalizeEmail(users[i].Email) == normalized {
			users = append(users[:i], users[i+1:]...)
			return r.save(users)
		}
	}
	return ErrUserNotFound
}
