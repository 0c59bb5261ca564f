package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"heritage_auth/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileRepo(t *testing.T) UserRepository {
	t.Helper()
	return NewFileUserRepository(filepath.Join(t.TempDir(), "users.json"))
}

func testUser(email string) *model.User {
	return &model.User{
		ID:           "id-" + email,
		Email:        email,
		PasswordHash: "$2a$10$fakehash",
		Name:         "Test User",
		Role:         model.RoleUser,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

func TestFileUserRepository_CreateAndFind(t *testing.T) {
	repo := newFileRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testUser("a@x.com")))

	user, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "a@x.com", user.Email)

	// Lookup is case-insensitive
	user, err = repo.FindByEmail(ctx, "A@X.COM")
	require.NoError(t, err)
	require.NotNil(t, user)

	user, err = repo.FindByEmail(ctx, "missing@x.com")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestFileUserRepository_DuplicateEmail(t *testing.T) {
	repo := newFileRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testUser("a@x.com")))

	err := repo.Create(ctx, testUser("A@X.com"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestFileUserRepository_List(t *testing.T) {
	repo := newFileRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testUser("a@x.com")))
	require.NoError(t, repo.Create(ctx, testUser("b@x.com")))

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a@x.com", entries[0].Email)
	assert.Equal(t, model.RoleUser, entries[0].Role)
	assert.False(t, entries[0].CreatedAt.IsZero())
}

func TestFileUserRepository_UpdatePassword(t *testing.T) {
	repo := newFileRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testUser("a@x.com")))
	require.NoError(t, repo.UpdatePassword(ctx, "A@x.com", "$2a$10$newhash"))

	user, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$newhash", user.PasswordHash)

	err = repo.UpdatePassword(ctx, "missing@x.com", "$2a$10$newhash")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFileUserRepository_DeleteByEmail(t *testing.T) {
	repo := newFileRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testUser("a@x.com")))
	require.NoError(t, repo.DeleteByEmail(ctx, "A@X.com"))

	user, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Nil(t, user)

	assert.ErrorIs(t, repo.DeleteByEmail(ctx, "a@x.com"), ErrUserNotFound)
}

func TestFileUserRepository_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	ctx := context.Background()

	require.NoError(t, NewFileUserRepository(path).Create(ctx, testUser("a@x.com")))

	user, err := NewFileUserRepository(path).FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, user)

	// The file carries the hash; callers never see it through List
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "passwordHash")
}
