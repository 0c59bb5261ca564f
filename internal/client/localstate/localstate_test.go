package localstate

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "state", "client_state.json"))
}

func TestStore_SetGet(t *testing.T) {
	s := newStore(t)

	type payload struct {
		Email string `json:"email"`
		Count int    `json:"count"`
	}

	require.NoError(t, s.Set("key", payload{Email: "a@x.com", Count: 2}))

	var got payload
	ok, err := s.Get("key", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, payload{Email: "a@x.com", Count: 2}, got)
}

func TestStore_GetAbsentKey(t *testing.T) {
	s := newStore(t)

	var got string
	ok, err := s.Get("missing", &got)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestStore_Delete(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.Set("key", "value"))
	require.NoError(t, s.Delete("key"))

	var got string
	ok, err := s.Get("key", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent key is a no-op
	require.NoError(t, s.Delete("key"))
}

func TestStore_Clear(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.Set("one", 1))
	require.NoError(t, s.Set("two", 2))
	require.NoError(t, s.Clear())

	var got int
	ok, err := s.Get("one", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client_state.json")

	require.NoError(t, New(path).Set("key", "value"))

	var got string
	ok, err := New(path).Get("key", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "value", got)
}
