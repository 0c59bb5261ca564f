package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "JWT_SECRET_KEY", "JWT_EXPIRATION_DAYS", "STORAGE_BACKEND", "SQLITE_PATH", "USERS_FILE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "4000", cfg.ServerPort)
	assert.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	assert.EqualValues(t, 30, cfg.JWTExpiryDays)
	assert.Equal(t, BackendSQLite, cfg.StorageBackend)
	assert.Equal(t, "data/auth.db", cfg.SQLitePath)
	assert.Equal(t, "data/users.json", cfg.UsersFile)
	assert.True(t, cfg.UsingDefaultSecret())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("JWT_SECRET_KEY", "prod-secret")
	t.Setenv("JWT_EXPIRATION_DAYS", "7")
	t.Setenv("STORAGE_BACKEND", BackendFile)
	t.Setenv("USERS_FILE", "/var/lib/auth/users.json")

	cfg := Load()
	assert.Equal(t, "8081", cfg.ServerPort)
	assert.Equal(t, "prod-secret", cfg.JWTSecret)
	assert.EqualValues(t, 7, cfg.JWTExpiryDays)
	assert.Equal(t, BackendFile, cfg.StorageBackend)
	assert.Equal(t, "/var/lib/auth/users.json", cfg.UsersFile)
	assert.False(t, cfg.UsingDefaultSecret())
	require.NoError(t, cfg.Validate())
}

func TestLoad_InvalidExpirationFallsBack(t *testing.T) {
	t.Setenv("JWT_EXPIRATION_DAYS", "not-a-number")
	assert.EqualValues(t, 30, Load().JWTExpiryDays)

	t.Setenv("JWT_EXPIRATION_DAYS", "-5")
	assert.EqualValues(t, 30, Load().JWTExpiryDays)
}

func TestValidate_UnknownBackend(t *testing.T) {
	cfg := &Config{StorageBackend: "redis"}
	assert.Error(t, cfg.Validate())
}
