package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
)

// Storage backend selectors
const (
	BackendSQLite   = "sqlite"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// DefaultJWTSecret is a known-insecure placeholder for local development.
// Deployments must set JWT_SECRET_KEY.
const DefaultJWTSecret = "dev-secret-change-me"

// Config holds server configuration loaded from environment variables
type Config struct {
	ServerPort     string
	JWTSecret      string
	JWTExpiryDays  int64
	StorageBackend string
	SQLitePath     string
	UsersFile      string
}

// Load reads server configuration from environment variables, applying safe
// defaults for local development.
func Load() *Config {
	cfg := &Config{
		ServerPort:     getenv("SERVER_PORT", "4000"),
		JWTSecret:      getenv("JWT_SECRET_KEY", DefaultJWTSecret),
		JWTExpiryDays:  30,
		StorageBackend: getenv("STORAGE_BACKEND", BackendSQLite),
		SQLitePath:     getenv("SQLITE_PATH", "data/auth.db"),
		UsersFile:      getenv("USERS_FILE", "data/users.json"),
	}

	if expStr := os.Getenv("JWT_EXPIRATION_DAYS"); expStr != "" {
		exp, err := strconv.ParseInt(expStr, 10, 64)
		if err != nil || exp <= 0 {
			log.Printf("Invalid JWT_EXPIRATION_DAYS %q, defaulting to 30", expStr)
		} else {
			cfg.JWTExpiryDays = exp
		}
	}
	return cfg
}

// UsingDefaultSecret reports whether the signing secret is still the insecure
// development placeholder.
func (c *Config) UsingDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

// Validate checks the backend selector
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendSQLite, BackendFile, BackendPostgres:
		return nil
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (want sqlite, file or postgres)", c.StorageBackend)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
