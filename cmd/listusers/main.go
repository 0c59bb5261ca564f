// Command listusers dumps all users from the persisted store as JSON.
// Administrative script; operates directly on the sqlite or file state.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"heritage_auth/internal/repository"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	backend := flag.String("backend", envOr("STORAGE_BACKEND", "sqlite"), "store backend: sqlite or file")
	sqlitePath := flag.String("db", envOr("SQLITE_PATH", "data/auth.db"), "sqlite database path")
	usersFile := flag.String("file", envOr("USERS_FILE", "data/users.json"), "users JSON file path")
	flag.Parse()

	var repo repository.UserRepository
	switch *backend {
	case "sqlite":
		db, err := repository.OpenSQLite(*sqlitePath)
		if err != nil {
			log.Fatalf("DB open error: %v", err)
		}
		defer db.Close()
		repo = repository.NewSQLiteUserRepository(db)
	case "file":
		repo = repository.NewFileUserRepository(*usersFile)
	default:
		log.Fatalf("unknown backend %q (want sqlite or file)", *backend)
	}

	entries, err := repo.List(context.Background())
	if err != nil {
		log.Fatalf("Query error: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		log.Fatalf("Encode error: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
