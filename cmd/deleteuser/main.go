// Command deleteuser removes a user by email from the persisted store.
// Administrative script; operates directly on the sqlite or file state.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
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

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: deleteuser [flags] user@example.com")
		os.Exit(2)
	}
	email := flag.Arg(0)

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

	if err := repo.DeleteByEmail(context.Background(), email); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			fmt.Printf("No user found for email %s\n", email)
			return
		}
		log.Fatalf("Delete error: %v", err)
	}
	fmt.Printf("Deleted user %s\n", email)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
