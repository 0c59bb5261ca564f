package repository

import (
	"context"
	"errors"
	"fmt"

	"heritage_auth/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the postgres error code for unique constraint violations
const uniqueViolation = "23505"

// PgxIface is the subset of pgxpool.Pool the postgres repository uses.
// Satisfied by *pgxpool.Pool and by pgxmock in tests.
type PgxIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresUserRepository struct {
	db PgxIface
}

// NewPostgresUserRepository creates a UserRepository backed by a postgres
// users table. Conflicting writes are serialized by the database.
func NewPostgresUserRepository(db PgxIface) UserRepository {
	return &postgresUserRepository{db: db}
}

// Create inserts a new user into the database
func (r *postgresUserRepository) Create(ctx context.Context, user *model.User) error {
	user.Email = model.NormalizeEmail(user.Email)
	sql := `INSERT INTO users (id, email, password_hash, name, role, created_at)
            VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Exec(ctx, sql, user.ID, user.Email, user.PasswordHash, user.Name, user.Role, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByEmail retrieves a user by normalized email, or (nil, nil) if absent
func (r *postgresUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	sql := `SELECT id, email, password_hash, name, role, created_at FROM users WHERE email = $1`
	err := r.db.QueryRow(ctx, sql, model.NormalizeEmail(email)).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // User not found is not an error for this method's contract
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// List returns the public listing view of all users
func (r *postgresUserRepository) List(ctx context.Context) ([]model.UserListEntry, error) {
	sql := `SELECT email, role, created_at FROM users ORDER BY created_at, email`
	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var entries []model.UserListEntry
	for rows.Next() {
		var e model.UserListEntry
		if err := rows.Scan(&e.Email, &e.Role, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return entries, nil
}

// UpdatePassword replaces the stored password hash for the user
func (r *postgresUserRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	sql := `UPDATE users SET password_hash = $1 WHERE email = $2`
	tag, err := r.db.Exec(ctx, sql, passwordHash, model.NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteByEmail removes a user record (administrative action)
func (r *postgresUserRepository) DeleteByEmail(ctx context.Context, email string) error {
	sql := `DELETE FROM users WHERE email = $1`
	tag, err := r.db.Exec(ctx, sql, model.NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
