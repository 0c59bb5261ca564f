package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"heritage_auth/internal/model"
)

type sqliteOTPRepository struct {
	db *sql.DB
}

// NewSQLiteOTPRepository creates an OTPRepository backed by the otps table
func NewSQLiteOTPRepository(db *sql.DB) OTPRepository {
	return &sqliteOTPRepository{db: db}
}

// Upsert stores the code for the email, replacing any prior one
func (r *sqliteOTPRepository) Upsert(ctx context.Context, otp *model.OTP) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO otps (email, code, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET code = excluded.code, expires_at = excluded.expires_at
	`, model.NormalizeEmail(otp.Email), otp.Code, otp.ExpiresAt.UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}
	return nil
}

// Find returns the live record matching (email, code), or (nil, nil)
func (r *sqliteOTPRepository) Find(ctx context.Context, email, code string) (*model.OTP, error) {
	otp := &model.OTP{}
	var expiresAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT email, code, expires_at FROM otps WHERE email = ? AND code = ?`,
		model.NormalizeEmail(email), code).
		Scan(&otp.Email, &otp.Code, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find otp: %w", err)
	}
	if otp.ExpiresAt, err = parseStoredTime(expiresAt); err != nil {
		return nil, err
	}
	return otp, nil
}

// Delete evicts the record for the email, if any
func (r *sqliteOTPRepository) Delete(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM otps WHERE email = ?`, model.NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("failed to delete otp: %w", err)
	}
	return nil
}
