package repository

import (
	"context"

	"heritage_auth/internal/model"
)

// OTPRepository persists one-time password-reset codes, at most one live code
// per email. Find returns (nil, nil) when no matching record exists.
type OTPRepository interface {
	// Upsert stores the code, evicting any prior code for the same email.
	Upsert(ctx context.Context, otp *model.OTP) error
	Find(ctx context.Context, email, code string) (*model.OTP, error)
	Delete(ctx context.Context, email string) error
}
