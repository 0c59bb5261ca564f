package repository

import (
	"context"
	"sync"

	"heritage_auth/internal/model"
)

type memoryOTPRepository struct {
	mu      sync.Mutex
	byEmail map[string]model.OTP
}

// NewMemoryOTPRepository creates an in-process OTPRepository. Codes only live
// ten minutes, so losing them on restart merely forces a fresh Initiate; used
// with the file and postgres user backends.
func NewMemoryOTPRepository() OTPRepository {
	return &memoryOTPRepository{byEmail: make(map[string]model.OTP)}
}

func (r *memoryOTPRepository) Upsert(_ context.Context, otp *model.OTP) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byEmail[model.NormalizeEmail(otp.Email)] = model.OTP{
		Email:     model.NormalizeEmail(otp.Email),
		Code:      otp.Code,
		ExpiresAt: otp.ExpiresAt,
	}
	return nil
}

func (r *memoryOTPRepository) Find(_ context.Context, email, code string) (*model.OTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	otp, ok := r.byEmail[model.NormalizeEmail(email)]
	if !ok || otp.Code != code {
		return nil, nil
	}
	found := otp
	return &found, nil
}

func (r *memoryOTPRepository) Delete(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byEmail, model.NormalizeEmail(email))
	return nil
}
