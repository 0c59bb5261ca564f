package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"heritage_auth/internal/model"
	"heritage_auth/internal/repository"
	"heritage_auth/internal/utils"
)

// OTPTTL is the absolute validity window of a password-reset code
const OTPTTL = 10 * time.Minute

var (
	ErrNoSuchAccount = errors.New("no account found for that email")
	ErrInvalidOTP    = errors.New("invalid otp")
	ErrExpiredOTP    = errors.New("otp expired")
)

// OTPService implements the password-reset flow: a 6-digit code with a short
// absolute expiry, consumable exactly once.
type OTPService interface {
	// Initiate generates a code for the account, evicting any prior live
	// code, and returns it for delivery. Delivery itself is out of scope;
	// the code is logged as simulated delivery.
	Initiate(ctx context.Context, email string) (string, error)
	// VerifyAndReset consumes a live (email, code) pair and replaces the
	// stored password hash.
	VerifyAndReset(ctx context.Context, email, code, newPassword string) error
}

type otpService struct {
	userRepo repository.UserRepository
	otpRepo  repository.OTPRepository
	now      func() time.Time
}

// NewOTPService creates a new OTPService
func NewOTPService(userRepo repository.UserRepository, otpRepo repository.OTPRepository) OTPService {
	return &otpService{userRepo: userRepo, otpRepo: otpRepo, now: time.Now}
}

func (s *otpService) Initiate(ctx context.Context, email string) (string, error) {
	email = model.NormalizeEmail(email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to look up account: %w", err)
	}
	if user == nil {
		return "", ErrNoSuchAccount
	}

	code, err := generateOTPCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}

	otp := &model.OTP{Email: email, Code: code, ExpiresAt: s.now().Add(OTPTTL)}
	if err := s.otpRepo.Upsert(ctx, otp); err != nil {
		return "", fmt.Errorf("failed to store otp: %w", err)
	}

	// Simulated delivery; a real deployment would email the code instead.
	log.Printf("Forgot-password OTP for %s: %s (valid for %v)", email, code, OTPTTL)
	return code, nil
}

func (s *otpService) VerifyAndReset(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return ErrWeakPassword
	}
	email = model.NormalizeEmail(email)

	otp, err := s.otpRepo.Find(ctx, email, code)
	if err != nil {
		return fmt.Errorf("failed to look up otp: %w", err)
	}
	if otp == nil {
		return ErrInvalidOTP
	}
	if otp.Expired(s.now()) {
		// Evict the stale record; retrying the same code now fails as invalid
		if err := s.otpRepo.Delete(ctx, email); err != nil {
			return fmt.Errorf("failed to evict expired otp: %w", err)
		}
		return ErrExpiredOTP
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, email, hash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrNoSuchAccount
		}
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.otpRepo.Delete(ctx, email); err != nil {
		return fmt.Errorf("failed to consume otp: %w", err)
	}
	return nil
}

// generateOTPCode returns 6 random ASCII digits
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
