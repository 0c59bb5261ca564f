package model

import "time"

// OTP is a one-time password-reset code. At most one live code exists per
// email; issuing a new one evicts the previous record.
type OTP struct {
	Email     string    `json:"email"`
	Code      string    `json:"otp"` // 6 ASCII digits
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the code is past its absolute expiry.
func (o *OTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
