package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const otpDigits = 6

var otpMax = big.NewInt(1_000_000)

// GenerateOTP produces a fixed-length numeric code from a cryptographically
// secure source.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpMax)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", otpDigits, n), nil
}

// OTPValid reports whether the supplied code matches the stored one and the
// expiry has not passed. A mismatch and an expired code are indistinguishable
// in the result; callers report a single "invalid or expired" condition.
func OTPValid(stored string, expiresAt time.Time, supplied string, now time.Time) bool {
	if stored == "" || supplied == "" {
		return false
	}
	if now.After(expiresAt) {
		return false
	}
	return stored == supplied
}
