package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// OTPLength is the number of digits in a generated passcode
const OTPLength = 6

// GenerateSecureOTP generates a cryptographically secure 6-digit OTP
func GenerateSecureOTP() (string, error) {
	// Generate a random number between 0 and 999999
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}

	// Format with leading zeros to ensure 6 digits
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// NormalizePhone strips everything except digits from a phone number.
// All OTP and customer-matching lookups key on the normalized form.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidatePhone checks that a phone number is usable for SMS dispatch:
// exactly 10 digits domestic, or 11-15 digits with a country code.
func ValidatePhone(phone string) bool {
	digits := NormalizePhone(phone)
	if len(digits) == 10 {
		return true
	}
	// Country-code form, e.g. 91XXXXXXXXXX
	return len(digits) >= 11 && len(digits) <= 15
}

// MaskCode hides all but the last two digits of a passcode for
// status/debug responses.
func MaskCode(code string) string {
	if len(code) <= 2 {
		return strings.Repeat("*", len(code))
	}
	return strings.Repeat("*", len(code)-2) + code[len(code)-2:]
}
