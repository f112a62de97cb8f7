package services

import (
	"crypto/subtle"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/omengineers/booking-backend/internal/models"
	"github.com/omengineers/booking-backend/internal/storage"
	"github.com/omengineers/booking-backend/internal/utils"
)

const (
	otpTTL            = 10 * time.Minute
	otpMaxAttempts    = 3
	otpResendInterval = 60 * time.Second
)

// OTPResult is the structured outcome of every OTP operation
type OTPResult struct {
	Success           bool   `json:"success"`
	ErrorCode         string `json:"error_code,omitempty"`
	Message           string `json:"message"`
	RemainingAttempts int    `json:"remaining_attempts,omitempty"`
}

func otpFailure(code, message string) *OTPResult {
	return &OTPResult{Success: false, ErrorCode: code, Message: message}
}

// OTPService issues, verifies and expires one-time passcodes
type OTPService struct {
	store storage.Store
	sms   SMSSender

	// Serializes record mutations so concurrent verify attempts cannot
	// lose an attempt-count increment
	mu sync.Mutex
}

// NewOTPService creates a new OTP service
func NewOTPService(store storage.Store, sms SMSSender) *OTPService {
	return &OTPService{store: store, sms: sms}
}

// Send generates a fresh passcode for the phone, supersedes any prior
// active one, and dispatches it over SMS. An SMS dispatch failure is
// reported to the caller but leaves the stored code valid.
func (s *OTPService) Send(phone string) *OTPResult {
	if !utils.ValidatePhone(phone) {
		return otpFailure(CodeInvalidInput, "Please enter a valid phone number")
	}
	return s.issue(utils.NormalizePhone(phone), false)
}

// issue generates and stores a fresh code, then dispatches it. The
// throttle check and the save share one critical section so concurrent
// resends at the window edge cannot both slip through.
func (s *OTPService) issue(digits string, throttled bool) *OTPResult {
	code, err := utils.GenerateSecureOTP()
	if err != nil {
		log.Printf("Failed to generate OTP: %v", err)
		return otpFailure(CodeServerError, "Could not generate verification code. Please try again.")
	}

	s.mu.Lock()
	if throttled {
		if existing, err := s.store.GetActiveOTP(digits); err == nil && existing != nil {
			if wait := otpResendInterval - time.Since(existing.CreatedAt); wait > 0 {
				s.mu.Unlock()
				return otpFailure(CodeTooSoon,
					fmt.Sprintf("Please wait %d seconds before requesting a new code", int(wait.Seconds())+1))
			}
		}
	}
	otp := &models.OTP{
		Phone:     digits,
		Code:      code,
		ExpiresAt: time.Now().Add(otpTTL),
	}
	_, err = s.store.SaveOTP(otp)
	s.mu.Unlock()
	if err != nil {
		log.Printf("Failed to store OTP for %s: %v", digits, err)
		return otpFailure(CodeServerError, "Could not process your request. Please try again.")
	}

	body := fmt.Sprintf("Your Om Engineers verification code is %s. It expires in 10 minutes.", code)
	if err := s.sms.SendSMS(dialablePhone(digits), body); err != nil {
		log.Printf("SMS dispatch failed for %s: %v", digits, err)
		return otpFailure(CodeServerError, "Could not send the verification code. Please try again shortly.")
	}

	return &OTPResult{Success: true, Message: "Verification code sent successfully"}
}

// Verify checks a submitted code against the active record for the phone
func (s *OTPService) Verify(phone, code string) *OTPResult {
	digits := utils.NormalizePhone(phone)
	code = strings.TrimSpace(code)
	if digits == "" || code == "" {
		return otpFailure(CodeInvalidInput, "Phone number and verification code are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	otp, err := s.store.GetActiveOTP(digits)
	if err == storage.ErrNotFound {
		return otpFailure(CodeNotFound, "No verification code found. Please request a new one.")
	}
	if err != nil {
		log.Printf("Failed to load OTP for %s: %v", digits, err)
		return otpFailure(CodeServerError, "Could not verify the code. Please try again.")
	}

	if otp.IsExpired(time.Now()) {
		// Invalidate so the record cannot be retried later
		otp.IsUsed = true
		if err := s.store.UpdateOTP(otp); err != nil {
			log.Printf("Failed to invalidate expired OTP for %s: %v", digits, err)
		}
		return otpFailure(CodeExpired, "Verification code has expired. Please request a new one.")
	}

	if otp.Attempts >= otpMaxAttempts {
		return otpFailure(CodeAttemptsExceeded, "Too many incorrect attempts. Please request a new code.")
	}

	otp.Attempts++
	if err := s.store.UpdateOTP(otp); err != nil {
		log.Printf("Failed to record OTP attempt for %s: %v", digits, err)
		return otpFailure(CodeServerError, "Could not verify the code. Please try again.")
	}

	// The code is short and attempt-limited, but compare in constant
	// time anyway
	if subtle.ConstantTimeCompare([]byte(otp.Code), []byte(code)) != 1 {
		remaining := otpMaxAttempts - otp.Attempts
		result := otpFailure(CodeInvalidInput,
			fmt.Sprintf("Incorrect verification code. %d attempts remaining.", remaining))
		result.RemainingAttempts = remaining
		return result
	}

	now := time.Now()
	otp.IsUsed = true
	otp.VerifiedAt = &now
	if err := s.store.UpdateOTP(otp); err != nil {
		log.Printf("Failed to consume OTP for %s: %v", digits, err)
		return otpFailure(CodeServerError, "Could not verify the code. Please try again.")
	}

	return &OTPResult{Success: true, Message: "Phone number verified successfully"}
}

// Resend issues a new passcode, throttled to one per minute
func (s *OTPService) Resend(phone string) *OTPResult {
	if !utils.ValidatePhone(phone) {
		return otpFailure(CodeInvalidInput, "Please enter a valid phone number")
	}
	return s.issue(utils.NormalizePhone(phone), true)
}

// Status returns a diagnostic view of the active record for a phone.
// The code itself is masked.
func (s *OTPService) Status(phone string) (map[string]interface{}, *OTPResult) {
	digits := utils.NormalizePhone(phone)
	if digits == "" {
		return nil, otpFailure(CodeInvalidInput, "Phone number is required")
	}

	otp, err := s.store.GetActiveOTP(digits)
	if err == storage.ErrNotFound {
		return nil, otpFailure(CodeNotFound, "No active verification code for this phone")
	}
	if err != nil {
		return nil, otpFailure(CodeServerError, "Could not load OTP status")
	}

	return map[string]interface{}{
		"phone":      digits,
		"code":       utils.MaskCode(otp.Code),
		"created_at": otp.CreatedAt,
		"expires_at": otp.ExpiresAt,
		"attempts":   otp.Attempts,
		"is_expired": otp.IsExpired(time.Now()),
	}, nil
}

// CleanupExpired sweeps expired and consumed records. Safe to run on a
// timer; repeated runs are no-ops.
func (s *OTPService) CleanupExpired() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.DeleteExpiredOTPs()
}

// dialablePhone turns a digits-only phone into an E.164-ish dial string.
// Bare 10-digit numbers are assumed domestic.
func dialablePhone(digits string) string {
	if len(digits) == 10 {
		return "+91" + digits
	}
	return "+" + digits
}
