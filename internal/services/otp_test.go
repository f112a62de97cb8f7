package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omengineers/booking-backend/internal/models"
	"github.com/omengineers/booking-backend/internal/storage"
)

// fakeSMS records dispatched messages and can simulate gateway failures
type fakeSMS struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (f *fakeSMS) SendSMS(to, body string) error {
	if f.fail {
		return errors.New("gateway unavailable")
	}
	f.mu.Lock()
	f.sent = append(f.sent, to+": "+body)
	f.mu.Unlock()
	return nil
}

func newTestOTPService() (*OTPService, *storage.MemoryStore, *fakeSMS) {
	store := storage.NewMemoryStore()
	sms := &fakeSMS{}
	return NewOTPService(store, sms), store, sms
}

func TestOTPService_Send(t *testing.T) {
	svc, store, sms := newTestOTPService()

	result := svc.Send("9999999999")
	require.True(t, result.Success)
	assert.Len(t, sms.sent, 1)

	otp, err := store.GetActiveOTP("9999999999")
	require.NoError(t, err)
	assert.Len(t, otp.Code, 6)
	assert.False(t, otp.IsUsed)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), otp.ExpiresAt, 5*time.Second)
}

func TestOTPService_Send_InvalidPhone(t *testing.T) {
	svc, _, sms := newTestOTPService()

	tests := []struct {
		name  string
		phone string
	}{
		{"empty", ""},
		{"too short", "12345"},
		{"too long", "1234567890123456"},
		{"letters only", "notaphone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := svc.Send(tt.phone)
			assert.False(t, result.Success)
			assert.Equal(t, CodeInvalidInput, result.ErrorCode)
		})
	}
	assert.Empty(t, sms.sent)
}

func TestOTPService_Send_SupersedesPriorCode(t *testing.T) {
	svc, store, _ := newTestOTPService()

	require.True(t, svc.Send("9999999999").Success)
	first, err := store.GetActiveOTP("9999999999")
	require.NoError(t, err)

	require.True(t, svc.Send("9999999999").Success)
	second, err := store.GetActiveOTP("9999999999")
	require.NoError(t, err)

	// Old record is gone; the old code no longer verifies
	assert.NotEqual(t, first.ID, second.ID)
	if first.Code != second.Code {
		result := svc.Verify("9999999999", first.Code)
		assert.False(t, result.Success)
	}
}

func TestOTPService_Send_DispatchFailureKeepsCode(t *testing.T) {
	svc, store, sms := newTestOTPService()
	sms.fail = true

	result := svc.Send("9999999999")
	assert.False(t, result.Success)
	assert.Equal(t, CodeServerError, result.ErrorCode)

	// The stored code survives the gateway failure
	otp, err := store.GetActiveOTP("9999999999")
	require.NoError(t, err)
	assert.True(t, otp.IsActive(time.Now()))
}

func TestOTPService_Verify(t *testing.T) {
	svc, store, _ := newTestOTPService()

	require.True(t, svc.Send("9999999999").Success)
	otp, err := store.GetActiveOTP("9999999999")
	require.NoError(t, err)

	// Wrong code: attempt is counted, record stays active
	result := svc.Verify("9999999999", "000000")
	if otp.Code == "000000" {
		t.Skip("collided with the generated code")
	}
	assert.False(t, result.Success)
	assert.Equal(t, 2, result.RemainingAttempts)

	stored, err := store.GetActiveOTP("9999999999")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Attempts)

	// Right code: consumed
	result = svc.Verify("9999999999", otp.Code)
	require.True(t, result.Success)

	_, err = store.GetActiveOTP("9999999999")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestOTPService_Verify_NoActiveCode(t *testing.T) {
	svc, _, _ := newTestOTPService()

	result := svc.Verify("9999999999", "123456")
	assert.False(t, result.Success)
	assert.Equal(t, CodeNotFound, result.ErrorCode)
}

func TestOTPService_Verify_Expired(t *testing.T) {
	svc, store, _ := newTestOTPService()

	_, err := store.SaveOTP(&models.OTP{
		Phone:     "9999999999",
		Code:      "123456",
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)

	// Even the correct code fails once the window has passed
	result := svc.Verify("9999999999", "123456")
	assert.False(t, result.Success)
	assert.Equal(t, CodeExpired, result.ErrorCode)

	// And the record was invalidated as a side effect
	_, err = store.GetActiveOTP("9999999999")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestOTPService_Verify_AttemptsExceeded(t *testing.T) {
	svc, store, _ := newTestOTPService()

	_, err := store.SaveOTP(&models.OTP{
		Phone:     "9999999999",
		Code:      "123456",
		ExpiresAt: time.Now().Add(10 * time.Minute),
	})
	require.NoError(t, err)

	for i := 0; i < otpMaxAttempts; i++ {
		result := svc.Verify("9999999999", "654321")
		assert.False(t, result.Success)
		assert.Equal(t, CodeInvalidInput, result.ErrorCode)
	}

	// Correctness no longer matters past the ceiling
	result := svc.Verify("9999999999", "123456")
	assert.False(t, result.Success)
	assert.Equal(t, CodeAttemptsExceeded, result.ErrorCode)
}

func TestOTPService_Resend_Throttled(t *testing.T) {
	svc, _, _ := newTestOTPService()

	require.True(t, svc.Send("9999999999").Success)

	result := svc.Resend("9999999999")
	assert.False(t, result.Success)
	assert.Equal(t, CodeTooSoon, result.ErrorCode)
}

func TestOTPService_Resend_AfterInterval(t *testing.T) {
	svc, store, _ := newTestOTPService()

	// Simulate a send that happened two minutes ago
	_, err := store.SaveOTP(&models.OTP{
		Phone:     "9999999999",
		Code:      "123456",
		ExpiresAt: time.Now().Add(8 * time.Minute),
	})
	require.NoError(t, err)
	otp, err := store.GetActiveOTP("9999999999")
	require.NoError(t, err)
	otp.CreatedAt = time.Now().Add(-2 * time.Minute)
	require.NoError(t, store.UpdateOTP(otp))

	result := svc.Resend("9999999999")
	assert.True(t, result.Success)
}

func TestOTPService_Resend_ConcurrentlyThrottled(t *testing.T) {
	svc, store, _ := newTestOTPService()

	require.True(t, svc.Send("9999999999").Success)
	original, err := store.GetActiveOTP("9999999999")
	require.NoError(t, err)

	// The throttle check and the save run under one lock, so parallel
	// resends inside the window all fail and none supersedes the code
	const resends = 8
	results := make(chan *OTPResult, resends)
	var wg sync.WaitGroup
	for i := 0; i < resends; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.Resend("9999999999")
		}()
	}
	wg.Wait()
	close(results)

	for result := range results {
		assert.False(t, result.Success)
		assert.Equal(t, CodeTooSoon, result.ErrorCode)
	}

	active, err := store.GetActiveOTP("9999999999")
	require.NoError(t, err)
	assert.Equal(t, original.ID, active.ID)
	assert.Equal(t, original.Code, active.Code)
}

func TestOTPService_CleanupExpired(t *testing.T) {
	svc, store, _ := newTestOTPService()

	_, err := store.SaveOTP(&models.OTP{
		Phone:     "1111111111",
		Code:      "111111",
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)
	_, err = store.SaveOTP(&models.OTP{
		Phone:     "2222222222",
		Code:      "222222",
		ExpiresAt: time.Now().Add(10 * time.Minute),
	})
	require.NoError(t, err)

	removed, err := svc.CleanupExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	// Idempotent: a second sweep finds nothing
	removed, err = svc.CleanupExpired()
	require.NoError(t, err)
	assert.Zero(t, removed)

	_, err = store.GetActiveOTP("2222222222")
	assert.NoError(t, err)
}

func TestOTPService_Status(t *testing.T) {
	svc, _, _ := newTestOTPService()

	require.True(t, svc.Send("9999999999").Success)

	data, failure := svc.Status("9999999999")
	require.Nil(t, failure)
	assert.Equal(t, "9999999999", data["phone"])
	assert.Equal(t, 0, data["attempts"])
	assert.Contains(t, data["code"], "*")

	_, failure = svc.Status("0000000000")
	require.NotNil(t, failure)
	assert.Equal(t, CodeNotFound, failure.ErrorCode)
}
