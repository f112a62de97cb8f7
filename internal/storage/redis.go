package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/omengineers/booking-backend/internal/models"
)

const otpKeyPrefix = "otp:"

// Records stay readable for a grace period past expiry so a late verify
// attempt reports "expired" rather than "not found".
const otpRetention = time.Hour

// RedisOTPStore keeps the short-lived OTP records in Redis and delegates
// everything else to the wrapped store. Useful when the OTP traffic
// should not hit PostgreSQL.
type RedisOTPStore struct {
	Store
	client *redis.Client
}

// NewRedisOTPStore wraps a store with Redis-backed OTP operations
func NewRedisOTPStore(base Store, client *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{Store: base, client: client}
}

func otpKey(phone string) string {
	return otpKeyPrefix + phone
}

func (r *RedisOTPStore) SaveOTP(otp *models.OTP) (*models.OTP, error) {
	ctx := context.Background()

	otp.CreatedAt = time.Now()
	otp.UpdatedAt = otp.CreatedAt

	data, err := json.Marshal(otp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode OTP record: %w", err)
	}

	// SET replaces any prior record for the phone, which is exactly the
	// supersede semantics SaveOTP promises
	ttl := time.Until(otp.ExpiresAt) + otpRetention
	if err := r.client.Set(ctx, otpKey(otp.Phone), data, ttl).Err(); err != nil {
		return nil, err
	}
	return otp, nil
}

func (r *RedisOTPStore) GetActiveOTP(phone string) (*models.OTP, error) {
	ctx := context.Background()

	data, err := r.client.Get(ctx, otpKey(phone)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var otp models.OTP
	if err := json.Unmarshal(data, &otp); err != nil {
		return nil, fmt.Errorf("failed to decode OTP record: %w", err)
	}
	if otp.IsUsed {
		return nil, ErrNotFound
	}
	return &otp, nil
}

func (r *RedisOTPStore) UpdateOTP(otp *models.OTP) error {
	ctx := context.Background()

	otp.UpdatedAt = time.Now()
	data, err := json.Marshal(otp)
	if err != nil {
		return fmt.Errorf("failed to encode OTP record: %w", err)
	}

	// KEEPTTL preserves the original expiry-plus-retention window
	return r.client.Set(ctx, otpKey(otp.Phone), data, redis.KeepTTL).Err()
}

func (r *RedisOTPStore) DeleteExpiredOTPs() (int64, error) {
	ctx := context.Background()

	var removed int64
	now := time.Now()
	iter := r.client.Scan(ctx, 0, otpKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := r.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		var otp models.OTP
		if err := json.Unmarshal(data, &otp); err != nil {
			continue
		}
		if otp.IsUsed || otp.IsExpired(now) {
			if r.client.Del(ctx, key).Err() == nil {
				removed++
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}
	return removed, nil
}
