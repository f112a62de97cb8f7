package models

import (
	"time"

	"gorm.io/gorm"
)

type OTP struct {
	gorm.Model
	Phone      string    `gorm:"not null;index"` // digits-only key
	Code       string    `gorm:"not null"`
	ExpiresAt  time.Time `gorm:"not null"`
	VerifiedAt *time.Time
	Attempts   int  `gorm:"default:0"`
	IsUsed     bool `gorm:"default:false"`
}

// IsActive reports whether the record can still be verified.
// At most one active record exists per phone; sending a new code
// supersedes the previous one.
func (o *OTP) IsActive(now time.Time) bool {
	return !o.IsUsed && now.Before(o.ExpiresAt)
}

// IsExpired reports whether the expiry window has passed
func (o *OTP) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
