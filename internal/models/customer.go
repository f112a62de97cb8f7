package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer represents a customer account in the system
type Customer struct {
	// Using gorm.Model gives us ID (uint), CreatedAt, UpdatedAt, DeletedAt automatically
	gorm.Model

	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone" gorm:"index"` // NOT unique - households share phones
	Address string `json:"address"`

	// Durable credential for token/header/query authentication
	AuthKey string `json:"-" gorm:"uniqueIndex"`

	LastLoginAt *time.Time `json:"last_login_at"`
}

// BeforeCreate hook to auto-generate the auth key and normalize data
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.AuthKey == "" {
		c.AuthKey = uuid.NewString()
	}

	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)

	return nil
}

// PhoneDigits returns the phone number normalized to digits only,
// used when matching a customer against a verified phone number.
func (c *Customer) PhoneDigits() string {
	var b strings.Builder
	for _, r := range c.Phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsProfileComplete reports whether the customer finished onboarding.
// A blank name means the account was created at OTP verification and
// still needs the profile completion step.
func (c *Customer) IsProfileComplete() bool {
	return strings.TrimSpace(c.Name) != ""
}

// ToResponse returns the customer data safe to send to the client
func (c *Customer) ToResponse() map[string]interface{} {
	return map[string]interface{}{
		"id":         c.ID,
		"name":       c.Name,
		"email":      c.Email,
		"phone":      c.Phone,
		"address":    c.Address,
		"created_at": c.CreatedAt,
		"updated_at": c.UpdatedAt,
	}
}

// ProfileCompletion is the payload for the profile completion form
type ProfileCompletion struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	House    string `json:"house"`
	Road     string `json:"road"`
	Landmark string `json:"landmark"`
	ZipCode  string `json:"zip_code"`
	City     string `json:"city"`
	State    string `json:"state"`
}

// Address assembles the complete address from the individual components,
// skipping the ones left blank.
func (p *ProfileCompletion) CompleteAddress() string {
	parts := []string{p.House, p.Road}
	if p.Landmark != "" {
		parts = append(parts, p.Landmark)
	}
	parts = append(parts, p.City, p.State, p.ZipCode)

	var filled []string
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			filled = append(filled, strings.TrimSpace(part))
		}
	}
	return strings.Join(filled, ", ")
}

// ProfileUpdate is the payload for profile edits from the dashboard
type ProfileUpdate struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}
