package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Notification types for appointment lifecycle and system events
const (
	NotificationAppointmentConfirmed = "appointment_confirmed"
	NotificationServiceCompleted     = "service_completed"
	NotificationPaymentDue           = "payment_due"
	NotificationSpecialOffer         = "special_offer"
	NotificationSystemUpdate         = "system_update"
	NotificationServiceScheduled     = "service_scheduled"
	NotificationServiceCancelled     = "service_cancelled"
)

// Notification is a durable inbox record for one customer
type Notification struct {
	gorm.Model
	CustomerID    uint  `json:"customer_id" gorm:"not null;index"`
	AppointmentID *uint `json:"appointment_id"`

	Type    string `json:"notification_type" gorm:"not null"`
	Title   string `json:"title" gorm:"not null"`
	Message string `json:"message" gorm:"not null"`

	IsRead bool       `json:"is_read" gorm:"default:false;not null"`
	ReadAt *time.Time `json:"read_at"`

	// Optional call to action, e.g. "View Appointment" -> "/appointment/123"
	ActionText string `json:"action_text"`
	ActionURL  string `json:"action_url"`
}

// ToResponse returns the JSON shape the frontend consumes
func (n *Notification) ToResponse() map[string]interface{} {
	var readAt interface{}
	if n.ReadAt != nil {
		readAt = n.ReadAt.Format(time.RFC3339)
	}
	var appointmentID interface{}
	if n.AppointmentID != nil {
		appointmentID = *n.AppointmentID
	}

	return map[string]interface{}{
		"id":                n.ID,
		"customer_id":       n.CustomerID,
		"appointment_id":    appointmentID,
		"notification_type": n.Type,
		"title":             n.Title,
		"message":           n.Message,
		"is_read":           n.IsRead,
		"created_at":        n.CreatedAt.Format(time.RFC3339),
		"read_at":           readAt,
		"action_text":       n.ActionText,
		"action_url":        n.ActionURL,
		"time_ago":          n.TimeAgo(time.Now()),
	}
}

// TimeAgo formats the record age for display
func (n *Notification) TimeAgo(now time.Time) string {
	diff := now.Sub(n.CreatedAt)

	switch {
	case diff >= 48*time.Hour:
		return fmt.Sprintf("%d days ago", int(diff.Hours()/24))
	case diff >= 24*time.Hour:
		return "1 day ago"
	case diff >= 2*time.Hour:
		return fmt.Sprintf("%d hours ago", int(diff.Hours()))
	case diff >= time.Hour:
		return "1 hour ago"
	case diff >= 2*time.Minute:
		return fmt.Sprintf("%d minutes ago", int(diff.Minutes()))
	case diff >= time.Minute:
		return "1 minute ago"
	default:
		return "Just now"
	}
}
