package models

import (
	"time"

	"gorm.io/gorm"
)

// Appointment types
const (
	AppointmentTypeService   = "service"
	AppointmentTypeQuotation = "quotation"
)

// Appointment statuses
const (
	AppointmentStatusPending   = "pending"
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
)

// Appointment represents a scheduled service visit or a quotation request
type Appointment struct {
	gorm.Model
	CustomerID uint `json:"customer_id" gorm:"not null;index"`
	ServiceID  uint `json:"service_id" gorm:"not null"`

	AppointmentDate time.Time `json:"appointment_date" gorm:"not null"` // date portion only
	AppointmentTime string    `json:"appointment_time" gorm:"not null"` // "15:04"

	Type   string `json:"appointment_type" gorm:"not null;default:service"`
	Status string `json:"status" gorm:"not null;default:pending"`

	Notes   string `json:"notes"`
	Address string `json:"address"`
}

// IsUpcoming reports whether the appointment is still ahead of today
// and not yet resolved, for the dashboard listing.
func (a *Appointment) IsUpcoming(today time.Time) bool {
	if a.Status != AppointmentStatusPending && a.Status != AppointmentStatusConfirmed {
		return false
	}
	y, m, d := today.Date()
	startOfDay := time.Date(y, m, d, 0, 0, 0, 0, today.Location())
	return !a.AppointmentDate.Before(startOfDay)
}

// BookingRequest is the payload for scheduling a service appointment
type BookingRequest struct {
	ServiceID       uint   `json:"service_id"`
	AppointmentDate string `json:"appointment_date"` // "2006-01-02"
	AppointmentTime string `json:"appointment_time"` // "15:04"
	Notes           string `json:"notes"`
	Address         string `json:"address"`
}

// QuotationRequest is the payload for requesting a quotation
type QuotationRequest struct {
	ServiceID     uint   `json:"service_id"`
	PreferredDate string `json:"preferred_date"`
	PreferredTime string `json:"preferred_time"`
	Description   string `json:"description"`
	Address       string `json:"address"`
}
