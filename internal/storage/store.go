package storage

import (
	"errors"
	"time"

	"github.com/omengineers/booking-backend/internal/models"
)

// ErrNotFound is returned when a lookup matches no record.
// Cross-customer notification access also returns ErrNotFound so the
// response does not leak whether the record exists.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for storage operations
type Store interface {
	// Customer operations
	CreateCustomer(customer *models.Customer) (*models.Customer, error)
	GetCustomer(id uint) (*models.Customer, error)
	GetCustomerByAuthKey(authKey string) (*models.Customer, error)
	GetCustomersByPhone(phoneDigits string) ([]*models.Customer, error)
	UpdateCustomer(customer *models.Customer) error

	// Service catalog operations
	GetService(id uint) (*models.Service, error)
	GetAllServices() ([]*models.Service, error)
	SeedServices(services []models.Service) error

	// Appointment operations
	CreateAppointment(appointment *models.Appointment) (*models.Appointment, error)
	GetAppointment(id uint) (*models.Appointment, error)
	GetAppointmentsByCustomer(customerID uint) ([]*models.Appointment, error)
	GetConfirmedAppointmentsByDate(date time.Time) ([]*models.Appointment, error)
	UpdateAppointmentStatus(id uint, status string) error

	// OTP operations. Phone keys are digits-only; SaveOTP supersedes
	// any prior active record for the same phone.
	SaveOTP(otp *models.OTP) (*models.OTP, error)
	GetActiveOTP(phone string) (*models.OTP, error)
	UpdateOTP(otp *models.OTP) error
	DeleteExpiredOTPs() (int64, error)

	// Notification operations
	CreateNotification(notification *models.Notification) (*models.Notification, error)
	GetNotificationsByCustomer(customerID uint, limit int) ([]*models.Notification, error)
	GetUnreadCount(customerID uint) (int64, error)
	MarkNotificationRead(id, customerID uint) error
	MarkAllNotificationsRead(customerID uint) error
}
