package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/omengineers/booking-backend/internal/models"
)

// DatabaseStore implements Store backed by PostgreSQL via GORM
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a new database-backed storage
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Customer operations

func (d *DatabaseStore) CreateCustomer(customer *models.Customer) (*models.Customer, error) {
	if err := d.db.Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func (d *DatabaseStore) GetCustomer(id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := d.db.First(&customer, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &customer, nil
}

func (d *DatabaseStore) GetCustomerByAuthKey(authKey string) (*models.Customer, error) {
	var customer models.Customer
	if err := d.db.Where("auth_key = ?", authKey).First(&customer).Error; err != nil {
		return nil, translateError(err)
	}
	return &customer, nil
}

func (d *DatabaseStore) GetCustomersByPhone(phoneDigits string) ([]*models.Customer, error) {
	var customers []*models.Customer
	// Stored phones may carry formatting; compare digits-only
	err := d.db.
		Where(`regexp_replace(phone, '\D', '', 'g') = ?`, phoneDigits).
		Order("id").
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (d *DatabaseStore) UpdateCustomer(customer *models.Customer) error {
	return d.db.Save(customer).Error
}

// Service catalog operations

func (d *DatabaseStore) GetService(id uint) (*models.Service, error) {
	var service models.Service
	if err := d.db.First(&service, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &service, nil
}

func (d *DatabaseStore) GetAllServices() ([]*models.Service, error) {
	var services []*models.Service
	if err := d.db.Where("is_active = ?", true).Order("id").Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (d *DatabaseStore) SeedServices(services []models.Service) error {
	var count int64
	if err := d.db.Model(&models.Service{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil // already seeded
	}

	return d.db.Transaction(func(tx *gorm.DB) error {
		for i := range services {
			service := services[i]
			service.IsActive = true
			if err := tx.Create(&service).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Appointment operations

func (d *DatabaseStore) CreateAppointment(appointment *models.Appointment) (*models.Appointment, error) {
	if err := d.db.Create(appointment).Error; err != nil {
		return nil, err
	}
	return appointment, nil
}

func (d *DatabaseStore) GetAppointment(id uint) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := d.db.First(&appointment, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &appointment, nil
}

func (d *DatabaseStore) GetAppointmentsByCustomer(customerID uint) ([]*models.Appointment, error) {
	var appointments []*models.Appointment
	err := d.db.
		Where("customer_id = ?", customerID).
		Order("appointment_date, appointment_time").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (d *DatabaseStore) GetConfirmedAppointmentsByDate(date time.Time) ([]*models.Appointment, error) {
	y, m, day := date.Date()
	start := time.Date(y, m, day, 0, 0, 0, 0, date.Location())
	end := start.AddDate(0, 0, 1)

	var appointments []*models.Appointment
	err := d.db.
		Where("status = ? AND appointment_date >= ? AND appointment_date < ?",
			models.AppointmentStatusConfirmed, start, end).
		Order("id").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (d *DatabaseStore) UpdateAppointmentStatus(id uint, status string) error {
	result := d.db.Model(&models.Appointment{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// OTP operations

func (d *DatabaseStore) SaveOTP(otp *models.OTP) (*models.OTP, error) {
	// One active record per phone: retire the previous one in the same
	// transaction that creates the new one.
	err := d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.OTP{}).
			Where("phone = ? AND is_used = ?", otp.Phone, false).
			Update("is_used", true).Error; err != nil {
			return err
		}
		return tx.Create(otp).Error
	})
	if err != nil {
		return nil, err
	}
	return otp, nil
}

func (d *DatabaseStore) GetActiveOTP(phone string) (*models.OTP, error) {
	var otp models.OTP
	err := d.db.
		Where("phone = ? AND is_used = ?", phone, false).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &otp, nil
}

func (d *DatabaseStore) UpdateOTP(otp *models.OTP) error {
	return d.db.Save(otp).Error
}

func (d *DatabaseStore) DeleteExpiredOTPs() (int64, error) {
	result := d.db.
		Where("expires_at < ? OR is_used = ?", time.Now(), true).
		Delete(&models.OTP{})
	return result.RowsAffected, result.Error
}

// Notification operations

func (d *DatabaseStore) CreateNotification(notification *models.Notification) (*models.Notification, error) {
	if err := d.db.Create(notification).Error; err != nil {
		return nil, err
	}
	return notification, nil
}

func (d *DatabaseStore) GetNotificationsByCustomer(customerID uint, limit int) ([]*models.Notification, error) {
	var notifications []*models.Notification
	query := d.db.
		Where("customer_id = ?", customerID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (d *DatabaseStore) GetUnreadCount(customerID uint) (int64, error) {
	var count int64
	err := d.db.Model(&models.Notification{}).
		Where("customer_id = ? AND is_read = ?", customerID, false).
		Count(&count).Error
	return count, err
}

func (d *DatabaseStore) MarkNotificationRead(id, customerID uint) error {
	// Scoped to the owner; a miss on either key reads the same as
	// absent. The is_read guard keeps the original read_at on repeats.
	result := d.db.Model(&models.Notification{}).
		Where("id = ? AND customer_id = ? AND is_read = ?", id, customerID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Already read, or not this customer's record
		var count int64
		err := d.db.Model(&models.Notification{}).
			Where("id = ? AND customer_id = ?", id, customerID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
	}
	return nil
}

func (d *DatabaseStore) MarkAllNotificationsRead(customerID uint) error {
	return d.db.Model(&models.Notification{}).
		Where("customer_id = ? AND is_read = ?", customerID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now(),
		}).Error
}
