package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/omengineers/booking-backend/internal/models"
)

// MemoryStore holds all data in memory for testing and local development
type MemoryStore struct {
	customers     map[uint]*models.Customer
	services      map[uint]*models.Service
	appointments  map[uint]*models.Appointment
	otps          map[string]*models.OTP // keyed by digits-only phone
	notifications map[uint]*models.Notification

	// Mutexes for thread safety
	customerMu     sync.RWMutex
	serviceMu      sync.RWMutex
	appointmentMu  sync.RWMutex
	otpMu          sync.RWMutex
	notificationMu sync.RWMutex

	// Counters for ID generation
	customerCounter     uint
	serviceCounter      uint
	appointmentCounter  uint
	otpCounter          uint
	notificationCounter uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		customers:     make(map[uint]*models.Customer),
		services:      make(map[uint]*models.Service),
		appointments:  make(map[uint]*models.Appointment),
		otps:          make(map[string]*models.OTP),
		notifications: make(map[uint]*models.Notification),
	}
}

// Customer operations

func (m *MemoryStore) CreateCustomer(customer *models.Customer) (*models.Customer, error) {
	m.customerMu.Lock()
	defer m.customerMu.Unlock()

	m.customerCounter++
	customer.ID = m.customerCounter
	if customer.AuthKey == "" {
		customer.AuthKey = uuid.NewString()
	}
	customer.CreatedAt = time.Now()
	customer.UpdatedAt = time.Now()

	m.customers[customer.ID] = customer
	return customer, nil
}

func (m *MemoryStore) GetCustomer(id uint) (*models.Customer, error) {
	m.customerMu.RLock()
	defer m.customerMu.RUnlock()

	customer, exists := m.customers[id]
	if !exists {
		return nil, ErrNotFound
	}
	return customer, nil
}

func (m *MemoryStore) GetCustomerByAuthKey(authKey string) (*models.Customer, error) {
	m.customerMu.RLock()
	defer m.customerMu.RUnlock()

	for _, customer := range m.customers {
		if customer.AuthKey == authKey {
			return customer, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetCustomersByPhone(phoneDigits string) ([]*models.Customer, error) {
	m.customerMu.RLock()
	defer m.customerMu.RUnlock()

	var matches []*models.Customer
	for _, customer := range m.customers {
		if customer.PhoneDigits() == phoneDigits {
			matches = append(matches, customer)
		}
	}

	// Stable order for account selection lists
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

func (m *MemoryStore) UpdateCustomer(customer *models.Customer) error {
	m.customerMu.Lock()
	defer m.customerMu.Unlock()

	if _, exists := m.customers[customer.ID]; !exists {
		return ErrNotFound
	}
	customer.UpdatedAt = time.Now()
	m.customers[customer.ID] = customer
	return nil
}

// Service catalog operations

func (m *MemoryStore) GetService(id uint) (*models.Service, error) {
	m.serviceMu.RLock()
	defer m.serviceMu.RUnlock()

	service, exists := m.services[id]
	if !exists {
		return nil, ErrNotFound
	}
	return service, nil
}

func (m *MemoryStore) GetAllServices() ([]*models.Service, error) {
	m.serviceMu.RLock()
	defer m.serviceMu.RUnlock()

	var services []*models.Service
	for _, service := range m.services {
		if service.IsActive {
			services = append(services, service)
		}
	}
	sort.Slice(services, func(i, j int) bool { return services[i].ID < services[j].ID })
	return services, nil
}

func (m *MemoryStore) SeedServices(services []models.Service) error {
	m.serviceMu.Lock()
	defer m.serviceMu.Unlock()

	if len(m.services) > 0 {
		return nil // already seeded
	}

	for i := range services {
		m.serviceCounter++
		service := services[i]
		service.ID = m.serviceCounter
		service.IsActive = true
		service.CreatedAt = time.Now()
		m.services[service.ID] = &service
	}
	return nil
}

// Appointment operations

func (m *MemoryStore) CreateAppointment(appointment *models.Appointment) (*models.Appointment, error) {
	m.appointmentMu.Lock()
	defer m.appointmentMu.Unlock()

	m.appointmentCounter++
	appointment.ID = m.appointmentCounter
	if appointment.Status == "" {
		appointment.Status = models.AppointmentStatusPending
	}
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	m.appointments[appointment.ID] = appointment
	return appointment, nil
}

func (m *MemoryStore) GetAppointment(id uint) (*models.Appointment, error) {
	m.appointmentMu.RLock()
	defer m.appointmentMu.RUnlock()

	appointment, exists := m.appointments[id]
	if !exists {
		return nil, ErrNotFound
	}
	return appointment, nil
}

func (m *MemoryStore) GetAppointmentsByCustomer(customerID uint) ([]*models.Appointment, error) {
	m.appointmentMu.RLock()
	defer m.appointmentMu.RUnlock()

	var appointments []*models.Appointment
	for _, appointment := range m.appointments {
		if appointment.CustomerID == customerID {
			appointments = append(appointments, appointment)
		}
	}
	sort.Slice(appointments, func(i, j int) bool {
		if appointments[i].AppointmentDate.Equal(appointments[j].AppointmentDate) {
			return appointments[i].AppointmentTime < appointments[j].AppointmentTime
		}
		return appointments[i].AppointmentDate.Before(appointments[j].AppointmentDate)
	})
	return appointments, nil
}

func (m *MemoryStore) GetConfirmedAppointmentsByDate(date time.Time) ([]*models.Appointment, error) {
	m.appointmentMu.RLock()
	defer m.appointmentMu.RUnlock()

	y, mo, d := date.Date()
	var appointments []*models.Appointment
	for _, appointment := range m.appointments {
		if appointment.Status != models.AppointmentStatusConfirmed {
			continue
		}
		ay, am, ad := appointment.AppointmentDate.Date()
		if ay == y && am == mo && ad == d {
			appointments = append(appointments, appointment)
		}
	}
	sort.Slice(appointments, func(i, j int) bool { return appointments[i].ID < appointments[j].ID })
	return appointments, nil
}

func (m *MemoryStore) UpdateAppointmentStatus(id uint, status string) error {
	m.appointmentMu.Lock()
	defer m.appointmentMu.Unlock()

	appointment, exists := m.appointments[id]
	if !exists {
		return ErrNotFound
	}
	appointment.Status = status
	appointment.UpdatedAt = time.Now()
	return nil
}

// OTP operations

func (m *MemoryStore) SaveOTP(otp *models.OTP) (*models.OTP, error) {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	m.otpCounter++
	otp.ID = m.otpCounter
	otp.CreatedAt = time.Now()
	otp.UpdatedAt = time.Now()

	// Supersedes any prior record for the phone
	m.otps[otp.Phone] = otp
	return otp, nil
}

func (m *MemoryStore) GetActiveOTP(phone string) (*models.OTP, error) {
	m.otpMu.RLock()
	defer m.otpMu.RUnlock()

	otp, exists := m.otps[phone]
	if !exists || otp.IsUsed {
		return nil, ErrNotFound
	}
	return otp, nil
}

func (m *MemoryStore) UpdateOTP(otp *models.OTP) error {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	existing, exists := m.otps[otp.Phone]
	if !exists || existing.ID != otp.ID {
		return ErrNotFound
	}
	otp.UpdatedAt = time.Now()
	m.otps[otp.Phone] = otp
	return nil
}

func (m *MemoryStore) DeleteExpiredOTPs() (int64, error) {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	now := time.Now()
	var removed int64
	for phone, otp := range m.otps {
		if otp.IsUsed || otp.IsExpired(now) {
			delete(m.otps, phone)
			removed++
		}
	}
	return removed, nil
}

// Notification operations

func (m *MemoryStore) CreateNotification(notification *models.Notification) (*models.Notification, error) {
	m.notificationMu.Lock()
	defer m.notificationMu.Unlock()

	m.notificationCounter++
	notification.ID = m.notificationCounter
	notification.CreatedAt = time.Now()
	notification.UpdatedAt = time.Now()

	m.notifications[notification.ID] = notification
	return notification, nil
}

func (m *MemoryStore) GetNotificationsByCustomer(customerID uint, limit int) ([]*models.Notification, error) {
	m.notificationMu.RLock()
	defer m.notificationMu.RUnlock()

	var notifications []*models.Notification
	for _, notification := range m.notifications {
		if notification.CustomerID == customerID {
			notifications = append(notifications, notification)
		}
	}

	// Newest first
	sort.Slice(notifications, func(i, j int) bool {
		if notifications[i].CreatedAt.Equal(notifications[j].CreatedAt) {
			return notifications[i].ID > notifications[j].ID
		}
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})

	if limit > 0 && len(notifications) > limit {
		notifications = notifications[:limit]
	}
	return notifications, nil
}

func (m *MemoryStore) GetUnreadCount(customerID uint) (int64, error) {
	m.notificationMu.RLock()
	defer m.notificationMu.RUnlock()

	var count int64
	for _, notification := range m.notifications {
		if notification.CustomerID == customerID && !notification.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) MarkNotificationRead(id, customerID uint) error {
	m.notificationMu.Lock()
	defer m.notificationMu.Unlock()

	notification, exists := m.notifications[id]
	if !exists || notification.CustomerID != customerID {
		return ErrNotFound
	}

	if !notification.IsRead {
		now := time.Now()
		notification.IsRead = true
		notification.ReadAt = &now
	}
	return nil
}

func (m *MemoryStore) MarkAllNotificationsRead(customerID uint) error {
	m.notificationMu.Lock()
	defer m.notificationMu.Unlock()

	now := time.Now()
	for _, notification := range m.notifications {
		if notification.CustomerID == customerID && !notification.IsRead {
			notification.IsRead = true
			notification.ReadAt = &now
		}
	}
	return nil
}
