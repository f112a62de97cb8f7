package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omengineers/booking-backend/internal/models"
)

func seedNotification(t *testing.T, store *MemoryStore, customerID uint, title string) *models.Notification {
	t.Helper()
	notification, err := store.CreateNotification(&models.Notification{
		CustomerID: customerID,
		Type:       models.NotificationSystemUpdate,
		Title:      title,
		Message:    "test message",
	})
	require.NoError(t, err)
	return notification
}

func TestMemoryStore_CustomersByPhone(t *testing.T) {
	store := NewMemoryStore()

	first, err := store.CreateCustomer(&models.Customer{Name: "Asha Rao", Phone: "+91 99999 99999"})
	require.NoError(t, err)
	second, err := store.CreateCustomer(&models.Customer{Name: "Vikram Rao", Phone: "919999999999"})
	require.NoError(t, err)
	_, err = store.CreateCustomer(&models.Customer{Name: "Meena Iyer", Phone: "8888888888"})
	require.NoError(t, err)

	matches, err := store.GetCustomersByPhone("919999999999")
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// Ordered by id so selection lists are stable
	assert.Equal(t, first.ID, matches[0].ID)
	assert.Equal(t, second.ID, matches[1].ID)

	none, err := store.GetCustomersByPhone("0000000000")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStore_CustomerAuthKey(t *testing.T) {
	store := NewMemoryStore()

	customer, err := store.CreateCustomer(&models.Customer{Name: "Asha Rao", Phone: "9999999999"})
	require.NoError(t, err)
	require.NotEmpty(t, customer.AuthKey)

	found, err := store.GetCustomerByAuthKey(customer.AuthKey)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, found.ID)

	_, err = store.GetCustomerByAuthKey("no-such-key")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_SaveOTPSupersedes(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.SaveOTP(&models.OTP{Phone: "9999999999", Code: "111111", ExpiresAt: time.Now().Add(10 * time.Minute)})
	require.NoError(t, err)
	second, err := store.SaveOTP(&models.OTP{Phone: "9999999999", Code: "222222", ExpiresAt: time.Now().Add(10 * time.Minute)})
	require.NoError(t, err)

	active, err := store.GetActiveOTP("9999999999")
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
	assert.Equal(t, "222222", active.Code)
}

func TestMemoryStore_GetActiveOTPIgnoresUsed(t *testing.T) {
	store := NewMemoryStore()

	otp, err := store.SaveOTP(&models.OTP{Phone: "9999999999", Code: "111111", ExpiresAt: time.Now().Add(10 * time.Minute)})
	require.NoError(t, err)

	otp.IsUsed = true
	require.NoError(t, store.UpdateOTP(otp))

	_, err = store.GetActiveOTP("9999999999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_UpdateOTPRejectsSuperseded(t *testing.T) {
	store := NewMemoryStore()

	stale, err := store.SaveOTP(&models.OTP{Phone: "9999999999", Code: "111111", ExpiresAt: time.Now().Add(10 * time.Minute)})
	require.NoError(t, err)
	staleCopy := *stale

	_, err = store.SaveOTP(&models.OTP{Phone: "9999999999", Code: "222222", ExpiresAt: time.Now().Add(10 * time.Minute)})
	require.NoError(t, err)

	// A write against the replaced record must not clobber the new one
	staleCopy.Attempts = 3
	assert.ErrorIs(t, store.UpdateOTP(&staleCopy), ErrNotFound)
}

func TestMemoryStore_DeleteExpiredOTPs(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.SaveOTP(&models.OTP{Phone: "1111111111", Code: "111111", ExpiresAt: time.Now().Add(-time.Minute)})
	require.NoError(t, err)
	used, err := store.SaveOTP(&models.OTP{Phone: "2222222222", Code: "222222", ExpiresAt: time.Now().Add(10 * time.Minute)})
	require.NoError(t, err)
	used.IsUsed = true
	require.NoError(t, store.UpdateOTP(used))
	_, err = store.SaveOTP(&models.OTP{Phone: "3333333333", Code: "333333", ExpiresAt: time.Now().Add(10 * time.Minute)})
	require.NoError(t, err)

	removed, err := store.DeleteExpiredOTPs()
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	// The live code survives the sweep
	_, err = store.GetActiveOTP("3333333333")
	assert.NoError(t, err)
}

func TestMemoryStore_NotificationsNewestFirst(t *testing.T) {
	store := NewMemoryStore()

	for _, title := range []string{"first", "second", "third"} {
		seedNotification(t, store, 1, title)
	}
	seedNotification(t, store, 2, "foreign")

	notifications, err := store.GetNotificationsByCustomer(1, 50)
	require.NoError(t, err)
	require.Len(t, notifications, 3)
	assert.Equal(t, "third", notifications[0].Title)
	assert.Equal(t, "first", notifications[2].Title)

	limited, err := store.GetNotificationsByCustomer(1, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "third", limited[0].Title)
}

func TestMemoryStore_UnreadCount(t *testing.T) {
	store := NewMemoryStore()

	first := seedNotification(t, store, 1, "first")
	seedNotification(t, store, 1, "second")
	seedNotification(t, store, 2, "foreign")

	count, err := store.GetUnreadCount(1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, store.MarkNotificationRead(first.ID, 1))

	count, err = store.GetUnreadCount(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMemoryStore_MarkNotificationReadScoping(t *testing.T) {
	store := NewMemoryStore()

	mine := seedNotification(t, store, 1, "mine")
	foreign := seedNotification(t, store, 2, "foreign")

	// Another customer's notification is indistinguishable from a
	// missing one
	assert.ErrorIs(t, store.MarkNotificationRead(foreign.ID, 1), ErrNotFound)
	assert.ErrorIs(t, store.MarkNotificationRead(999, 1), ErrNotFound)

	require.NoError(t, store.MarkNotificationRead(mine.ID, 1))
	require.NotNil(t, mine.ReadAt)
	firstReadAt := *mine.ReadAt

	// Re-reading keeps the original read time
	require.NoError(t, store.MarkNotificationRead(mine.ID, 1))
	assert.Equal(t, firstReadAt, *mine.ReadAt)
}

func TestMemoryStore_MarkAllNotificationsRead(t *testing.T) {
	store := NewMemoryStore()

	seedNotification(t, store, 1, "first")
	seedNotification(t, store, 1, "second")
	foreign := seedNotification(t, store, 2, "foreign")

	require.NoError(t, store.MarkAllNotificationsRead(1))

	count, err := store.GetUnreadCount(1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
	assert.False(t, foreign.IsRead)

	// Idempotent on an already-clean inbox
	require.NoError(t, store.MarkAllNotificationsRead(1))
}

func TestMemoryStore_SeedServices(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.SeedServices(models.DefaultServices))

	services, err := store.GetAllServices()
	require.NoError(t, err)
	require.Len(t, services, len(models.DefaultServices))

	// Seeding again must not duplicate the catalog
	require.NoError(t, store.SeedServices(models.DefaultServices))
	services, err = store.GetAllServices()
	require.NoError(t, err)
	assert.Len(t, services, len(models.DefaultServices))
}

func TestMemoryStore_AppointmentsByCustomer(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.CreateAppointment(&models.Appointment{
		CustomerID:      1,
		ServiceID:       1,
		AppointmentDate: time.Now().AddDate(0, 0, 2),
		AppointmentTime: "10:00",
		Type:            models.AppointmentTypeService,
		Status:          models.AppointmentStatusConfirmed,
	})
	require.NoError(t, err)
	_, err = store.CreateAppointment(&models.Appointment{
		CustomerID:      2,
		ServiceID:       1,
		AppointmentDate: time.Now().AddDate(0, 0, 3),
		AppointmentTime: "11:00",
		Type:            models.AppointmentTypeService,
		Status:          models.AppointmentStatusConfirmed,
	})
	require.NoError(t, err)

	appointments, err := store.GetAppointmentsByCustomer(1)
	require.NoError(t, err)
	require.Len(t, appointments, 1)
	assert.Equal(t, uint(1), appointments[0].CustomerID)
}

func TestMemoryStore_ConfirmedAppointmentsByDate(t *testing.T) {
	store := NewMemoryStore()
	tomorrow := time.Now().AddDate(0, 0, 1)

	_, err := store.CreateAppointment(&models.Appointment{
		CustomerID:      1,
		ServiceID:       1,
		AppointmentDate: tomorrow,
		AppointmentTime: "10:00",
		Type:            models.AppointmentTypeService,
		Status:          models.AppointmentStatusConfirmed,
	})
	require.NoError(t, err)
	_, err = store.CreateAppointment(&models.Appointment{
		CustomerID:      2,
		ServiceID:       1,
		AppointmentDate: tomorrow,
		AppointmentTime: "11:00",
		Type:            models.AppointmentTypeService,
		Status:          models.AppointmentStatusPending,
	})
	require.NoError(t, err)

	confirmed, err := store.GetConfirmedAppointmentsByDate(tomorrow)
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, models.AppointmentStatusConfirmed, confirmed[0].Status)
}
