package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/omengineers/booking-backend/internal/models"
	"github.com/omengineers/booking-backend/internal/services"
	"github.com/omengineers/booking-backend/internal/storage"
)

const otpSweepInterval = 5 * time.Minute

// MaintenanceJob runs the recurring background work: expired-OTP sweeps
// and next-day appointment reminders.
type MaintenanceJob struct {
	store         storage.Store
	otpService    *services.OTPService
	notifications *services.NotificationService
	stop          chan struct{}
}

// NewMaintenanceJob creates a new maintenance job scheduler
func NewMaintenanceJob(store storage.Store, otpService *services.OTPService, notifications *services.NotificationService) *MaintenanceJob {
	return &MaintenanceJob{
		store:         store,
		otpService:    otpService,
		notifications: notifications,
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduled jobs
func (j *MaintenanceJob) Start() {
	log.Println("Starting scheduled maintenance jobs...")
	go j.runOTPSweep()
	go j.runAppointmentReminders()
}

// Stop halts all scheduled jobs
func (j *MaintenanceJob) Stop() {
	log.Println("Stopping scheduled maintenance jobs...")
	close(j.stop)
}

// runOTPSweep clears expired and consumed passcodes every few minutes.
// The sweep is idempotent, so overlapping with on-demand cleanup calls
// is harmless.
func (j *MaintenanceJob) runOTPSweep() {
	ticker := time.NewTicker(otpSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed, err := j.otpService.CleanupExpired()
			if err != nil {
				log.Printf("OTP cleanup sweep failed: %v", err)
				continue
			}
			if removed > 0 {
				log.Printf("OTP cleanup sweep removed %d record(s)", removed)
			}
		case <-j.stop:
			return
		}
	}
}

// runAppointmentReminders sends a reminder notification each morning
// for appointments happening the next day
func (j *MaintenanceJob) runAppointmentReminders() {
	for {
		select {
		case <-time.After(untilNextRun(8, 0)):
			j.sendAppointmentReminders()
		case <-j.stop:
			return
		}
	}
}

func (j *MaintenanceJob) sendAppointmentReminders() {
	log.Println("Sending appointment reminders...")

	now := time.Now()
	tomorrow := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())

	appointments, err := j.store.GetConfirmedAppointmentsByDate(tomorrow)
	if err != nil {
		log.Printf("Reminder sweep failed: %v", err)
		return
	}

	sent := 0
	for _, appointment := range appointments {
		service, err := j.store.GetService(appointment.ServiceID)
		if err != nil {
			continue
		}

		appointmentID := appointment.ID
		_, err = j.notifications.Create(&models.Notification{
			CustomerID:    appointment.CustomerID,
			AppointmentID: &appointmentID,
			Type:          models.NotificationServiceScheduled,
			Title:         "Appointment Tomorrow",
			Message: fmt.Sprintf("Reminder: your %s appointment #%d is tomorrow at %s.",
				service.Name, appointment.ID, appointment.AppointmentTime),
			ActionText: "View Appointment",
			ActionURL:  fmt.Sprintf("/appointment/%d/confirmation", appointment.ID),
		})
		if err != nil {
			log.Printf("Failed to create reminder for appointment %d: %v", appointment.ID, err)
			continue
		}
		sent++
	}

	log.Printf("Appointment reminders sent: %d", sent)
}

// untilNextRun computes the wait until the next daily run at hh:mm
func untilNextRun(hour, minute int) time.Duration {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
