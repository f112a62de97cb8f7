package services

import (
	"fmt"
	"log"

	"github.com/omengineers/booking-backend/internal/models"
	"github.com/omengineers/booking-backend/internal/storage"
)

// NotificationService appends inbox records and signals the broadcaster
// so open push connections learn about them immediately.
type NotificationService struct {
	store       storage.Store
	broadcaster *Broadcaster
}

// NewNotificationService creates a new notification service
func NewNotificationService(store storage.Store, broadcaster *Broadcaster) *NotificationService {
	return &NotificationService{store: store, broadcaster: broadcaster}
}

// Create stores a notification and publishes an update event. The write
// is durable before the broadcast fires; clients without an open
// connection pick the record up when they next poll.
func (n *NotificationService) Create(notification *models.Notification) (*models.Notification, error) {
	created, err := n.store.CreateNotification(notification)
	if err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}

	n.broadcaster.Publish(created.CustomerID)
	return created, nil
}

// NotifyAppointmentScheduled records the booking/quotation confirmation
// for a new appointment
func (n *NotificationService) NotifyAppointmentScheduled(appointment *models.Appointment, service *models.Service) {
	title := "Service Scheduled"
	message := fmt.Sprintf("Your %s appointment #%d has been scheduled for %s at %s.",
		service.Name, appointment.ID,
		appointment.AppointmentDate.Format("January 2, 2006"), appointment.AppointmentTime)
	if appointment.Type == models.AppointmentTypeQuotation {
		title = "Quotation Request Received"
		message = fmt.Sprintf("We received your quotation request #%d for %s. Our team will get back to you shortly.",
			appointment.ID, service.Name)
	}

	n.createForAppointment(appointment, models.NotificationServiceScheduled, title, message, "View Appointment")
}

// NotifyAppointmentStatus records the notification for an appointment
// status transition
func (n *NotificationService) NotifyAppointmentStatus(appointment *models.Appointment, service *models.Service, status string) {
	var notificationType, title, message string

	switch status {
	case models.AppointmentStatusConfirmed:
		notificationType = models.NotificationAppointmentConfirmed
		title = "Appointment Confirmed"
		message = fmt.Sprintf("Your %s appointment #%d is confirmed for %s at %s.",
			service.Name, appointment.ID,
			appointment.AppointmentDate.Format("January 2, 2006"), appointment.AppointmentTime)
	case models.AppointmentStatusCompleted:
		notificationType = models.NotificationServiceCompleted
		title = "Service Completed"
		message = fmt.Sprintf("Your %s appointment #%d has been completed. Thank you for choosing Om Engineers!",
			service.Name, appointment.ID)
	case models.AppointmentStatusCancelled:
		notificationType = models.NotificationServiceCancelled
		title = "Appointment Cancelled"
		message = fmt.Sprintf("Your %s appointment #%d has been cancelled.", service.Name, appointment.ID)
	default:
		return
	}

	n.createForAppointment(appointment, notificationType, title, message, "View Appointment")
}

func (n *NotificationService) createForAppointment(appointment *models.Appointment, notificationType, title, message, actionText string) {
	appointmentID := appointment.ID
	_, err := n.Create(&models.Notification{
		CustomerID:    appointment.CustomerID,
		AppointmentID: &appointmentID,
		Type:          notificationType,
		Title:         title,
		Message:       message,
		ActionText:    actionText,
		ActionURL:     fmt.Sprintf("/appointment/%d/confirmation", appointment.ID),
	})
	if err != nil {
		// The appointment change itself already committed; the customer
		// just misses the inbox entry
		log.Printf("Failed to create notification for appointment %d: %v", appointment.ID, err)
	}
}
