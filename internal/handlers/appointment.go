package handlers

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/omengineers/booking-backend/internal/middleware"
	"github.com/omengineers/booking-backend/internal/models"
	"github.com/omengineers/booking-backend/internal/services"
	"github.com/omengineers/booking-backend/internal/storage"
)

// Bookings are accepted up to 90 days out
const maxBookingHorizonDays = 90

// AppointmentHandler handles booking and quotation requests
type AppointmentHandler struct {
	store         storage.Store
	notifications *services.NotificationService
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(store storage.Store, notifications *services.NotificationService) *AppointmentHandler {
	return &AppointmentHandler{
		store:         store,
		notifications: notifications,
	}
}

// ListServices handles GET /api/services
func (h *AppointmentHandler) ListServices(c *fiber.Ctx) error {
	catalog, err := h.store.GetAllServices()
	if err != nil {
		return serverError(c, "Could not load services")
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"services": catalog,
	})
}

// Book handles POST /api/appointments: schedule a service visit
func (h *AppointmentHandler) Book(c *fiber.Ctx) error {
	customer := middleware.CustomerFromContext(c)

	var req models.BookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"message":    "Invalid request body",
			"error_code": services.CodeInvalidInput,
		})
	}

	service, err := h.store.GetService(req.ServiceID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"message":    "Invalid service selected",
			"error_code": services.CodeInvalidInput,
		})
	}

	appointmentDate, appointmentTime, failure := parseSchedule(req.AppointmentDate, req.AppointmentTime)
	if failure != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"message":    failure,
			"error_code": services.CodeInvalidInput,
		})
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		address = customer.Address
	}

	appointment, err := h.store.CreateAppointment(&models.Appointment{
		CustomerID:      customer.ID,
		ServiceID:       service.ID,
		AppointmentDate: appointmentDate,
		AppointmentTime: appointmentTime,
		Type:            models.AppointmentTypeService,
		Status:          models.AppointmentStatusPending,
		Notes:           strings.TrimSpace(req.Notes),
		Address:         address,
	})
	if err != nil {
		log.Printf("Failed to create appointment for customer %d: %v", customer.ID, err)
		return serverError(c, "An error occurred while scheduling your appointment. Please try again.")
	}

	h.notifications.NotifyAppointmentScheduled(appointment, service)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":        true,
		"message":        "Service appointment scheduled successfully",
		"appointment_id": appointment.ID,
		"redirect_url":   confirmationURL(appointment.ID),
	})
}

// RequestQuotation handles POST /api/quotations. Dates are optional and
// best-effort here: a bad or past date falls back to today.
func (h *AppointmentHandler) RequestQuotation(c *fiber.Ctx) error {
	customer := middleware.CustomerFromContext(c)

	var req models.QuotationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"message":    "Invalid request body",
			"error_code": services.CodeInvalidInput,
		})
	}

	if strings.TrimSpace(req.Description) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"message":    "Please describe the work you need a quotation for",
			"error_code": services.CodeInvalidInput,
		})
	}

	service, err := h.store.GetService(req.ServiceID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"message":    "Invalid service selected",
			"error_code": services.CodeInvalidInput,
		})
	}

	preferredDate := startOfToday()
	if req.PreferredDate != "" {
		if parsed, err := time.ParseInLocation("2006-01-02", req.PreferredDate, time.Local); err == nil && !parsed.Before(preferredDate) {
			preferredDate = parsed
		}
	}
	preferredTime := "10:00"
	if req.PreferredTime != "" {
		if _, err := time.Parse("15:04", req.PreferredTime); err == nil {
			preferredTime = req.PreferredTime
		}
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		address = customer.Address
	}

	appointment, err := h.store.CreateAppointment(&models.Appointment{
		CustomerID:      customer.ID,
		ServiceID:       service.ID,
		AppointmentDate: preferredDate,
		AppointmentTime: preferredTime,
		Type:            models.AppointmentTypeQuotation,
		Status:          models.AppointmentStatusPending,
		Notes:           "Quotation request: " + strings.TrimSpace(req.Description),
		Address:         address,
	})
	if err != nil {
		log.Printf("Failed to create quotation request for customer %d: %v", customer.ID, err)
		return serverError(c, "An error occurred while submitting your quotation request. Please try again.")
	}

	h.notifications.NotifyAppointmentScheduled(appointment, service)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":        true,
		"message":        "Quotation request submitted successfully",
		"appointment_id": appointment.ID,
		"redirect_url":   confirmationURL(appointment.ID),
	})
}

// Confirmation handles GET /api/appointments/:id/confirmation
func (h *AppointmentHandler) Confirmation(c *fiber.Ctx) error {
	customer := middleware.CustomerFromContext(c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"message":    "Invalid appointment id",
			"error_code": services.CodeInvalidInput,
		})
	}

	appointment, err := h.store.GetAppointment(uint(id))
	if err != nil || appointment.CustomerID != customer.ID {
		// Same response whether absent or owned by someone else
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success":    false,
			"message":    "Appointment not found",
			"error_code": services.CodeNotFound,
		})
	}

	service, err := h.store.GetService(appointment.ServiceID)
	if err != nil {
		return serverError(c, "Could not load appointment details")
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"appointment": appointment,
		"service":     service,
		"customer":    customer.ToResponse(),
	})
}

// Cancel handles POST /api/appointments/:id/cancel
func (h *AppointmentHandler) Cancel(c *fiber.Ctx) error {
	customer := middleware.CustomerFromContext(c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"message":    "Invalid appointment id",
			"error_code": services.CodeInvalidInput,
		})
	}

	appointment, err := h.store.GetAppointment(uint(id))
	if err != nil || appointment.CustomerID != customer.ID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success":    false,
			"message":    "Appointment not found",
			"error_code": services.CodeNotFound,
		})
	}

	if appointment.Status == models.AppointmentStatusCompleted ||
		appointment.Status == models.AppointmentStatusCancelled {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"message":    "This appointment can no longer be cancelled",
			"error_code": services.CodeInvalidInput,
		})
	}

	if err := h.store.UpdateAppointmentStatus(appointment.ID, models.AppointmentStatusCancelled); err != nil {
		return serverError(c, "Could not cancel the appointment. Please try again.")
	}
	appointment.Status = models.AppointmentStatusCancelled

	if service, err := h.store.GetService(appointment.ServiceID); err == nil {
		h.notifications.NotifyAppointmentStatus(appointment, service, models.AppointmentStatusCancelled)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Appointment cancelled",
	})
}

// UpdateStatus handles POST /admin/appointments/:id/status, the
// operator-side transition that drives customer notifications
func (h *AppointmentHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"message":    "Invalid appointment id",
			"error_code": services.CodeInvalidInput,
		})
	}

	var req struct {
		Status string `json:"status" form:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"message":    "Invalid request body",
			"error_code": services.CodeInvalidInput,
		})
	}

	switch req.Status {
	case models.AppointmentStatusConfirmed,
		models.AppointmentStatusCompleted,
		models.AppointmentStatusCancelled:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"message":    "Invalid appointment status",
			"error_code": services.CodeInvalidInput,
		})
	}

	appointment, err := h.store.GetAppointment(uint(id))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success":    false,
			"message":    "Appointment not found",
			"error_code": services.CodeNotFound,
		})
	}

	if err := h.store.UpdateAppointmentStatus(appointment.ID, req.Status); err != nil {
		return serverError(c, "Could not update the appointment")
	}
	appointment.Status = req.Status

	if service, err := h.store.GetService(appointment.ServiceID); err == nil {
		h.notifications.NotifyAppointmentStatus(appointment, service, req.Status)
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"message":     "Appointment updated",
		"appointment": appointment,
	})
}

func confirmationURL(appointmentID uint) string {
	return fmt.Sprintf("/appointment/%d/confirmation", appointmentID)
}

func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// parseSchedule validates the booking date and time: the date must be
// today or later, and at most 90 days out.
func parseSchedule(dateStr, timeStr string) (time.Time, string, string) {
	if dateStr == "" || timeStr == "" {
		return time.Time{}, "", "Appointment date and time are required"
	}

	date, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err != nil {
		return time.Time{}, "", "Invalid date or time format"
	}
	if _, err := time.Parse("15:04", timeStr); err != nil {
		return time.Time{}, "", "Invalid date or time format"
	}

	today := startOfToday()
	if date.Before(today) {
		return time.Time{}, "", "Appointment date must be in the future"
	}
	if date.After(today.AddDate(0, 0, maxBookingHorizonDays)) {
		return time.Time{}, "", "Appointment date cannot be more than 90 days in the future"
	}

	return date, timeStr, ""
}
