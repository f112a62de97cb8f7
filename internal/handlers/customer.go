package handlers

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/omengineers/booking-backend/internal/middleware"
	"github.com/omengineers/booking-backend/internal/models"
	"github.com/omengineers/booking-backend/internal/services"
	"github.com/omengineers/booking-backend/internal/storage"
	"github.com/omengineers/booking-backend/internal/utils"
)

// CustomerHandler handles profile and dashboard requests
type CustomerHandler struct {
	store          storage.Store
	pincodeService *services.PincodeService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(store storage.Store, pincodeService *services.PincodeService) *CustomerHandler {
	return &CustomerHandler{
		store:          store,
		pincodeService: pincodeService,
	}
}

// CompleteProfile handles POST /api/profile-completion for accounts
// created at first OTP verification
func (h *CustomerHandler) CompleteProfile(c *fiber.Ctx) error {
	customer := middleware.CustomerFromContext(c)

	var req models.ProfileCompletion
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"message":    "Invalid request body",
			"error_code": services.CodeInvalidInput,
		})
	}

	fullName := utils.SanitizeText(req.FullName)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if fullName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"message":    "Full name is required",
			"error_code": services.CodeInvalidInput,
		})
	}
	if email != "" && !utils.ValidateEmail(email) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"message":    "Please enter a valid email address",
			"error_code": services.CodeInvalidInput,
		})
	}

	customer.Name = fullName
	customer.Email = email
	customer.Address = req.CompleteAddress()

	if err := h.store.UpdateCustomer(customer); err != nil {
		log.Printf("Profile completion failed for customer %d: %v", customer.ID, err)
		return serverError(c, "Could not save your profile. Please try again.")
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"message":      "Profile completed successfully",
		"redirect_url": "/dashboard",
	})
}

// UpdateProfile handles POST /api/profile/update
func (h *CustomerHandler) UpdateProfile(c *fiber.Ctx) error {
	customer := middleware.CustomerFromContext(c)

	var req models.ProfileUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"message":    "Invalid request body",
			"error_code": services.CodeInvalidInput,
		})
	}

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	address := strings.TrimSpace(req.Address)

	if name != "" && len(name) < 2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Name must be at least 2 characters long",
		})
	}
	if email != "" && !utils.ValidateEmail(email) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Please enter a valid email address",
		})
	}

	if name != "" {
		customer.Name = utils.SanitizeText(name)
	}
	if email != "" {
		customer.Email = email
	}
	if address != "" {
		customer.Address = address
	}

	if err := h.store.UpdateCustomer(customer); err != nil {
		log.Printf("Profile update failed for customer %d: %v", customer.ID, err)
		return serverError(c, "Could not save your profile. Please try again.")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Profile updated successfully",
		"customer": customer.ToResponse(),
	})
}

// Info handles GET /api/customer/info
func (h *CustomerHandler) Info(c *fiber.Ctx) error {
	customer := middleware.CustomerFromContext(c)
	return c.JSON(fiber.Map{
		"success":  true,
		"customer": customer.ToResponse(),
	})
}

// Dashboard handles GET /api/dashboard: the customer plus their
// upcoming appointments. Incomplete profiles are routed back to the
// completion step.
func (h *CustomerHandler) Dashboard(c *fiber.Ctx) error {
	customer := middleware.CustomerFromContext(c)

	if !customer.IsProfileComplete() {
		return c.JSON(fiber.Map{
			"success":      true,
			"message":      "Profile completion required",
			"next_step":    "profile-completion",
			"redirect_url": "/profile-completion",
		})
	}

	upcoming, err := h.upcomingAppointments(customer.ID)
	if err != nil {
		log.Printf("Failed to load appointments for customer %d: %v", customer.ID, err)
		upcoming = nil
	}

	return c.JSON(fiber.Map{
		"success":               true,
		"customer":              customer.ToResponse(),
		"upcoming_appointments": upcoming,
	})
}

func (h *CustomerHandler) upcomingAppointments(customerID uint) ([]*models.Appointment, error) {
	appointments, err := h.store.GetAppointmentsByCustomer(customerID)
	if err != nil {
		return nil, err
	}

	upcoming := make([]*models.Appointment, 0)
	for _, appointment := range appointments {
		if appointment.IsUpcoming(time.Now()) {
			upcoming = append(upcoming, appointment)
		}
	}
	return upcoming, nil
}

// LookupPincode handles GET /api/pincode/:pincode
func (h *CustomerHandler) LookupPincode(c *fiber.Ctx) error {
	location, err := h.pincodeService.Lookup(c.Params("pincode"))
	if err == services.ErrPincodeNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "PIN code not found in any data source",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"message":    "Invalid PIN code format",
			"error_code": services.CodeInvalidInput,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"city":    location.City,
		"state":   location.State,
		"area":    location.Area,
	})
}
