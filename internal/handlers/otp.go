package handlers

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/omengineers/booking-backend/internal/services"
)

// OTPHandler handles the passcode login flow
type OTPHandler struct {
	otpService  *services.OTPService
	authService *services.AuthService
}

// NewOTPHandler creates a new OTP handler
func NewOTPHandler(otpService *services.OTPService, authService *services.AuthService) *OTPHandler {
	return &OTPHandler{
		otpService:  otpService,
		authService: authService,
	}
}

type otpRequest struct {
	PhoneNumber string `json:"phone_number" form:"phone_number"`
	OTPCode     string `json:"otp_code" form:"otp_code"`
}

type accountSelectionRequest struct {
	CustomerID     uint   `json:"customer_id" form:"customer_id"`
	SelectionToken string `json:"selection_token" form:"selection_token"`
}

func otpStatusCode(result *services.OTPResult) int {
	if result.Success {
		return fiber.StatusOK
	}
	if result.ErrorCode == services.CodeServerError {
		return fiber.StatusInternalServerError
	}
	return fiber.StatusBadRequest
}

// Send handles POST /api/otp/send
func (h *OTPHandler) Send(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"message":    "Invalid request body",
			"error_code": services.CodeInvalidInput,
		})
	}

	if strings.TrimSpace(req.PhoneNumber) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"message":    "Phone number is required",
			"error_code": services.CodeInvalidInput,
		})
	}

	result := h.otpService.Send(req.PhoneNumber)
	return c.Status(otpStatusCode(result)).JSON(result)
}

// Verify handles POST /api/otp/verify. On success it resolves the
// identity for the phone and returns the next onboarding step along
// with the session credential.
func (h *OTPHandler) Verify(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"message":    "Invalid request body",
			"error_code": services.CodeInvalidInput,
		})
	}

	result := h.otpService.Verify(req.PhoneNumber, req.OTPCode)
	if !result.Success {
		return c.Status(otpStatusCode(result)).JSON(result)
	}

	resolution, err := h.authService.ResolveIdentity(req.PhoneNumber)
	if err != nil {
		log.Printf("Identity resolution failed for verified phone: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success":    false,
			"message":    "Could not complete sign in. Please try again.",
			"error_code": services.CodeServerError,
		})
	}

	switch resolution.Outcome {
	case services.OutcomeAccountSelection:
		selectionToken, err := h.authService.IssueSelectionToken(req.PhoneNumber)
		if err != nil {
			return serverError(c, "Could not complete sign in. Please try again.")
		}
		candidates := make([]fiber.Map, 0, len(resolution.Candidates))
		for _, candidate := range resolution.Candidates {
			candidates = append(candidates, fiber.Map{
				"id":    candidate.ID,
				"name":  candidate.Name,
				"email": candidate.Email,
			})
		}
		return c.JSON(fiber.Map{
			"success":         true,
			"message":         "Phone number verified. Please select your account.",
			"next_step":       "account-selection",
			"selection_token": selectionToken,
			"accounts":        candidates,
		})

	default:
		token, err := h.authService.IssueToken(resolution.Customer)
		if err != nil {
			return serverError(c, "Could not complete sign in. Please try again.")
		}
		setAuthCookie(c, token)

		nextStep := "dashboard"
		redirectURL := "/dashboard"
		if resolution.Outcome == services.OutcomeProfileCompletion {
			nextStep = "profile-completion"
			redirectURL = "/profile-completion"
		}

		return c.JSON(fiber.Map{
			"success":      true,
			"message":      result.Message,
			"next_step":    nextStep,
			"redirect_url": redirectURL,
			"token":        token,
			"auth_key":     resolution.Customer.AuthKey,
			"customer_id":  resolution.Customer.ID,
		})
	}
}

// SelectAccount handles POST /api/otp/select-account for phones shared
// by multiple customer records
func (h *OTPHandler) SelectAccount(c *fiber.Ctx) error {
	var req accountSelectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"message":    "Invalid request body",
			"error_code": services.CodeInvalidInput,
		})
	}

	phone, err := h.authService.VerifySelectionToken(req.SelectionToken)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success":    false,
			"message":    "Access denied",
			"error_code": services.CodeAccessDenied,
		})
	}

	customer, err := h.authService.SelectAccount(req.CustomerID, phone)
	if err == services.ErrAccessDenied {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success":    false,
			"message":    "Access denied",
			"error_code": services.CodeAccessDenied,
		})
	}
	if err != nil {
		return serverError(c, "Could not complete sign in. Please try again.")
	}

	token, err := h.authService.IssueToken(customer)
	if err != nil {
		return serverError(c, "Could not complete sign in. Please try again.")
	}
	setAuthCookie(c, token)

	nextStep := "dashboard"
	redirectURL := "/dashboard"
	if !customer.IsProfileComplete() {
		nextStep = "profile-completion"
		redirectURL = "/profile-completion"
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"message":      "Signed in successfully",
		"next_step":    nextStep,
		"redirect_url": redirectURL,
		"token":        token,
		"auth_key":     customer.AuthKey,
		"customer_id":  customer.ID,
	})
}

// Resend handles POST /api/otp/resend
func (h *OTPHandler) Resend(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"message":    "Invalid request body",
			"error_code": services.CodeInvalidInput,
		})
	}

	result := h.otpService.Resend(req.PhoneNumber)
	status := otpStatusCode(result)
	if result.ErrorCode == services.CodeTooSoon {
		status = fiber.StatusTooManyRequests
	}
	return c.Status(status).JSON(result)
}

// Status handles GET /api/otp/status/:phone (ops/debugging)
func (h *OTPHandler) Status(c *fiber.Ctx) error {
	data, failure := h.otpService.Status(c.Params("phone"))
	if failure != nil {
		return c.Status(otpStatusCode(failure)).JSON(failure)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "OTP status retrieved",
		"data":    data,
	})
}

// Cleanup handles POST /api/otp/cleanup
func (h *OTPHandler) Cleanup(c *fiber.Ctx) error {
	removed, err := h.otpService.CleanupExpired()
	if err != nil {
		return serverError(c, "Cleanup failed")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Expired verification codes cleaned up",
		"removed": removed,
	})
}

// Logout handles POST /api/otp/logout by clearing the cookie transport
func (h *OTPHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "auth_token",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out successfully",
	})
}

func setAuthCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     "auth_token",
		Value:    token,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

func serverError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success":    false,
		"message":    message,
		"error_code": services.CodeServerError,
	})
}
