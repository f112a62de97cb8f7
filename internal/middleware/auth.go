package middleware

import (
	"crypto/subtle"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/omengineers/booking-backend/internal/models"
	"github.com/omengineers/booking-backend/internal/services"
)

const customerLocalKey = "customer"

// CredentialFromRequest extracts the auth credential from any of the
// accepted transports, in priority order: Authorization bearer value,
// X-Auth-Token header, token/auth_key query parameters, session cookie.
func CredentialFromRequest(c *fiber.Ctx) string {
	if header := c.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if token := c.Get("X-Auth-Token"); token != "" {
		return token
	}
	if token := c.Query("token"); token != "" {
		return token
	}
	if authKey := c.Query("auth_key"); authKey != "" {
		return authKey
	}
	return c.Cookies("auth_token")
}

// RequireAuth resolves the request credential to exactly one customer
// and stores it in locals, or rejects with 401.
func RequireAuth(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		customer, err := authService.ResolveCredential(CredentialFromRequest(c))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success":    false,
				"message":    "Authentication required. Please provide a valid token or auth key.",
				"error_code": services.CodeAuthRequired,
			})
		}

		c.Locals(customerLocalKey, customer)
		return c.Next()
	}
}

// CustomerFromContext returns the authenticated customer set by RequireAuth
func CustomerFromContext(c *fiber.Ctx) *models.Customer {
	customer, _ := c.Locals(customerLocalKey).(*models.Customer)
	return customer
}

// RequireAdminKey guards operator endpoints with the shared key from
// ADMIN_API_KEY. With no key configured, the endpoints are disabled.
func RequireAdminKey() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := os.Getenv("ADMIN_API_KEY")
		if key == "" || subtle.ConstantTimeCompare([]byte(c.Get("X-Admin-Key")), []byte(key)) != 1 {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success":    false,
				"message":    "Access denied",
				"error_code": services.CodeAccessDenied,
			})
		}
		return c.Next()
	}
}
