package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/omengineers/booking-backend/internal/handlers"
	"github.com/omengineers/booking-backend/internal/middleware"
	"github.com/omengineers/booking-backend/internal/services"
	"github.com/omengineers/booking-backend/internal/storage"
)

// Services groups everything the route handlers depend on
type Services struct {
	OTP           *services.OTPService
	Auth          *services.AuthService
	Notifications *services.NotificationService
	Broadcaster   *services.Broadcaster
	Pincode       *services.PincodeService
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, store storage.Store, svc *Services) {
	otpHandler := handlers.NewOTPHandler(svc.OTP, svc.Auth)
	customerHandler := handlers.NewCustomerHandler(store, svc.Pincode)
	appointmentHandler := handlers.NewAppointmentHandler(store, svc.Notifications)
	notificationHandler := handlers.NewNotificationHandler(store, svc.Broadcaster)

	requireAuth := middleware.RequireAuth(svc.Auth)

	app.Get("/health", handlers.Health)

	api := app.Group("/api")

	// OTP login flow
	otp := api.Group("/otp")
	otp.Post("/send", otpHandler.Send)
	otp.Post("/verify", otpHandler.Verify)
	otp.Post("/select-account", otpHandler.SelectAccount)
	otp.Post("/resend", otpHandler.Resend)
	otp.Get("/status/:phone", otpHandler.Status)
	otp.Post("/cleanup", otpHandler.Cleanup)
	otp.Post("/logout", otpHandler.Logout)

	// Public catalog and pincode helper
	api.Get("/services", appointmentHandler.ListServices)
	api.Get("/pincode/:pincode", customerHandler.LookupPincode)

	// Profile and dashboard
	api.Post("/profile-completion", requireAuth, customerHandler.CompleteProfile)
	api.Post("/profile/update", requireAuth, customerHandler.UpdateProfile)
	api.Get("/customer/info", requireAuth, customerHandler.Info)
	api.Get("/dashboard", requireAuth, customerHandler.Dashboard)

	// Appointments and quotations
	api.Post("/appointments", requireAuth, appointmentHandler.Book)
	api.Post("/quotations", requireAuth, appointmentHandler.RequestQuotation)
	api.Get("/appointments/:id/confirmation", requireAuth, appointmentHandler.Confirmation)
	api.Post("/appointments/:id/cancel", requireAuth, appointmentHandler.Cancel)

	// Notifications
	notifications := api.Group("/notifications", requireAuth)
	notifications.Get("/", notificationHandler.List)
	notifications.Get("/unread-count", notificationHandler.UnreadCount)
	notifications.Post("/mark-all-read", notificationHandler.MarkAllRead)
	notifications.Post("/:id/mark-read", notificationHandler.MarkRead)
	notifications.Get("/stream", notificationHandler.Stream)

	// Operator-side appointment transitions
	admin := app.Group("/admin", middleware.RequireAdminKey())
	admin.Post("/appointments/:id/status", appointmentHandler.UpdateStatus)
}
