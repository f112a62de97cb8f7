package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/omengineers/booking-backend/database"
	"github.com/omengineers/booking-backend/internal/jobs"
	"github.com/omengineers/booking-backend/internal/models"
	"github.com/omengineers/booking-backend/internal/routes"
	"github.com/omengineers/booking-backend/internal/services"
	"github.com/omengineers/booking-backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found - checking environment variables")
	}

	// Initialize storage
	var store storage.Store

	// Check if we should use memory store (for testing)
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		// Connect to database
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		// Run migrations
		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.Customer{},
			&models.Service{},
			&models.Appointment{},
			&models.OTP{},
			&models.Notification{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}

	// Optionally keep OTP records in Redis
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatal("Invalid REDIS_URL:", err)
		}
		store = storage.NewRedisOTPStore(store, redis.NewClient(opts))
		log.Println("✅ OTP records stored in Redis")
	}

	// Seed the service catalog on first boot
	if err := store.SeedServices(models.DefaultServices); err != nil {
		log.Fatal("Failed to seed service catalog:", err)
	}

	// Initialize the SMS gateway
	var smsSender services.SMSSender
	twilioService, err := services.NewTwilioService()
	if err != nil {
		log.Printf("⚠️  Twilio not configured (%v) - OTP codes will be logged instead", err)
		smsSender = consoleSMS{}
	} else {
		log.Println("✅ Twilio service initialized")
		smsSender = twilioService
	}

	// Initialize services
	broadcaster := services.NewBroadcaster()
	otpService := services.NewOTPService(store, smsSender)
	authService := services.NewAuthService(store)
	notificationService := services.NewNotificationService(store, broadcaster)
	pincodeService := services.NewPincodeService()

	// Start scheduled maintenance jobs
	maintenanceJob := jobs.NewMaintenanceJob(store, otpService, notificationService)
	maintenanceJob.Start()

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "Om Engineers Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Auth-Token",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Setup routes
	routes.SetupRoutes(app, store, &routes.Services{
		OTP:           otpService,
		Auth:          authService,
		Notifications: notificationService,
		Broadcaster:   broadcaster,
		Pincode:       pincodeService,
	})

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		maintenanceJob.Stop()
		_ = app.Shutdown()
	}()

	log.Println("========================================")
	log.Printf("🚀 Om Engineers Backend starting on port %s", port)
	log.Printf("📊 Storage: %s", storageType())
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}

func storageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}

// consoleSMS is the development fallback when Twilio is not configured
type consoleSMS struct{}

func (consoleSMS) SendSMS(to, body string) error {
	log.Printf("📱 [dev SMS] to %s: %s", to, body)
	return nil
}
