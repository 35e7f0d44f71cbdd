package main

import (
	"log"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	"collabhub/config"
	controller "collabhub/controllers"
	"collabhub/middleware"
	"collabhub/routes"
	"collabhub/utils"
)

func main() {
	logger := log.New(os.Stdout, "COLLABHUB: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Error reporting
	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Printf("Sentry initialization failed: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Object storage for team file uploads
	if config.AppConfig.Minio.Endpoint != "" {
		storage, err := utils.NewMinioStorage(
			config.AppConfig.Minio.Endpoint,
			config.AppConfig.Minio.AccessKey,
			config.AppConfig.Minio.SecretKey,
			config.AppConfig.Minio.Bucket,
			config.AppConfig.Minio.UseSSL,
		)
		if err != nil {
			logger.Fatalf("Failed to connect to object storage: %v", err)
		}
		controller.Storage = storage
	} else {
		logger.Println("⚠️ No object storage configured, file uploads are kept in memory")
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: (config.AppConfig.MaxUploadMB + 1) << 20,
	})

	// Add CORS middleware
	app.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(app)

	// Start server
	logger.Printf("🚀 Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
