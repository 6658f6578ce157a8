package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/andyfree1/client-finder-backend/config"
	"github.com/andyfree1/client-finder-backend/middleware"
	"github.com/andyfree1/client-finder-backend/routes"
	"github.com/andyfree1/client-finder-backend/utils"
	"github.com/andyfree1/client-finder-backend/worker"
	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
)

func main() {
	// Initialize logger
	logger := log.New(os.Stdout, "SERVER: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize error tracking
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

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware
	app.Use(middleware.CORS())

	// Notifier used by both the API layer and the background workers
	notifier := utils.NewNotifier(config.DB)

	// Initialize and start background workers
	deliveryWorker := worker.NewDeliveryWorker(config.DB, notifier)
	collectionWorker := worker.NewCollectionWorker(config.DB, utils.NewCollector(rand.New(rand.NewSource(time.Now().UnixNano()))), notifier)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go deliveryWorker.Start(ctx)
	go collectionWorker.Start(ctx)

	// Setup routes
	routes.SetupAuthRoutes(app)
	routes.SetupAPIRoutes(app, config.DB, deliveryWorker, collectionWorker, notifier)

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})

	// Start server
	logger.Printf("🚀 Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
