// Package routes defines the API routing configuration. It wires the
// repositories, services, and handlers and applies the auth and rate-limit
// middleware.
package routes

import (
	"time"

	"payflow/internal/handlers"
	"payflow/internal/middleware"
	"payflow/internal/repositories"
	"payflow/internal/services/notification"
	"payflow/internal/services/transfer"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	accountStore := repositories.NewAccountStore(db)
	transactionRepo := repositories.NewTransactionRepository(db)

	notifier := notification.NewBroadcaster(repositories.RedisClient)
	transferService := transfer.NewService(accountStore, notifier)

	transactionHandler := handlers.NewTransactionHandler(transferService, accountStore, transactionRepo)

	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api", middleware.Auth)
	api.Get("/transactions", transactionHandler.List)
	api.Post("/transactions", limiter.New(limiter.Config{
		Max:        30,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	}), transactionHandler.Create)
}
