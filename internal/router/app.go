package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/middleware"
)

// NewApp builds the Fiber app with the shared middleware chain. Routes are added by Setup.
func NewApp(production bool) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Agus Plastik Back Office",
		ErrorHandler: middleware.ErrorHandler(production),
		BodyLimit:    4 * 1024 * 1024,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: !production}))
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		ExposeHeaders: "X-Request-ID, X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset",
	}))
	return app
}
