package routes

import (
	"github.com/gofiber/fiber/v2"

	"freight-app/config"
	"freight-app/controllers"
	"freight-app/middleware"
)

func SetupStreamRoutes(app *fiber.App, c *controllers.StreamController, auth *middleware.AuthMiddleware) {
	api := app.Group(config.MAIN_ROUTES + "/stream")
	api.Get("/shipments", auth.RequireAuthFromQuery, c.Stream)
}
