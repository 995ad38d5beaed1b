package routes

import (
	"github.com/gofiber/fiber/v2"

	"freight-app/config"
	"freight-app/controllers"
	"freight-app/middleware"
)

func SetupShipmentRoutes(app *fiber.App, c *controllers.ShipmentController, auth *middleware.AuthMiddleware) {
	api := app.Group(config.MAIN_ROUTES+"/shipments", auth.RequireAuth)
	api.Get("/", c.List)
	api.Get("/export", c.Export)
	api.Get("/:id", c.Get)
	api.Post("/", c.Create)
	api.Patch("/:id", c.Update)
	api.Delete("/:id", auth.AdminOnly, c.Delete)
}
