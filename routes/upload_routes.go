package routes

import (
	"github.com/gofiber/fiber/v2"

	"freight-app/config"
	"freight-app/controllers"
	"freight-app/middleware"
)

func SetupUploadRoutes(app *fiber.App, c *controllers.UploadController, auth *middleware.AuthMiddleware) {
	api := app.Group(config.MAIN_ROUTES+"/uploads", auth.RequireAuth)
	api.Post("/", c.Upload)
}
