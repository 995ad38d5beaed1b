package routes

import (
	"github.com/gofiber/fiber/v2"

	"freight-app/config"
	"freight-app/controllers"
	"freight-app/middleware"
)

func SetupAuthRoutes(app *fiber.App, c *controllers.AuthController, auth *middleware.AuthMiddleware) {
	api := app.Group(config.MAIN_ROUTES + "/auth")
	api.Post("/register", c.Register)
	api.Post("/login", c.Login)
	api.Post("/forgot-password", c.ForgotPassword)
	api.Post("/logout", auth.RequireAuth, c.Logout)
}
