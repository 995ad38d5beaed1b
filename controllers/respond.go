package controllers

import "github.com/gofiber/fiber/v2"

// detail writes the error envelope every endpoint uses.
func detail(ctx *fiber.Ctx, status int, message string) error {
	return ctx.Status(status).JSON(fiber.Map{"detail": message})
}
