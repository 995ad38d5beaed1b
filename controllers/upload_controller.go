package controllers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"freight-app/controllers/idgen"
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".pdf":  true,
	".webp": true,
}

type UploadController struct {
	Dir string
}

func NewUploadController(dir string) *UploadController {
	return &UploadController{Dir: dir}
}

// Upload stores one multipart file under a generated name so an uploaded
// filename can never collide with or overwrite another.
func (c *UploadController) Upload(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return detail(ctx, fiber.StatusBadRequest, "No file uploaded")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return detail(ctx, fiber.StatusBadRequest, "File type not allowed: "+ext)
	}

	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return detail(ctx, fiber.StatusInternalServerError, "Failed to prepare upload directory")
	}

	name := fmt.Sprintf("%d%s", idgen.GenerateID(), ext)
	if err := ctx.SaveFile(file, filepath.Join(c.Dir, name)); err != nil {
		return detail(ctx, fiber.StatusInternalServerError, "Failed to save file")
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"url":          "/uploads/" + name,
		"filename":     file.Filename,
		"content_type": file.Header.Get("Content-Type"),
	})
}
