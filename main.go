package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"freight-app/config"
	"freight-app/controllers"
	"freight-app/controllers/idgen"
	"freight-app/database"
	"freight-app/mailer"
	"freight-app/middleware"
	"freight-app/realtime"
	"freight-app/routes"
)

func main() {

	config.LoadConfig()

	app := fiber.New()

	database.EnsureDatabaseExists(config.DBName)

	db, err := database.Connect(config.DBName)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	database.RunSeeders(db)

	idgen.Init()

	hub := realtime.NewHub()
	mail := mailer.New()

	authMiddleware := middleware.NewAuthMiddleware(db)
	authController := controllers.NewAuthController(db, mail)
	shipmentController := controllers.NewShipmentController(db, hub)
	uploadController := controllers.NewUploadController(config.UploadDir)
	streamController := controllers.NewStreamController(hub)

	config.SetupCORS(app)
	app.Static("/uploads", config.UploadDir)

	routes.SetupAuthRoutes(app, authController, authMiddleware)
	routes.SetupShipmentRoutes(app, shipmentController, authMiddleware)
	routes.SetupUploadRoutes(app, uploadController, authMiddleware)
	routes.SetupStreamRoutes(app, streamController, authMiddleware)

	port := config.APP_PORT
	fmt.Println("🚀 Server running on port " + port)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}

}
