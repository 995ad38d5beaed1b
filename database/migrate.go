// database/migrate.go
package database

import (
	"gorm.io/gorm"

	"freight-app/models"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserSession{},
		&models.LoginLog{},
		&models.Shipment{},
	)
}
