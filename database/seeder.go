// database/seeder.go
package database

import (
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"freight-app/models"
)

func RunSeeders(db *gorm.DB) {
	SeedUserMaster(db)
}

func SeedUserMaster(db *gorm.DB) {
	users := []models.User{
		{
			Username: "admin",
			Password: "admin123",
			Email:    "admin@example.com",
			Role:     "admin",
		},
	}

	for _, user := range users {
		var existing models.User
		err := db.Where("username = ?", user.Username).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			hashed, hashErr := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
			if hashErr != nil {
				log.Println("Failed to hash password for user:", user.Username, hashErr)
				continue
			}
			user.Password = string(hashed)
			if err := db.Create(&user).Error; err != nil {
				log.Println("Failed to insert user:", user.Username, err)
			} else {
				log.Println("Insert user:", user.Username)
			}
		}
	}
}
