package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username string `json:"username" gorm:"unique"`
	Password string `json:"-"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// UserSession is one login. A user has at most one active row at a time.
type UserSession struct {
	gorm.Model
	UserID         uint   `gorm:"index"`
	SessionID      string `gorm:"uniqueIndex;size:36"`
	IsActive       bool
	IPAddress      string
	UserAgent      string
	DeviceType     string
	LastActivityAt time.Time
	ExpiresAt      time.Time
}

type LoginLog struct {
	gorm.Model
	UserID        *uint
	Username      string
	SessionID     string
	LoginAt       *time.Time
	LogoutAt      *time.Time
	IPAddress     string
	UserAgent     string
	DeviceType    string
	LoginStatus   string
	FailureReason *string
}
