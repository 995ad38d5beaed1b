package controllers

import (
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"freight-app/config"
	"freight-app/mailer"
	"freight-app/models"
)

var validate = validator.New()

type AuthController struct {
	DB     *gorm.DB
	Mailer *mailer.Mailer
}

func NewAuthController(db *gorm.DB, m *mailer.Mailer) *AuthController {
	return &AuthController{DB: db, Mailer: m}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (c *AuthController) Register(ctx *fiber.Ctx) error {
	var input RegisterRequest
	if err := ctx.BodyParser(&input); err != nil {
		return detail(ctx, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(input); err != nil {
		return detail(ctx, fiber.StatusBadRequest, err.Error())
	}

	if input.Role == "" {
		input.Role = "staff"
	}
	if input.Role != "admin" && input.Role != "staff" {
		return detail(ctx, fiber.StatusBadRequest, "Invalid role")
	}

	var existing models.User
	if err := c.DB.Where("username = ?", input.Username).First(&existing).Error; err == nil {
		return detail(ctx, fiber.StatusBadRequest, "Username already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return detail(ctx, fiber.StatusInternalServerError, "Failed to hash password")
	}

	user := models.User{
		Username: input.Username,
		Password: string(hashed),
		Email:    input.Email,
		Role:     input.Role,
	}
	if err := c.DB.Create(&user).Error; err != nil {
		return detail(ctx, fiber.StatusInternalServerError, "Failed to create user")
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"role":     user.Role,
	})
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Force    bool   `json:"force"`
}

func (c *AuthController) Login(ctx *fiber.Ctx) error {
	var input LoginRequest
	if err := ctx.BodyParser(&input); err != nil {
		return detail(ctx, fiber.StatusBadRequest, "Invalid request body")
	}
	if input.Username == "" || input.Password == "" {
		return detail(ctx, fiber.StatusBadRequest, "Missing required fields")
	}

	ip, ua, device := getClientInfo(ctx)
	now := time.Now()

	// default log FAILED
	loginLog := models.LoginLog{
		Username:    input.Username,
		LoginAt:     &now,
		IPAddress:   ip,
		UserAgent:   ua,
		DeviceType:  device,
		LoginStatus: "FAILED",
	}

	var user models.User
	result := c.DB.Where("username = ?", input.Username).First(&user)
	if result.Error != nil {
		reason := "USER_NOT_FOUND"
		loginLog.FailureReason = &reason
		c.DB.Create(&loginLog)

		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return detail(ctx, fiber.StatusUnauthorized, "Incorrect username or password")
		}
		return detail(ctx, fiber.StatusInternalServerError, result.Error.Error())
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		reason := "WRONG_PASSWORD"
		uid := user.ID
		loginLog.UserID = &uid
		loginLog.FailureReason = &reason
		c.DB.Create(&loginLog)

		return detail(ctx, fiber.StatusUnauthorized, "Incorrect username or password")
	}

	var active models.UserSession
	err := c.DB.Where("user_id = ? AND is_active = ? AND expires_at > ?",
		user.ID, true, now).First(&active).Error
	if err == nil && !input.Force {
		return ctx.Status(fiber.StatusLocked).JSON(fiber.Map{
			"detail": fiber.Map{
				"code":    "active_session",
				"message": "This account is already signed in on another device",
				"active_session": fiber.Map{
					"expires_at": active.ExpiresAt.Format(time.RFC3339),
				},
			},
		})
	}
	if err == nil {
		// take over, kick the other device
		c.DB.Model(&models.UserSession{}).
			Where("user_id = ? AND is_active = ?", user.ID, true).
			Update("is_active", false)
	}

	sessionID := uuid.NewString()
	expiresAt := now.Add(time.Duration(config.JWTExpiration) * time.Second)

	session := models.UserSession{
		UserID:         user.ID,
		SessionID:      sessionID,
		IsActive:       true,
		IPAddress:      ip,
		UserAgent:      ua,
		DeviceType:     device,
		LastActivityAt: now,
		ExpiresAt:      expiresAt,
	}
	if err := c.DB.Create(&session).Error; err != nil {
		return detail(ctx, fiber.StatusInternalServerError, "Failed to create session")
	}

	uid := user.ID
	loginLog.UserID = &uid
	loginLog.SessionID = sessionID
	loginLog.LoginStatus = "SUCCESS"
	loginLog.FailureReason = nil
	c.DB.Create(&loginLog)

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.Itoa(int(user.ID)),
		"sid": sessionID,
		"exp": expiresAt.Unix(),
		"jti": uuid.NewString(),
	})
	tokenString, err := accessToken.SignedString([]byte(config.JWTSecret))
	if err != nil {
		return detail(ctx, fiber.StatusInternalServerError, "Failed to generate token")
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"access_token": tokenString,
		"token_type":   "bearer",
		"expires_in":   config.JWTExpiration,
		"user": fiber.Map{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

func (c *AuthController) Logout(ctx *fiber.Ctx) error {
	sessionID, ok := ctx.Locals("sessionID").(string)
	if !ok || sessionID == "" {
		return detail(ctx, fiber.StatusUnauthorized, "Invalid session")
	}

	now := time.Now()

	result := c.DB.Model(&models.LoginLog{}).
		Where("session_id = ? AND logout_at IS NULL", sessionID).
		Update("logout_at", &now)
	if result.RowsAffected == 0 {
		// double logout or stale token, not fatal
		log.Println("Warning: no login log found to close for session:", sessionID)
	}

	c.DB.Model(&models.UserSession{}).
		Where("session_id = ? AND is_active = ?", sessionID, true).
		Updates(map[string]interface{}{
			"is_active":        false,
			"last_activity_at": now,
		})

	return ctx.SendStatus(fiber.StatusNoContent)
}

type ForgotPasswordRequest struct {
	Username    string `json:"username" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

func (c *AuthController) ForgotPassword(ctx *fiber.Ctx) error {
	var input ForgotPasswordRequest
	if err := ctx.BodyParser(&input); err != nil {
		return detail(ctx, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(input); err != nil {
		return detail(ctx, fiber.StatusBadRequest, err.Error())
	}

	var user models.User
	if err := c.DB.Where("username = ?", input.Username).First(&user).Error; err != nil {
		return detail(ctx, fiber.StatusNotFound, "User not found")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return detail(ctx, fiber.StatusInternalServerError, "Failed to hash password")
	}
	if err := c.DB.Model(&user).Update("password", string(hashed)).Error; err != nil {
		return detail(ctx, fiber.StatusInternalServerError, "Failed to update password")
	}

	// a changed password ends the active session everywhere
	c.DB.Model(&models.UserSession{}).
		Where("user_id = ? AND is_active = ?", user.ID, true).
		Update("is_active", false)

	if user.Email != "" {
		go c.Mailer.SendPasswordChangedNotice(user.Email, user.Username)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Password updated",
	})
}

func getClientInfo(ctx *fiber.Ctx) (ip, ua, device string) {
	ip = ctx.IP()
	ua = ctx.Get("User-Agent")

	if strings.Contains(strings.ToLower(ua), "mobile") {
		device = "MOBILE"
	} else {
		device = "DESKTOP"
	}

	return
}
