package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"freight-app/config"
	"freight-app/models"
)

type AuthMiddleware struct {
	DB *gorm.DB
}

func NewAuthMiddleware(db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{DB: db}
}

// RequireAuth authenticates the request from the Authorization header.
func (a *AuthMiddleware) RequireAuth(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if authHeader == "" {
		return unauthorized(ctx, "Not authenticated")
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "bearer") {
		return unauthorized(ctx, "Invalid Authorization header format")
	}

	return a.authenticate(ctx, tokenParts[1])
}

// RequireAuthFromQuery authenticates from the token query parameter. The
// event stream uses this because EventSource clients cannot set headers.
func (a *AuthMiddleware) RequireAuthFromQuery(ctx *fiber.Ctx) error {
	token := ctx.Query("token")
	if token == "" {
		return unauthorized(ctx, "Not authenticated")
	}
	return a.authenticate(ctx, token)
}

// AdminOnly must run after RequireAuth.
func (a *AuthMiddleware) AdminOnly(ctx *fiber.Ctx) error {
	role, _ := ctx.Locals("role").(string)
	if role != "admin" {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"detail": "Not enough permissions",
		})
	}
	return ctx.Next()
}

func (a *AuthMiddleware) authenticate(ctx *fiber.Ctx, tokenString string) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "invalid signing method")
		}
		return []byte(config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return unauthorized(ctx, "Could not validate credentials")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return unauthorized(ctx, "Could not validate credentials")
	}

	sub, _ := claims["sub"].(string)
	userID, err := strconv.Atoi(sub)
	if err != nil {
		return unauthorized(ctx, "Could not validate credentials")
	}

	sessionID, ok := claims["sid"].(string)
	if !ok || sessionID == "" {
		return unauthorized(ctx, "Could not validate credentials")
	}

	// The token alone is not enough, the session row must still be active.
	// A forced login elsewhere deactivates it and kills this token.
	var session models.UserSession
	if err := a.DB.Where("session_id = ? AND is_active = ? AND expires_at > ?",
		sessionID, true, time.Now()).First(&session).Error; err != nil {
		return unauthorized(ctx, "Session expired or signed in on another device")
	}

	session.LastActivityAt = time.Now()
	a.DB.Save(&session)

	var user models.User
	if err := a.DB.First(&user, userID).Error; err != nil {
		return unauthorized(ctx, "Could not validate credentials")
	}

	ctx.Locals("userID", int(user.ID))
	ctx.Locals("sessionID", sessionID)
	ctx.Locals("username", user.Username)
	ctx.Locals("role", user.Role)

	return ctx.Next()
}

func unauthorized(ctx *fiber.Ctx, message string) error {
	return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"detail": message,
	})
}
