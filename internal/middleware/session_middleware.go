package middleware

import (
	"log"

	"droptrack/internal/models"
	"droptrack/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session_token"

// AuthRequired is a Fiber middleware that resolves the session cookie to a
// user exactly once per request and stores it in the request locals. All
// handlers behind it read identity from CurrentUser, never from the token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(SessionCookieName)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Please log in to access this page.",
			})
		}

		user, err := authService.UserFromToken(token)
		if err != nil {
			log.Printf("Session validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired session. Please log in again.",
			})
		}

		c.Locals("user", user)
		return c.Next()
	}
}

// RoleRequired gates a route group on the user's role. Compose it after
// AuthRequired.
func RoleRequired(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || user.Role != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "You do not have permission to access this page.",
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the user resolved by AuthRequired, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}
