package handlers

import (
	"fmt"
	"log"
	"time"

	"droptrack/internal/middleware"
	"droptrack/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for registration, login and logout.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the public authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/register", h.HandleRegister)
	router.Post("/login", h.HandleLogin)
}

// RegisterProtectedRoutes registers the routes that need a session.
func (h *AuthHandler) RegisterProtectedRoutes(router fiber.Router) {
	router.Get("/logout", h.HandleLogout)
}

// RegisterRequest is the body for /register. Accepts form or JSON encoding.
type RegisterRequest struct {
	Username        string `json:"username" form:"username" validate:"required,min=3,max=100"`
	Password        string `json:"password" form:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" validate:"required"`
	InviteCode      string `json:"invite_code" form:"invite_code" validate:"required"`
}

// HandleRegister handles invite-gated user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	// Already-authenticated users go straight back to the dashboard.
	if token := c.Cookies(middleware.SessionCookieName); token != "" {
		if _, err := h.authService.UserFromToken(token); err == nil {
			return c.Redirect("/", fiber.StatusSeeOther)
		}
	}

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing register request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "All fields are required.",
			"error":   err.Error(),
		})
	}

	user, err := h.authService.RegisterUser(req.Username, req.Password, req.ConfirmPassword, req.InviteCode)
	if err != nil {
		log.Printf("Error registering user %s: %v", req.Username, err)
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Registration successful! Please login.",
		"username": user.Username,
	})
}

// LoginRequest is the body for /login.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// HandleLogin authenticates the user and sets the session cookie.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	if token := c.Cookies(middleware.SessionCookieName); token != "" {
		if _, err := h.authService.UserFromToken(token); err == nil {
			return c.Redirect("/", fiber.StatusSeeOther)
		}
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Username and password are required.",
			"error":   err.Error(),
		})
	}

	token, user, err := h.authService.LoginUser(req.Username, req.Password)
	if err != nil {
		log.Printf("Error during login for user %s: %v", req.Username, err)
		return errorResponse(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Welcome back, %s!", user.Username),
	})
}

// HandleLogout clears the session cookie.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return c.JSON(fiber.Map{
		"message": "You have been logged out.",
	})
}
