package handlers

import (
	"errors"
	"fmt"
	"log"

	"droptrack/internal/middleware"
	"droptrack/internal/models"
	"droptrack/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AccountHandler handles HTTP requests for tracked-account management.
type AccountHandler struct {
	service  *services.AccountService
	validate *validator.Validate
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(service *services.AccountService) *AccountHandler {
	return &AccountHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the account routes. All of them require a session.
func (h *AccountHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/manage_accounts", h.HandleManageAccounts)
	router.Post("/add_tracked_account", h.HandleAddTrackedAccount)
	router.Post("/update_account_order", h.HandleUpdateAccountOrder)
	router.Post("/delete_tracked_account/:id", h.HandleDeleteTrackedAccount)
	router.Post("/edit_tracked_account/:id", h.HandleEditTrackedAccount)
}

// HandleManageAccounts lists the user's accounts in display order.
func (h *AccountHandler) HandleManageAccounts(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	accounts, err := h.service.ListAccounts(user.ID)
	if err != nil {
		log.Printf("Error listing accounts for user %s: %v", user.ID, err)
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"accounts": accounts,
	})
}

// AccountRequest is the body for adding or editing a tracked account.
type AccountRequest struct {
	AccountName string `json:"account_name" form:"account_name" validate:"required,min=1,max=100"`
	SteamID     string `json:"steamid" form:"steamid" validate:"required,len=17,numeric"`
}

// HandleAddTrackedAccount adds a tracked account at the end of the user's
// display order.
func (h *AccountHandler) HandleAddTrackedAccount(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req AccountRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing add account request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid SteamID64 format. Must be 17 digits.",
			"error":   err.Error(),
		})
	}

	account, err := h.service.AddAccount(user.ID, req.AccountName, req.SteamID)
	if err != nil {
		log.Printf("Error adding account for user %s: %v", user.ID, err)
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("Account '%s' added successfully.", account.AccountName),
		"account": account,
	})
}

// OrderRequest is the body for /update_account_order.
type OrderRequest struct {
	OrderedIDs []string `json:"ordered_ids"`
}

// HandleUpdateAccountOrder applies a drag-and-drop ordering. Updates are
// best-effort per account; the response carries matched vs submitted counts
// so the client can detect partial application.
func (h *AccountHandler) HandleUpdateAccountOrder(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req OrderRequest
	if err := c.BodyParser(&req); err != nil || req.OrderedIDs == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid data format received.",
		})
	}

	matched, err := h.service.ReorderAccounts(user.ID, req.OrderedIDs)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}
		log.Printf("Error updating account order for user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "An internal server error occurred.",
		})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "Order updated successfully.",
		"matched":   matched,
		"submitted": len(req.OrderedIDs),
	})
}

// HandleDeleteTrackedAccount deletes one of the user's accounts.
func (h *AccountHandler) HandleDeleteTrackedAccount(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	accountID := c.Params("id")

	if err := h.service.DeleteAccount(user.ID, accountID); err != nil {
		log.Printf("Error deleting account %s for user %s: %v", accountID, user.ID, err)
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Account deleted successfully.",
	})
}

// HandleEditTrackedAccount renames an account and/or changes its steamid.
func (h *AccountHandler) HandleEditTrackedAccount(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	accountID := c.Params("id")

	var req AccountRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing edit account request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid SteamID64 format. Must be 17 digits.",
			"error":   err.Error(),
		})
	}

	if err := h.service.EditAccount(user.ID, accountID, req.AccountName, req.SteamID); err != nil {
		log.Printf("Error editing account %s for user %s: %v", accountID, user.ID, err)
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Account '%s' updated successfully.", req.AccountName),
	})
}
