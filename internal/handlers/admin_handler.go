package handlers

import (
	"errors"
	"log"
	"strings"

	"droptrack/internal/models"
	"droptrack/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles the admin-only case price form. Route access is
// gated by the role middleware, not here.
type AdminHandler struct {
	caseService *services.CaseService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(caseService *services.CaseService) *AdminHandler {
	return &AdminHandler{
		caseService: caseService,
	}
}

// RegisterRoutes registers the admin routes.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/admin/cases", h.HandleListCases)
	router.Post("/admin/cases", h.HandleUpdatePrices)
}

// HandleListCases lists the catalog sorted by name for the price form.
func (h *AdminHandler) HandleListCases(c *fiber.Ctx) error {
	cases, err := h.caseService.ListCases()
	if err != nil {
		log.Printf("Error listing cases: %v", err)
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"cases": cases,
	})
}

// HandleUpdatePrices applies the submitted price form. Fields are named
// price_<caseID>; anything else is ignored. Prices parse permissively
// (empty or bad input becomes 0, negatives clamp to 0) and an unknown case
// id is skipped rather than failing the rest of the form.
func (h *AdminHandler) HandleUpdatePrices(c *fiber.Ctx) error {
	updates := make(map[string]float64)
	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		k := string(key)
		if !strings.HasPrefix(k, "price_") {
			return
		}
		caseID := strings.TrimPrefix(k, "price_")
		updates[caseID] = services.ParsePrice(string(value))
	})

	for caseID, price := range updates {
		if err := h.caseService.SetPrice(caseID, price); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				log.Printf("Skipping price update for unknown case %s", caseID)
				continue
			}
			log.Printf("Error updating price for case %s: %v", caseID, err)
			return errorResponse(c, err)
		}
	}

	return c.JSON(fiber.Map{
		"message": "Case prices updated successfully.",
	})
}
