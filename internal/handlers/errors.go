package handlers

import (
	"errors"
	"log"

	"droptrack/internal/models"

	"github.com/gofiber/fiber/v2"
)

// statusForError maps the shared error taxonomy to HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, models.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// errorResponse writes a flash-style JSON error. Taxonomy errors surface
// their message; anything else is logged server-side and replaced with a
// generic one so internals never leak.
func errorResponse(c *fiber.Ctx, err error) error {
	status := statusForError(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		log.Printf("Internal error on %s %s: %v", c.Method(), c.Path(), err)
		message = "An internal server error occurred."
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
	})
}
