package handlers

import (
	"errors"

	"github.com/Talha3818/gaming-site-sub000/services"

	"github.com/gofiber/fiber/v2"
)

// errJSON translates engine errors to HTTP responses so the UI layer
// can show actionable messages without knowing engine internals.
func errJSON(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidWinner):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrInsufficientBalance):
		status = fiber.StatusPaymentRequired
	case errors.Is(err, services.ErrUnauthorized):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrFull),
		errors.Is(err, services.ErrAlreadyJoined),
		errors.Is(err, services.ErrAlreadySettled),
		errors.Is(err, services.ErrSchedulingConflict),
		errors.Is(err, services.ErrPendingWithdrawal):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrExpired):
		status = fiber.StatusGone
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
