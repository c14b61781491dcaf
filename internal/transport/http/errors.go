package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spiritstitch/atelier/internal/domain"
)

// respondError переводит доменные ошибки в HTTP-статусы.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case domain.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrOrderNotTerminated),
		errors.Is(err, domain.ErrInvalidStatusTransition):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrPrixNegative),
		errors.Is(err, domain.ErrAvanceNegative),
		errors.Is(err, domain.ErrResteMismatch),
		errors.Is(err, domain.ErrResteNegative),
		errors.Is(err, domain.ErrOrderIDRequired),
		errors.Is(err, domain.ErrSalonRequired),
		errors.Is(err, domain.ErrTailorRequired):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
