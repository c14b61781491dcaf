package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spiritstitch/atelier/internal/domain"
)

// ChargeHandler обслуживает расходы салона. Только для админов.
type ChargeHandler struct {
	charges domain.ChargeRepository
}

// NewChargeHandler создаёт handler расходов.
func NewChargeHandler(charges domain.ChargeRepository) *ChargeHandler {
	return &ChargeHandler{charges: charges}
}

// Create записывает расход в текущий салон.
func (h *ChargeHandler) Create(c *fiber.Ctx) error {
	var in ChargeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "INVALID_BODY", Message: "malformed request body"})
	}
	if in.Label == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "VALIDATION", Message: "label is required"})
	}
	if in.Amount.Sign() < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "VALIDATION", Message: "amount must be non-negative"})
	}

	charge := domain.Charge{
		SalonID: SalonID(c),
		Label:   in.Label,
		Amount:  in.Amount,
	}
	if in.IncurredAt != nil {
		charge.IncurredAt = *in.IncurredAt
	} else {
		charge.IncurredAt = time.Now().UTC()
	}

	created, err := h.charges.Create(charge)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toChargeResponse(created))
}

// List возвращает расходы текущего салона.
func (h *ChargeHandler) List(c *fiber.Ctx) error {
	charges, err := h.charges.ListBySalon(SalonID(c))
	if err != nil {
		return respondError(c, err)
	}

	result := make([]ChargeResponse, 0, len(charges))
	for _, charge := range charges {
		result = append(result, toChargeResponse(charge))
	}
	return c.JSON(result)
}
