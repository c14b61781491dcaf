package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spiritstitch/atelier/internal/service/workflow"
)

// ClosureHandler обслуживает просьбы портных о закрытии заказов.
type ClosureHandler struct {
	workflow *workflow.Controller
}

// NewClosureHandler создаёт handler просьб о закрытии.
func NewClosureHandler(ctrl *workflow.Controller) *ClosureHandler {
	return &ClosureHandler{workflow: ctrl}
}

// Request фиксирует просьбу текущего портного о закрытии заказа.
func (h *ClosureHandler) Request(c *fiber.Ctx) error {
	orderID, err := parseOrderID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "VALIDATION", Message: "invalid order id"})
	}

	req, err := h.workflow.RequestClosure(orderID, ActorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toClosureResponse(req))
}

// ListPending возвращает по одной актуальной просьбе на заказ.
// Только для админов.
func (h *ClosureHandler) ListPending(c *fiber.Ctx) error {
	byOrder, err := h.workflow.PendingRequestsByOrder()
	if err != nil {
		return respondError(c, err)
	}

	result := make([]ClosureRequestResponse, 0, len(byOrder))
	for _, req := range byOrder {
		result = append(result, toClosureResponse(req))
	}
	return c.JSON(result)
}

// Summary возвращает агрегат просьб текущего портного по заказу.
func (h *ClosureHandler) Summary(c *fiber.Ctx) error {
	orderID, err := parseOrderID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "VALIDATION", Message: "invalid order id"})
	}

	stats, err := h.workflow.RequestSummary(orderID, ActorID(c))
	if err != nil {
		return respondError(c, err)
	}

	resp := ClosureSummaryResponse{OrderID: orderID, Count: stats.Count}
	if !stats.LastRequestedAt.IsZero() {
		last := stats.LastRequestedAt
		resp.LastRequestedAt = &last
	}
	return c.JSON(resp)
}
