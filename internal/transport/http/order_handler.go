package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spiritstitch/atelier/internal/domain"
	"github.com/spiritstitch/atelier/internal/service/workflow"
)

const dateLayout = "2006-01-02"

// OrderHandler обслуживает операции над заказами.
type OrderHandler struct {
	workflow *workflow.Controller
}

// NewOrderHandler создаёт handler заказов.
func NewOrderHandler(ctrl *workflow.Controller) *OrderHandler {
	return &OrderHandler{workflow: ctrl}
}

// ListBalance возвращает заказы текущего портного с ненулевым остатком.
// Параметры from/to задают полуоткрытое окно по дате создания.
func (h *OrderHandler) ListBalance(c *fiber.Ctx) error {
	from, to, err := parseDateWindow(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}

	orders, err := h.workflow.ListOrdersWithBalance(ActorID(c), SalonID(c), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOrderResponses(orders))
}

// EditPayment применяет правку оплаты. Полностью оплаченный заказ
// закрывается в этом же запросе.
func (h *OrderHandler) EditPayment(c *fiber.Ctx) error {
	orderID, err := parseOrderID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "VALIDATION", Message: "invalid order id"})
	}

	var in PaymentEditRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "INVALID_BODY", Message: "malformed request body"})
	}

	terminated, err := h.workflow.RecordPaymentEdit(orderID, in.PrixTotal, in.Avance, in.Reste)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(PaymentEditResponse{OrderID: orderID, Terminated: terminated})
}

// ListTerminated возвращает закрытые заказы салона. Только для админов.
func (h *OrderHandler) ListTerminated(c *fiber.Ctx) error {
	from, to, err := parseDateWindow(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}

	var tailorID *int64
	if raw := c.Query("tailor_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "VALIDATION", Message: "invalid tailor_id"})
		}
		tailorID = &id
	}

	status := domain.OrderStatus(c.Query("status", string(domain.OrderStatusTerminated)))
	if !status.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "VALIDATION", Message: "invalid status"})
	}

	orders, err := h.workflow.ListTerminated(SalonID(c), tailorID, from, to, status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOrderResponses(orders))
}

// ValidateDelivery подтверждает выдачу закрытого заказа. Только для админов.
func (h *OrderHandler) ValidateDelivery(c *fiber.Ctx) error {
	orderID, err := parseOrderID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "VALIDATION", Message: "invalid order id"})
	}

	if err := h.workflow.ValidateDelivery(orderID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseOrderID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

// parseDateWindow читает from/to в формате YYYY-MM-DD. Граница to
// сдвигается на сутки, чтобы день попадал в окно целиком.
func parseDateWindow(c *fiber.Ctx) (*time.Time, *time.Time, error) {
	var from, to *time.Time

	if raw := c.Query("from"); raw != "" {
		ts, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, nil, err
		}
		from = &ts
	}
	if raw := c.Query("to"); raw != "" {
		ts, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, nil, err
		}
		end := ts.Add(24 * time.Hour)
		to = &end
	}

	return from, to, nil
}
