package workflow

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/spiritstitch/atelier/internal/domain"
	"github.com/spiritstitch/atelier/internal/metrics"
)

// Controller оркестрирует жизненный цикл заказа поверх реестров. Состояние
// заказа всегда перечитывается из реестра, контроллер ничего не кэширует.
type Controller struct {
	orders    domain.OrderLedger
	closures  domain.ClosureLedger
	publisher domain.EventPublisher
	logger    *log.Entry
	metrics   *metrics.WorkflowMetrics
}

// NewController создаёт контроллер. Publisher, logger и metrics могут быть nil.
func NewController(
	orders domain.OrderLedger,
	closures domain.ClosureLedger,
	publisher domain.EventPublisher,
	logger *log.Entry,
	m *metrics.WorkflowMetrics,
) *Controller {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Controller{
		orders:    orders,
		closures:  closures,
		publisher: publisher,
		logger:    logger.WithField("component", "workflow"),
		metrics:   m,
	}
}

// ListOrdersWithBalance возвращает заказы портного с ненулевым остатком.
func (c *Controller) ListOrdersWithBalance(tailorID int64, salonID string, from, to *time.Time) ([]domain.Order, error) {
	defer c.observe("list_balance", time.Now())
	return c.orders.ListWithBalance(tailorID, salonID, from, to)
}

// RecordPaymentEdit применяет правку оплаты. Если после правки остаток
// стал нулевым или отрицательным, заказ автоматически закрывается.
// Возвращает true, если закрытие произошло в этом вызове.
//
// Ошибка правки останавливает всё: закрытие не делается даже частично.
// Ошибка закрытия после успешной правки логируется и возвращается, сама
// правка при этом уже применена.
func (c *Controller) RecordPaymentEdit(orderID int64, prixTotal, avance, reste decimal.Decimal) (bool, error) {
	defer c.observe("payment_edit", time.Now())

	if err := c.orders.UpdatePricing(orderID, prixTotal, avance, reste); err != nil {
		return false, fmt.Errorf("update pricing for order %d: %w", orderID, err)
	}
	c.metrics.RecordPaymentEdit()

	if reste.Sign() > 0 {
		return false, nil
	}

	if err := c.orders.MarkTerminated(orderID); err != nil {
		c.logger.WithError(err).WithField("order_id", orderID).
			Error("payment applied but auto-termination failed")
		return false, fmt.Errorf("terminate order %d: %w", orderID, err)
	}

	c.metrics.RecordTermination()
	c.logger.WithField("order_id", orderID).Info("order auto-terminated after full payment")
	c.publish(domain.EventOrderTerminated, orderID)
	return true, nil
}

// PendingRequestsByOrder возвращает по одной просьбе о закрытии на заказ.
// При нескольких просьбах побеждает самая свежая.
func (c *Controller) PendingRequestsByOrder() (map[int64]domain.ClosureRequest, error) {
	requests, err := c.closures.ListPending()
	if err != nil {
		return nil, err
	}

	// ListPending отдаёт created_at ASC, поздние записи перекрывают ранние.
	byOrder := make(map[int64]domain.ClosureRequest)
	for _, req := range requests {
		if req.ActionType != domain.ActionClosureRequest {
			continue
		}
		byOrder[req.OrderID] = req
	}
	return byOrder, nil
}

// RequestClosure фиксирует просьбу портного о закрытии заказа.
func (c *Controller) RequestClosure(orderID, tailorID int64) (domain.ClosureRequest, error) {
	defer c.observe("request_closure", time.Now())

	if _, err := c.orders.Get(orderID); err != nil {
		return domain.ClosureRequest{}, err
	}

	req, err := c.closures.Append(domain.ClosureRequest{
		OrderID:  orderID,
		TailorID: tailorID,
	})
	if err != nil {
		return domain.ClosureRequest{}, fmt.Errorf("append closure request for order %d: %w", orderID, err)
	}

	c.metrics.RecordClosureRequest()
	c.publish(domain.EventClosureRequested, orderID)
	return req, nil
}

// RequestStatsByOrders возвращает агрегаты просьб по набору заказов.
func (c *Controller) RequestStatsByOrders(tailorID int64, orderIDs []int64) (map[int64]domain.ClosureStats, error) {
	return c.closures.CountByOrders(tailorID, orderIDs)
}

// RequestSummary возвращает агрегат просьб по одному заказу.
func (c *Controller) RequestSummary(orderID, tailorID int64) (domain.ClosureStats, error) {
	return c.closures.CountForOrder(orderID, tailorID)
}

// ListTerminated возвращает закрытые заказы салона.
func (c *Controller) ListTerminated(salonID string, tailorID *int64, from, to *time.Time, status domain.OrderStatus) ([]domain.Order, error) {
	defer c.observe("list_terminated", time.Now())
	return c.orders.ListTerminated(salonID, tailorID, from, to, status)
}

// ValidateDelivery подтверждает выдачу закрытого заказа. Открытый заказ
// выдать нельзя, реестр вернёт ErrOrderNotTerminated.
func (c *Controller) ValidateDelivery(orderID int64) error {
	defer c.observe("delivery", time.Now())

	if err := c.orders.MarkDeliveredPaid(orderID); err != nil {
		return fmt.Errorf("validate delivery for order %d: %w", orderID, err)
	}

	c.metrics.RecordDelivery()
	c.logger.WithField("order_id", orderID).Info("order delivery validated")
	c.publish(domain.EventOrderDeliveredPaid, orderID)
	return nil
}

// publish отправляет событие лучшим усилием. Отказ брокера не должен
// ломать уже применённую операцию.
func (c *Controller) publish(eventType string, orderID int64) {
	if c.publisher == nil {
		return
	}

	event := domain.Event{
		Type:       eventType,
		OrderID:    orderID,
		OccurredAt: time.Now().UTC(),
	}
	if order, err := c.orders.Get(orderID); err == nil {
		event.SalonID = order.SalonID
		event.TailorID = order.TailorID
	}

	if err := c.publisher.Publish(event); err != nil {
		c.logger.WithError(err).WithFields(log.Fields{
			"event":    eventType,
			"order_id": orderID,
		}).Warn("failed to publish order event")
	}
}

func (c *Controller) observe(op string, start time.Time) {
	c.metrics.RecordOpDuration(op, time.Since(start))
}
