package kafka

import (
	"time"

	"github.com/spiritstitch/atelier/internal/domain"
)

// Topics для Kafka
const (
	TopicOrderEvents   = "atelier.order.events"
	TopicClosureEvents = "atelier.closure.events"
)

// OrderEvent — wire-представление события жизненного цикла заказа.
type OrderEvent struct {
	EventType  string    `json:"event_type"`
	OrderID    int64     `json:"order_id"`
	SalonID    string    `json:"salon_id,omitempty"`
	TailorID   int64     `json:"tailor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// newOrderEvent упаковывает доменное событие для отправки.
func newOrderEvent(event domain.Event) OrderEvent {
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	return OrderEvent{
		EventType:  event.Type,
		OrderID:    event.OrderID,
		SalonID:    event.SalonID,
		TailorID:   event.TailorID,
		OccurredAt: occurredAt,
	}
}

// topicFor выбирает топик по типу события. Просьбы о закрытии идут в
// отдельный топик, остальные события заказа в общий.
func topicFor(eventType string) string {
	if eventType == domain.EventClosureRequested {
		return TopicClosureEvents
	}
	return TopicOrderEvents
}
