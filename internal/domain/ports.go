package domain

import "time"

// Event — событие жизненного цикла заказа для внешней шины.
type Event struct {
	Type       string
	OrderID    int64
	SalonID    string
	TailorID   int64
	OccurredAt time.Time
}

// Типы публикуемых событий.
const (
	EventOrderTerminated    = "order.terminated"
	EventOrderDeliveredPaid = "order.delivered_paid"
	EventClosureRequested   = "closure.requested"
)

// EventPublisher публикует события наружу; публикация best-effort,
// её сбой не является бизнес-ошибкой.
type EventPublisher interface {
	Publish(event Event) error
}
