package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLedger описывает требования к реестру заказов.
// Все выборки ограничены салоном (tenant isolation); фильтр по портному сужает дальше.
type OrderLedger interface {
	// Create сохраняет новый заказ и возвращает запись с выданным идентификатором.
	Create(order Order) (Order, error)
	// Get возвращает заказ по идентификатору или ErrOrderNotFound, если его нет.
	Get(id int64) (Order, error)
	// ListWithBalance возвращает заказы с reste > 0, опционально ограниченные окном дат.
	ListWithBalance(tailorID int64, salonID string, from, to *time.Time) ([]Order, error)
	// UpdatePricing атомарно перезаписывает три платёжных поля заказа.
	// Остаток пересчитывается по формуле prix_total - avance; расходящееся
	// значение reste от вызывающего отклоняется с ErrResteMismatch.
	UpdatePricing(orderID int64, prixTotal, avance, reste decimal.Decimal) error
	// MarkTerminated переводит заказ в статус terminated.
	// Повторный вызов для уже закрытого заказа — успешный no-op.
	MarkTerminated(orderID int64) error
	// MarkDeliveredPaid переводит заказ в терминальный статус delivered_paid.
	// Повторный вызов для уже выданного заказа — успешный no-op.
	MarkDeliveredPaid(orderID int64) error
	// ListTerminated возвращает заказы салона в указанном статусе,
	// опционально суженные портным и окном дат.
	ListTerminated(salonID string, tailorID *int64, from, to *time.Time, status OrderStatus) ([]Order, error)
}

// ClosureLedger хранит просьбы портных о закрытии заказов.
type ClosureLedger interface {
	// Append добавляет новую просьбу (повторные просьбы допустимы).
	Append(req ClosureRequest) (ClosureRequest, error)
	// ListPending возвращает все просьбы системы, упорядоченные по created_at ASC, id ASC.
	ListPending() ([]ClosureRequest, error)
	// CountByOrders агрегирует просьбы портного по набору заказов.
	CountByOrders(tailorID int64, orderIDs []int64) (map[int64]ClosureStats, error)
	// CountForOrder агрегирует просьбы портного по одному заказу.
	CountForOrder(orderID, tailorID int64) (ClosureStats, error)
}

// ActorRepository — доступ к учёткам сотрудников (read-only для ядра).
type ActorRepository interface {
	// GetByCode возвращает сотрудника по коду входа или ErrActorNotFound.
	GetByCode(code string) (Actor, error)
}

// ChargeRepository — реестр расходов салона.
type ChargeRepository interface {
	Create(charge Charge) (Charge, error)
	ListBySalon(salonID string) ([]Charge, error)
}
