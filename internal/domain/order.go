package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает жизненный цикл заказа ателье.
type OrderStatus string

const (
	// OrderStatusOpen — заказ принят, остаток к оплате ещё не закрыт.
	OrderStatusOpen OrderStatus = "open"
	// OrderStatusTerminated — остаток оплачен (reste <= 0), заказ готов к выдаче.
	OrderStatusTerminated OrderStatus = "terminated"
	// OrderStatusDeliveredPaid — заказ выдан клиенту и полностью оплачен. Терминальный статус.
	OrderStatusDeliveredPaid OrderStatus = "delivered_paid"
)

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusOpen, OrderStatusTerminated, OrderStatusDeliveredPaid:
		return true
	default:
		return false
	}
}

// Order агрегирует состояние заказа: клиент, салон (tenant), портной и платёжные поля.
// Денежные поля хранятся как decimal, чтобы исключить накопление ошибок float.
type Order struct {
	ID        int64
	ClientID  int64
	SalonID   string
	TailorID  int64
	PrixTotal decimal.Decimal
	Avance    decimal.Decimal
	Reste     decimal.Decimal
	Status    OrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ComputeReste вычисляет остаток к оплате из полной цены и аванса.
// Единственная формула, из которой выводится reste во всей системе.
func ComputeReste(prixTotal, avance decimal.Decimal) decimal.Decimal {
	return prixTotal.Sub(avance)
}

// Balanced сообщает, закрыт ли остаток по заказу (reste <= 0).
func (o *Order) Balanced() bool {
	return o.Reste.Sign() <= 0
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.SalonID == "" {
		errs = append(errs, ErrSalonRequired)
	}
	if o.TailorID <= 0 {
		errs = append(errs, ErrTailorRequired)
	}
	if o.PrixTotal.Sign() < 0 {
		errs = append(errs, ErrPrixNegative)
	}
	if o.Avance.Sign() < 0 {
		errs = append(errs, ErrAvanceNegative)
	}

	// Сверяем остаток с формулой prix_total - avance.
	if !o.Reste.Equal(ComputeReste(o.PrixTotal, o.Avance)) {
		errs = append(errs, ErrResteMismatch)
	}
	// Открытый заказ не может стартовать с отрицательным остатком.
	if o.Status == OrderStatusOpen && o.Reste.Sign() < 0 {
		errs = append(errs, ErrResteNegative)
	}

	return errs
}

// Client — клиент салона. Создание клиентов принадлежит потоку приёма заказов,
// здесь запись нужна только как ссылка из заказа.
type Client struct {
	ID        int64
	SalonID   string
	FirstName string
	LastName  string
	Phone     string
	CreatedAt time.Time
}
