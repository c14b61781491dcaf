package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Charge — расход салона (аренда, материалы и т.п.).
// Таблица входит в bootstrap схемы наравне с заказами.
type Charge struct {
	ID         int64
	SalonID    string
	Label      string
	Amount     decimal.Decimal
	IncurredAt time.Time
	CreatedAt  time.Time
}
