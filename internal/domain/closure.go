package domain

import "time"

// ActionClosureRequest — тип действия «портной просит закрыть/выдать заказ».
const ActionClosureRequest = "fermeture_demande"

// ClosureRequest — ожидающая валидации просьба портного закрыть конкретный заказ.
// По одному заказу может накапливаться несколько повторных просьб.
type ClosureRequest struct {
	ID         int64
	OrderID    int64
	TailorID   int64
	ActionType string
	CreatedAt  time.Time
}

// ValidateInvariants проверяет обязательные поля запроса на закрытие.
func (r *ClosureRequest) ValidateInvariants() []error {
	var errs []error
	if r.OrderID <= 0 {
		errs = append(errs, ErrOrderIDRequired)
	}
	if r.TailorID <= 0 {
		errs = append(errs, ErrTailorRequired)
	}
	return errs
}

// ClosureStats — агрегат просьб о закрытии по заказу и портному.
type ClosureStats struct {
	Count           int
	LastRequestedAt time.Time
}
