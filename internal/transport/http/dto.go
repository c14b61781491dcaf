package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spiritstitch/atelier/internal/domain"
)

// ErrorResponse — единый формат ошибок API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// LoginRequest — тело POST /api/auth/login.
type LoginRequest struct {
	Code     string `json:"code"`
	Password string `json:"password"`
}

// LoginResponse возвращает токен и стартовую страницу для роли.
type LoginResponse struct {
	Token       string `json:"token"`
	LandingPage string `json:"landing_page"`
	Role        string `json:"role"`
	SalonID     string `json:"salon_id"`
}

// PaymentEditRequest — тело PUT /api/orders/:id/payment.
type PaymentEditRequest struct {
	PrixTotal decimal.Decimal `json:"prix_total"`
	Avance    decimal.Decimal `json:"avance"`
	Reste     decimal.Decimal `json:"reste"`
}

// PaymentEditResponse сообщает, закрылся ли заказ этой правкой.
type PaymentEditResponse struct {
	OrderID    int64 `json:"order_id"`
	Terminated bool  `json:"terminated"`
}

// OrderResponse — wire-представление заказа.
type OrderResponse struct {
	ID        int64           `json:"id"`
	ClientID  int64           `json:"client_id"`
	SalonID   string          `json:"salon_id"`
	TailorID  int64           `json:"tailor_id"`
	PrixTotal decimal.Decimal `json:"prix_total"`
	Avance    decimal.Decimal `json:"avance"`
	Reste     decimal.Decimal `json:"reste"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func toOrderResponse(order domain.Order) OrderResponse {
	return OrderResponse{
		ID:        order.ID,
		ClientID:  order.ClientID,
		SalonID:   order.SalonID,
		TailorID:  order.TailorID,
		PrixTotal: order.PrixTotal,
		Avance:    order.Avance,
		Reste:     order.Reste,
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
}

func toOrderResponses(orders []domain.Order) []OrderResponse {
	result := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		result = append(result, toOrderResponse(order))
	}
	return result
}

// ClosureRequestResponse — wire-представление просьбы о закрытии.
type ClosureRequestResponse struct {
	ID         int64     `json:"id"`
	OrderID    int64     `json:"order_id"`
	TailorID   int64     `json:"tailor_id"`
	ActionType string    `json:"action_type"`
	CreatedAt  time.Time `json:"created_at"`
}

func toClosureResponse(req domain.ClosureRequest) ClosureRequestResponse {
	return ClosureRequestResponse{
		ID:         req.ID,
		OrderID:    req.OrderID,
		TailorID:   req.TailorID,
		ActionType: req.ActionType,
		CreatedAt:  req.CreatedAt,
	}
}

// ClosureSummaryResponse — агрегат просьб по заказу.
type ClosureSummaryResponse struct {
	OrderID         int64      `json:"order_id"`
	Count           int        `json:"count"`
	LastRequestedAt *time.Time `json:"last_requested_at,omitempty"`
}

// ChargeRequest — тело POST /api/charges.
type ChargeRequest struct {
	Label      string          `json:"label"`
	Amount     decimal.Decimal `json:"amount"`
	IncurredAt *time.Time      `json:"incurred_at,omitempty"`
}

// ChargeResponse — wire-представление расхода салона.
type ChargeResponse struct {
	ID         int64           `json:"id"`
	SalonID    string          `json:"salon_id"`
	Label      string          `json:"label"`
	Amount     decimal.Decimal `json:"amount"`
	IncurredAt time.Time       `json:"incurred_at"`
	CreatedAt  time.Time       `json:"created_at"`
}

func toChargeResponse(charge domain.Charge) ChargeResponse {
	return ChargeResponse{
		ID:         charge.ID,
		SalonID:    charge.SalonID,
		Label:      charge.Label,
		Amount:     charge.Amount,
		IncurredAt: charge.IncurredAt,
		CreatedAt:  charge.CreatedAt,
	}
}
