package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spiritstitch/atelier/internal/domain"
	"github.com/spiritstitch/atelier/internal/service/auth"
	"github.com/spiritstitch/atelier/internal/service/workflow"
	"github.com/spiritstitch/atelier/internal/session"
)

// RouterDeps — зависимости маршрутизатора.
type RouterDeps struct {
	Auth      *auth.Service
	Workflow  *workflow.Controller
	Charges   domain.ChargeRepository
	Sessions  *session.Manager
	JWTSecret string
	TokenTTL  time.Duration
}

// Router регистрирует маршруты API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (публичный вход, защищённый выход)
	authHandler := NewAuthHandler(deps.Auth, deps.Sessions, deps.JWTSecret, deps.TokenTTL)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)

	// Защищённые маршруты (Bearer-токен)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.Sessions))
	protected.Post("/auth/logout", authHandler.Logout)

	// Заказы
	orderHandler := NewOrderHandler(deps.Workflow)
	orders := protected.Group("/orders")
	orders.Get("/balance", orderHandler.ListBalance)
	orders.Put("/:id/payment", orderHandler.EditPayment)

	// Просьбы о закрытии
	closureHandler := NewClosureHandler(deps.Workflow)
	orders.Post("/:id/closure-requests", closureHandler.Request)
	orders.Get("/:id/closure-requests/summary", closureHandler.Summary)

	// Админские маршруты
	admin := protected.Group("/", RequireAdmin())
	admin.Get("/closure-requests/pending", closureHandler.ListPending)
	admin.Get("/orders/terminated", orderHandler.ListTerminated)
	admin.Post("/orders/:id/delivery", orderHandler.ValidateDelivery)

	chargeHandler := NewChargeHandler(deps.Charges)
	charges := admin.Group("/charges")
	charges.Get("/", chargeHandler.List)
	charges.Post("/", chargeHandler.Create)
}
