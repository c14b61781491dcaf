package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spiritstitch/atelier/internal/domain"
	"github.com/spiritstitch/atelier/internal/service/auth"
	"github.com/spiritstitch/atelier/internal/session"
)

// AuthHandler обслуживает вход и выход сотрудников.
type AuthHandler struct {
	auth      *auth.Service
	sessions  *session.Manager
	jwtSecret string
	tokenTTL  time.Duration
}

// NewAuthHandler создаёт handler аутентификации.
func NewAuthHandler(svc *auth.Service, sessions *session.Manager, jwtSecret string, tokenTTL time.Duration) *AuthHandler {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &AuthHandler{
		auth:      svc,
		sessions:  sessions,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// Login проверяет учётные данные, заводит сессию и выпускает токен.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "INVALID_BODY", Message: "malformed request body"})
	}
	if in.Code == "" || in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "VALIDATION", Message: "code and password are required"})
	}

	actor, err := h.auth.Authenticate(in.Code, in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrBadCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid code or password"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	var sessionID string
	if h.sessions != nil {
		sessionID, _ = h.sessions.Open(actor)
	}

	token, err := auth.GenerateToken(h.jwtSecret, actor, sessionID, h.tokenTTL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Code: "INTERNAL", Message: "failed to issue token"})
	}

	return c.JSON(LoginResponse{
		Token:       token,
		LandingPage: h.auth.LandingPage(actor),
		Role:        string(actor.Role),
		SalonID:     actor.ResolveSalonID(),
	})
}

// Logout удаляет сессию, после чего токен с её id перестаёт приниматься.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if h.sessions != nil {
		if sessionID := SessionID(c); sessionID != "" {
			h.sessions.Drop(sessionID)
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}
