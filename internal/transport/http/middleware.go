package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spiritstitch/atelier/internal/domain"
	"github.com/spiritstitch/atelier/internal/service/auth"
	"github.com/spiritstitch/atelier/internal/session"
)

// Ключи locals, заполняемые middleware аутентификации.
const (
	LocalActorID   = "actor_id"
	LocalSalonID   = "salon_id"
	LocalRole      = "role"
	LocalSessionID = "session_id"
)

// AuthMiddleware валидирует Bearer-токен и кладёт скоуп сотрудника в locals.
// Если токен несёт session_id, сессия обязана быть живой: logout отзывает
// токен раньше его истечения.
func AuthMiddleware(jwtSecret string, sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Code: "MISSING_TOKEN", Message: "authorization header required"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Code: "INVALID_TOKEN", Message: "expected format: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Code: "MISSING_TOKEN", Message: "empty token"})
		}

		claims, err := auth.ParseToken(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Code: "INVALID_TOKEN", Message: "invalid or expired token"})
		}

		if sessions != nil && claims.SessionID != "" {
			if _, ok := sessions.Get(claims.SessionID); !ok {
				return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Code: "SESSION_EXPIRED", Message: "session is no longer active"})
			}
		}

		c.Locals(LocalActorID, claims.ActorID)
		c.Locals(LocalSalonID, claims.SalonID)
		c.Locals(LocalRole, domain.NormalizeRole(claims.Role))
		c.Locals(LocalSessionID, claims.SessionID)
		return c.Next()
	}
}

// RequireAdmin пускает дальше только админов и супер-админов.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := ActorRole(c)
		if role != domain.RoleAdmin && role != domain.RoleSuperAdmin {
			return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{Code: "FORBIDDEN", Message: "admin role required"})
		}
		return c.Next()
	}
}

// ActorID возвращает id сотрудника из locals.
func ActorID(c *fiber.Ctx) int64 {
	v := c.Locals(LocalActorID)
	if v == nil {
		return 0
	}
	id, _ := v.(int64)
	return id
}

// SalonID возвращает арендный скоуп из locals.
func SalonID(c *fiber.Ctx) string {
	v := c.Locals(LocalSalonID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// ActorRole возвращает нормализованную роль из locals.
func ActorRole(c *fiber.Ctx) domain.Role {
	v := c.Locals(LocalRole)
	if v == nil {
		return ""
	}
	role, _ := v.(domain.Role)
	return role
}

// SessionID возвращает id сессии из locals.
func SessionID(c *fiber.Ctx) string {
	v := c.Locals(LocalSessionID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
