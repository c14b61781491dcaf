package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/spiritstitch/atelier/internal/domain"
)

const tokenIssuer = "spiritstitch"

// Claims — стандартные JWT-клеймы плюс поля приложения. Роль и скоуп
// салона кладём в токен, чтобы middleware не ходил в БД.
type Claims struct {
	jwt.RegisteredClaims
	ActorID   int64  `json:"actor_id"`
	SalonID   string `json:"salon_id"`
	Role      string `json:"role"`
	SessionID string `json:"session_id,omitempty"`
}

// GenerateToken выпускает подписанный HS256-токен для сотрудника.
func GenerateToken(secret string, actor domain.Actor, sessionID string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: empty secret")
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(actor.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		ActorID:   actor.ID,
		SalonID:   actor.ResolveSalonID(),
		Role:      string(actor.Role),
		SessionID: sessionID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken валидирует токен и возвращает его клеймы. Просроченный токен
// или неверная подпись дают ошибку.
func ParseToken(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: empty secret")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("jwt: invalid claims")
	}
	return claims, nil
}
