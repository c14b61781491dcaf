package auth

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/spiritstitch/atelier/internal/domain"
	"github.com/spiritstitch/atelier/internal/metrics"
)

// Целевые страницы после входа.
const (
	PageSuperAdminDashboard = "super_admin_dashboard"
	PageNewOrder            = "nouvelle_commande"
)

// Service проверяет учётные данные сотрудников.
type Service struct {
	actors  domain.ActorRepository
	logger  *log.Entry
	metrics *metrics.WorkflowMetrics
}

// NewService создаёт сервис аутентификации. Metrics может быть nil.
func NewService(actors domain.ActorRepository, logger *log.Entry, m *metrics.WorkflowMetrics) *Service {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Service{
		actors:  actors,
		logger:  logger.WithField("component", "auth"),
		metrics: m,
	}
}

// Authenticate сверяет код сотрудника и пароль. Неизвестный код и неверный
// пароль неразличимы снаружи, оба дают ErrBadCredentials.
func (s *Service) Authenticate(code, password string) (domain.Actor, error) {
	actor, err := s.actors.GetByCode(code)
	if err != nil {
		if errors.Is(err, domain.ErrActorNotFound) {
			s.metrics.RecordAuthFailure()
			s.logger.WithField("code", code).Info("login rejected: unknown code")
			return domain.Actor{}, domain.ErrBadCredentials
		}
		return domain.Actor{}, fmt.Errorf("lookup actor: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(actor.PasswordHash), []byte(password)); err != nil {
		s.metrics.RecordAuthFailure()
		s.logger.WithField("code", code).Info("login rejected: wrong password")
		return domain.Actor{}, domain.ErrBadCredentials
	}

	actor.Role = domain.NormalizeRole(string(actor.Role))
	return actor, nil
}

// LandingPage возвращает стартовую страницу для роли сотрудника.
func (s *Service) LandingPage(actor domain.Actor) string {
	if actor.Role == domain.RoleSuperAdmin {
		return PageSuperAdminDashboard
	}
	return PageNewOrder
}

// HashPassword готовит bcrypt-хэш для хранения.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
