package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spiritstitch/atelier/internal/domain"
	"github.com/spiritstitch/atelier/internal/metrics"
)

// PageLogin — страница, с которой начинается любая сессия.
const PageLogin = "connexion"

// State хранит рабочее состояние одной пользовательской сессии.
type State struct {
	Actor         domain.Actor
	Authenticated bool
	SalonID       string
	Page          string
	CreatedAt     time.Time
	LastSeen      time.Time
}

// Manager раздаёт сессии по непрозрачным uuid-токенам.
type Manager struct {
	mu      sync.RWMutex
	items   map[string]*State
	metrics *metrics.WorkflowMetrics
	now     func() time.Time
}

// NewManager создаёт менеджер сессий. Metrics может быть nil.
func NewManager(m *metrics.WorkflowMetrics) *Manager {
	return &Manager{
		items:   make(map[string]*State),
		metrics: m,
		now:     time.Now,
	}
}

// Open заводит новую сессию для сотрудника и возвращает её токен.
// Стартовая страница и арендный скоуп выставляются сразу.
func (m *Manager) Open(actor domain.Actor) (string, *State) {
	now := m.now().UTC()
	state := &State{
		Actor:         actor,
		Authenticated: true,
		SalonID:       actor.ResolveSalonID(),
		Page:          PageLogin,
		CreatedAt:     now,
		LastSeen:      now,
	}

	token := uuid.NewString()

	m.mu.Lock()
	m.items[token] = state
	m.mu.Unlock()

	m.metrics.SessionOpened()
	return token, state
}

// Get возвращает сессию по токену и обновляет отметку активности.
func (m *Manager) Get(token string) (*State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.items[token]
	if !ok {
		return nil, false
	}
	state.LastSeen = m.now().UTC()
	return state, true
}

// Clear сбрасывает состояние сессии к значениям по умолчанию, не удаляя
// её. Токен остаётся валидным, подключение к БД живёт вне сессии и не
// затрагивается.
func (m *Manager) Clear(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.items[token]
	if !ok {
		return false
	}

	created := state.CreatedAt
	*state = State{
		Page:      PageLogin,
		CreatedAt: created,
		LastSeen:  m.now().UTC(),
	}
	return true
}

// Drop удаляет сессию целиком (logout).
func (m *Manager) Drop(token string) {
	m.mu.Lock()
	_, ok := m.items[token]
	delete(m.items, token)
	m.mu.Unlock()

	if ok {
		m.metrics.SessionClosed()
	}
}

// Len возвращает число живых сессий.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
