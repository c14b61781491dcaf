package gateway

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/spiritstitch/atelier/internal/domain"
	"github.com/spiritstitch/atelier/internal/metrics"
	"github.com/spiritstitch/atelier/internal/storage/postgres"
)

// defaultMaxRetries — сколько переподключений допускает EnsureOrFail,
// прежде чем сдаться. Без пауз между попытками.
const defaultMaxRetries = 2

// conn — минимальный контракт соединения, который нужен шлюзу.
// *postgres.Store реализует его целиком.
type conn interface {
	Probe(ctx context.Context) bool
	Bootstrap(ctx context.Context) error
	Close() error
}

// dialFunc открывает новое соединение по DSN.
type dialFunc func(ctx context.Context, dsn string) (conn, error)

func dialPostgres(ctx context.Context, dsn string) (conn, error) {
	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Gateway владеет соединением с БД и следит за тем, чтобы схема была
// развёрнута ровно один раз на соединение.
type Gateway struct {
	cfg     Config
	logger  *log.Entry
	metrics *metrics.WorkflowMetrics
	dial    dialFunc

	mu           sync.Mutex
	conn         conn
	bootstrapped bool
	lastError    error
}

// New создаёт шлюз. Metrics может быть nil.
func New(cfg Config, logger *log.Entry, m *metrics.WorkflowMetrics) *Gateway {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	return &Gateway{
		cfg:     cfg,
		logger:  logger.WithField("component", "gateway"),
		metrics: m,
		dial:    dialPostgres,
	}
}

// Connect открывает соединение, если его ещё нет.
func (g *Gateway) Connect(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.connectLocked(ctx)
}

func (g *Gateway) connectLocked(ctx context.Context) error {
	if g.conn != nil {
		return nil
	}

	c, err := g.dial(ctx, g.cfg.DSN())
	if err != nil {
		g.lastError = err
		return fmt.Errorf("%w: %v", domain.ErrConnectionFailed, err)
	}

	g.conn = c
	g.bootstrapped = false
	g.lastError = nil
	g.logger.WithFields(log.Fields{
		"host": g.cfg.Host,
		"db":   g.cfg.Name,
	}).Info("database connection established")
	return nil
}

// Probe проверяет живость соединения. Без соединения всегда false.
func (g *Gateway) Probe(ctx context.Context) bool {
	g.mu.Lock()
	c := g.conn
	g.mu.Unlock()

	if c == nil {
		return false
	}
	return c.Probe(ctx)
}

// Ensure гарантирует подключение и развёрнутую схему. Повторные вызовы
// на живом соединении ничего не делают.
func (g *Gateway) Ensure(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ensureLocked(ctx)
}

func (g *Gateway) ensureLocked(ctx context.Context) error {
	if err := g.connectLocked(ctx); err != nil {
		return err
	}
	if g.bootstrapped {
		return nil
	}

	if err := g.conn.Bootstrap(ctx); err != nil {
		// Полусхема опаснее отсутствия схемы, соединение сбрасываем.
		g.teardownLocked()
		g.lastError = err
		return err
	}

	g.bootstrapped = true
	g.logger.Info("database schema ensured")
	return nil
}

func (g *Gateway) teardownLocked() {
	if g.conn == nil {
		return
	}
	if err := g.conn.Close(); err != nil {
		g.logger.WithError(err).Warn("failed to close database connection")
	}
	g.conn = nil
	g.bootstrapped = false
}

// Store возвращает нижележащее postgres-хранилище для сборки
// репозиториев. Nil, пока соединение не установлено.
func (g *Gateway) Store() *postgres.Store {
	g.mu.Lock()
	defer g.mu.Unlock()

	store, ok := g.conn.(*postgres.Store)
	if !ok {
		return nil
	}
	return store
}

// Close разрывает соединение.
func (g *Gateway) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.teardownLocked()
}

// LastError возвращает последнюю ошибку подключения или бутстрапа.
func (g *Gateway) LastError() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastError
}

// Состояния сторожа EnsureOrFail.
type guardState int

const (
	stateProbing guardState = iota
	stateDisconnecting
	stateReconnecting
	stateVerifying
)

// EnsureOrFail проверяет соединение пробой и при её провале пересоздаёт
// соединение. Число переподключений ограничено cfg.MaxRetries, пауз между
// попытками нет. Исчерпав попытки, возвращает ErrProbeFailed.
func (g *Gateway) EnsureOrFail(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	attempts := 0
	state := stateProbing

	for {
		switch state {
		case stateProbing:
			if g.conn != nil && g.conn.Probe(ctx) {
				return g.ensureLocked(ctx)
			}
			g.metrics.RecordGatewayProbeFailure()
			state = stateDisconnecting

		case stateDisconnecting:
			g.teardownLocked()
			state = stateReconnecting

		case stateReconnecting:
			if attempts >= g.cfg.MaxRetries {
				err := fmt.Errorf("%w: connection lost after %d reconnect attempts", domain.ErrProbeFailed, attempts)
				g.lastError = err
				return err
			}
			attempts++
			g.metrics.RecordGatewayReconnect()
			g.logger.WithField("attempt", attempts).Warn("database probe failed, reconnecting")
			if err := g.connectLocked(ctx); err != nil {
				// Попытка не удалась, цикл вернёт нас сюда же.
				continue
			}
			state = stateVerifying

		case stateVerifying:
			if g.conn.Probe(ctx) {
				return g.ensureLocked(ctx)
			}
			g.metrics.RecordGatewayProbeFailure()
			state = stateDisconnecting
		}
	}
}
