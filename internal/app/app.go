package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/spiritstitch/atelier/internal/domain"
	"github.com/spiritstitch/atelier/internal/gateway"
	healthcheck "github.com/spiritstitch/atelier/internal/health"
	"github.com/spiritstitch/atelier/internal/messaging/kafka"
	"github.com/spiritstitch/atelier/internal/metrics"
	"github.com/spiritstitch/atelier/internal/service/auth"
	"github.com/spiritstitch/atelier/internal/service/workflow"
	"github.com/spiritstitch/atelier/internal/session"
	"github.com/spiritstitch/atelier/internal/storage/memory"
	"github.com/spiritstitch/atelier/internal/storage/postgres"
	apphttp "github.com/spiritstitch/atelier/internal/transport/http"
	"github.com/spiritstitch/atelier/internal/version"
)

// Режимы хранилища.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr     string
	MetricsAddr  string
	JWTSecret    string
	TokenTTL     time.Duration
	Storage      string
	KafkaBrokers []string
}

// DefaultConfig возвращает базовые адреса и параметры.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:    ":8080",
		MetricsAddr: ":9090",
		TokenTTL:    time.Hour,
		Storage:     StoragePostgres,
	}
}

// repos — собранный набор репозиториев поверх выбранного хранилища.
type repos struct {
	orders   domain.OrderLedger
	closures domain.ClosureLedger
	actors   domain.ActorRepository
	charges  domain.ChargeRepository
}

func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")
	workflowMetrics := metrics.NewWorkflowMetrics()

	if cfg.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required (STITCH_JWT_SECRET)")
	}

	// Хранилище: postgres через шлюз либо память для локальной разработки.
	var (
		storage repos
		gw      *gateway.Gateway
	)
	switch cfg.Storage {
	case StorageMemory:
		logger.Warn("using in-memory storage, data will not survive a restart")
		storage = repos{
			orders:   memory.NewOrderLedger(),
			closures: memory.NewClosureLedger(),
			actors:   memory.NewActorRepository(),
			charges:  memory.NewChargeRepository(),
		}
	default:
		gwCfg, err := gateway.LoadConfig()
		if err != nil {
			return err
		}
		gw = gateway.New(gwCfg, logger, workflowMetrics)
		if err := gw.EnsureOrFail(ctx); err != nil {
			return err
		}
		defer gw.Close()

		store := gw.Store()
		storage = repos{
			orders:   postgres.NewOrderLedger(store),
			closures: postgres.NewClosureLedger(store),
			actors:   postgres.NewActorRepository(store),
			charges:  postgres.NewChargeRepository(store),
		}
	}

	// Kafka producer (опционально)
	var publisher domain.EventPublisher
	var kafkaProducer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		} else {
			kafkaProducer = producer
			publisher = producer
			logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer initialized")
		}
	}

	sessions := session.NewManager(workflowMetrics)
	authSvc := auth.NewService(storage.actors, logger, workflowMetrics)
	ctrl := workflow.NewController(storage.orders, storage.closures, publisher, logger, workflowMetrics)

	// HTTP health checks
	healthHandler := healthcheck.NewHandler(version.GetVersion())
	if gw != nil {
		healthHandler.RegisterChecker("postgres", healthcheck.NewProbeChecker("postgres", gw.Probe))
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	app := fiber.New(fiber.Config{
		AppName:               "spiritstitch",
		DisableStartupMessage: true,
	})
	apphttp.Router(app, apphttp.RouterDeps{
		Auth:      authSvc,
		Workflow:  ctrl,
		Charges:   storage.charges,
		Sessions:  sessions,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", cfg.HTTPAddr)
		errCh <- app.Listen(cfg.HTTPAddr)
	}()

	shutdown := func() {
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			logger.WithError(err).Warn("http shutdown with error")
		}
		shutdownHTTP(metricsSrv, logger)

		if kafkaProducer != nil {
			if err := kafkaProducer.Close(); err != nil {
				logger.WithError(err).Warn("failed to close kafka producer")
			} else {
				logger.Info("kafka producer closed")
			}
		}
	}

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdown()
		return ctx.Err()
	case err := <-errCh:
		shutdown()
		return err
	}
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
