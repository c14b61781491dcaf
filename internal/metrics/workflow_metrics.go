package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkflowMetrics содержит метрики жизненного цикла заказов и шлюза БД.
type WorkflowMetrics struct {
	// Счётчики операций над заказами
	paymentEdits    prometheus.Counter
	terminations    prometheus.Counter
	deliveries      prometheus.Counter
	closureRequests prometheus.Counter

	// Аутентификация
	authFailures prometheus.Counter

	// Шлюз БД
	gatewayReconnects    prometheus.Counter
	gatewayProbeFailures prometheus.Counter

	// Гистограмма времени выполнения операций
	opDuration *prometheus.HistogramVec

	// Gauge для активных сессий
	activeSessions prometheus.Gauge
}

// NewWorkflowMetrics создаёт новый экземпляр метрик workflow.
func NewWorkflowMetrics() *WorkflowMetrics {
	return newWorkflowMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newWorkflowMetricsWithRegisterer(registerer prometheus.Registerer) *WorkflowMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &WorkflowMetrics{
		paymentEdits: registerCounter(registerer, prometheus.CounterOpts{
			Name: "atelier_payment_edits_total",
			Help: "Total number of order payment edits applied",
		}),
		terminations: registerCounter(registerer, prometheus.CounterOpts{
			Name: "atelier_order_terminations_total",
			Help: "Total number of orders auto-terminated after full payment",
		}),
		deliveries: registerCounter(registerer, prometheus.CounterOpts{
			Name: "atelier_order_deliveries_total",
			Help: "Total number of orders validated as delivered and paid",
		}),
		closureRequests: registerCounter(registerer, prometheus.CounterOpts{
			Name: "atelier_closure_requests_total",
			Help: "Total number of closure requests recorded",
		}),
		authFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "atelier_auth_failures_total",
			Help: "Total number of rejected login attempts",
		}),
		gatewayReconnects: registerCounter(registerer, prometheus.CounterOpts{
			Name: "atelier_gateway_reconnects_total",
			Help: "Total number of database reconnect attempts",
		}),
		gatewayProbeFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "atelier_gateway_probe_failures_total",
			Help: "Total number of failed database liveness probes",
		}),
		opDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "atelier_workflow_op_duration_seconds",
			Help:    "Duration of workflow operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"op"}),
		activeSessions: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "atelier_active_sessions",
			Help: "Number of currently active user sessions",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordPaymentEdit увеличивает счётчик применённых правок оплаты.
func (m *WorkflowMetrics) RecordPaymentEdit() {
	if m == nil {
		return
	}
	m.paymentEdits.Inc()
}

// RecordTermination увеличивает счётчик авто-закрытых заказов.
func (m *WorkflowMetrics) RecordTermination() {
	if m == nil {
		return
	}
	m.terminations.Inc()
}

// RecordDelivery увеличивает счётчик выданных заказов.
func (m *WorkflowMetrics) RecordDelivery() {
	if m == nil {
		return
	}
	m.deliveries.Inc()
}

// RecordClosureRequest увеличивает счётчик просьб о закрытии.
func (m *WorkflowMetrics) RecordClosureRequest() {
	if m == nil {
		return
	}
	m.closureRequests.Inc()
}

// RecordAuthFailure увеличивает счётчик отклонённых попыток входа.
func (m *WorkflowMetrics) RecordAuthFailure() {
	if m == nil {
		return
	}
	m.authFailures.Inc()
}

// RecordGatewayReconnect увеличивает счётчик переподключений к БД.
func (m *WorkflowMetrics) RecordGatewayReconnect() {
	if m == nil {
		return
	}
	m.gatewayReconnects.Inc()
}

// RecordGatewayProbeFailure увеличивает счётчик неудачных проб БД.
func (m *WorkflowMetrics) RecordGatewayProbeFailure() {
	if m == nil {
		return
	}
	m.gatewayProbeFailures.Inc()
}

// RecordOpDuration записывает время выполнения операции workflow.
func (m *WorkflowMetrics) RecordOpDuration(op string, duration time.Duration) {
	if m == nil {
		return
	}
	m.opDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// SessionOpened увеличивает количество активных сессий.
func (m *WorkflowMetrics) SessionOpened() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
}

// SessionClosed уменьшает количество активных сессий.
func (m *WorkflowMetrics) SessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}
