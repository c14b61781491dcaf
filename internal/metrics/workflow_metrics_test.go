package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewWorkflowMetrics(t *testing.T) {
	metrics := newWorkflowMetricsWithRegisterer(prometheus.NewRegistry())

	if metrics == nil {
		t.Fatal("newWorkflowMetricsWithRegisterer should not return nil")
	}

	if metrics.paymentEdits == nil {
		t.Error("paymentEdits counter should not be nil")
	}

	if metrics.terminations == nil {
		t.Error("terminations counter should not be nil")
	}

	if metrics.deliveries == nil {
		t.Error("deliveries counter should not be nil")
	}

	if metrics.closureRequests == nil {
		t.Error("closureRequests counter should not be nil")
	}

	if metrics.authFailures == nil {
		t.Error("authFailures counter should not be nil")
	}

	if metrics.gatewayReconnects == nil {
		t.Error("gatewayReconnects counter should not be nil")
	}

	if metrics.gatewayProbeFailures == nil {
		t.Error("gatewayProbeFailures counter should not be nil")
	}

	if metrics.opDuration == nil {
		t.Error("opDuration histogram vec should not be nil")
	}

	if metrics.activeSessions == nil {
		t.Error("activeSessions gauge should not be nil")
	}
}

func TestNewWorkflowMetrics_RegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := newWorkflowMetricsWithRegisterer(reg)
	second := newWorkflowMetricsWithRegisterer(reg)

	// Повторная регистрация должна вернуть уже существующие коллекторы.
	if first.paymentEdits != second.paymentEdits {
		t.Error("repeated registration must reuse the existing counter")
	}
}

func TestRecordPaymentEditAndTermination(t *testing.T) {
	metrics := newWorkflowMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordPaymentEdit()
	metrics.RecordPaymentEdit()
	metrics.RecordTermination()

	metric := &dto.Metric{}
	if err := metrics.paymentEdits.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected payment edits 2.0, got %f", metric.Counter.GetValue())
	}

	metric = &dto.Metric{}
	if err := metrics.terminations.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1.0 {
		t.Errorf("expected terminations 1.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordOpDuration(t *testing.T) {
	metrics := newWorkflowMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordOpDuration("payment_edit", 100*time.Millisecond)
	metrics.RecordOpDuration("payment_edit", 500*time.Millisecond)
	metrics.RecordOpDuration("delivery", 50*time.Millisecond)

	observer := metrics.opDuration.WithLabelValues("payment_edit")
	metric := &dto.Metric{}
	if err := observer.(prometheus.Histogram).Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if metric.Histogram.GetSampleCount() != 2 {
		t.Errorf("expected 2 samples for payment_edit, got %d", metric.Histogram.GetSampleCount())
	}

	// Сумма примерно 0.1 + 0.5 = 0.6
	sum := metric.Histogram.GetSampleSum()
	if sum < 0.55 || sum > 0.65 {
		t.Errorf("expected sum around 0.6, got %f", sum)
	}
}

func TestSessionLifecycle(t *testing.T) {
	metrics := newWorkflowMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.SessionOpened()
	metrics.SessionOpened()
	metrics.SessionOpened()
	metrics.SessionClosed()

	metric := &dto.Metric{}
	if err := metrics.activeSessions.Write(metric); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}

	if metric.Gauge.GetValue() != 2.0 {
		t.Errorf("expected 2 active sessions, got %f", metric.Gauge.GetValue())
	}
}

func TestNilReceiverIsNoop(t *testing.T) {
	// Метрики опциональны, nil-получатель не должен паниковать.
	var metrics *WorkflowMetrics

	metrics.RecordPaymentEdit()
	metrics.RecordTermination()
	metrics.RecordDelivery()
	metrics.RecordClosureRequest()
	metrics.RecordAuthFailure()
	metrics.RecordGatewayReconnect()
	metrics.RecordGatewayProbeFailure()
	metrics.RecordOpDuration("noop", time.Millisecond)
	metrics.SessionOpened()
	metrics.SessionClosed()
}
