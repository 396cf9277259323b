package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewOrderMetrics(t *testing.T) {
	metrics := newOrderMetricsWithRegisterer(prometheus.NewRegistry())

	if metrics == nil {
		t.Fatal("newOrderMetricsWithRegisterer should not return nil")
	}

	if metrics.ordersCreated == nil {
		t.Error("ordersCreated counter should not be nil")
	}
	if metrics.ordersConfirmed == nil {
		t.Error("ordersConfirmed counter should not be nil")
	}
	if metrics.ordersCanceled == nil {
		t.Error("ordersCanceled counter should not be nil")
	}
	if metrics.versionConflicts == nil {
		t.Error("versionConflicts counter should not be nil")
	}
	if metrics.retriesExhausted == nil {
		t.Error("retriesExhausted counter should not be nil")
	}
	if metrics.confirmDuration == nil {
		t.Error("confirmDuration histogram should not be nil")
	}
	if metrics.attemptsPerOp == nil {
		t.Error("attemptsPerOp histogram vec should not be nil")
	}
	if metrics.inFlightOps == nil {
		t.Error("inFlightOps gauge should not be nil")
	}
}

func TestNewOrderMetrics_RegisterTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := newOrderMetricsWithRegisterer(reg)
	second := newOrderMetricsWithRegisterer(reg)

	first.RecordOrderCreated()
	second.RecordOrderCreated()

	metric := &dto.Metric{}
	if err := first.ordersCreated.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected shared counter value 2.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordConflictCounters(t *testing.T) {
	metrics := newOrderMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordVersionConflict()
	metrics.RecordVersionConflict()
	metrics.RecordRetryExhausted()

	conflictMetric := &dto.Metric{}
	if err := metrics.versionConflicts.Write(conflictMetric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if conflictMetric.Counter.GetValue() != 2.0 {
		t.Errorf("expected 2 version conflicts, got %f", conflictMetric.Counter.GetValue())
	}

	exhaustedMetric := &dto.Metric{}
	if err := metrics.retriesExhausted.Write(exhaustedMetric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if exhaustedMetric.Counter.GetValue() != 1.0 {
		t.Errorf("expected 1 exhausted retry, got %f", exhaustedMetric.Counter.GetValue())
	}
}

func TestRecordConfirmDuration(t *testing.T) {
	metrics := newOrderMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordConfirmDuration(100 * time.Millisecond)
	metrics.RecordConfirmDuration(500 * time.Millisecond)
	metrics.RecordConfirmDuration(1 * time.Second)

	metric := &dto.Metric{}
	if err := metrics.confirmDuration.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if metric.Histogram.GetSampleCount() != 3 {
		t.Errorf("expected 3 samples, got %d", metric.Histogram.GetSampleCount())
	}

	// Проверяем приблизительную сумму (0.1 + 0.5 + 1.0 = 1.6)
	sum := metric.Histogram.GetSampleSum()
	if sum < 1.5 || sum > 1.7 {
		t.Errorf("expected sum around 1.6, got %f", sum)
	}
}

func TestRecordAttempts(t *testing.T) {
	metrics := newOrderMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordAttempts("confirm", 1)
	metrics.RecordAttempts("confirm", 3)
	metrics.RecordAttempts("cancel", 1)

	observer := metrics.attemptsPerOp.WithLabelValues("confirm")
	metric := &dto.Metric{}
	if err := observer.(prometheus.Histogram).Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 2 {
		t.Errorf("expected 2 samples for confirm, got %d", metric.Histogram.GetSampleCount())
	}
}

func TestInFlightLifecycle(t *testing.T) {
	metrics := newOrderMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordOpStarted()
	metrics.RecordOpStarted()
	metrics.RecordOpFinished()

	gaugeMetric := &dto.Metric{}
	if err := metrics.inFlightOps.Write(gaugeMetric); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}
	if gaugeMetric.Gauge.GetValue() != 1.0 {
		t.Errorf("expected 1.0 in-flight operation, got %f", gaugeMetric.Gauge.GetValue())
	}
}
