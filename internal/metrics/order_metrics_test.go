package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestNewOrderMetricsWithRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetricsWithRegisterer(reg)

	if m.usecaseTotal == nil || m.usecaseDuration == nil || m.gatewayDuration == nil {
		t.Fatal("vector collectors should not be nil")
	}
	if m.ordersCreated == nil || m.timelineEvents == nil || m.outboxEvents == nil {
		t.Fatal("counters should not be nil")
	}
}

func TestNewOrderMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewOrderMetricsWithRegisterer(reg)
	second := NewOrderMetricsWithRegisterer(reg)

	first.RecordOrderCreated()
	second.RecordOrderCreated()

	if got := counterValue(t, first.ordersCreated); got != 2 {
		t.Fatalf("expected shared counter value 2, got %v", got)
	}
}

func TestObserveUseCase(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetricsWithRegisterer(reg)

	m.ObserveUseCase("create_order", "", 10*time.Millisecond)
	m.ObserveUseCase("create_order", "not_found", 5*time.Millisecond)
	m.ObserveUseCase("create_order", "not_found", 5*time.Millisecond)

	if got := counterValue(t, m.usecaseTotal.WithLabelValues("create_order", "ok")); got != 1 {
		t.Fatalf("expected 1 ok, got %v", got)
	}
	if got := counterValue(t, m.usecaseTotal.WithLabelValues("create_order", "not_found")); got != 2 {
		t.Fatalf("expected 2 not_found, got %v", got)
	}
	if got := counterValue(t, m.ordersCreated); got != 1 {
		t.Fatalf("expected 1 created order, got %v", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var found bool
	for _, f := range families {
		if f.GetName() == "order_usecase_duration_seconds" {
			found = true
			if got := f.GetMetric()[0].GetHistogram().GetSampleCount(); got != 3 {
				t.Fatalf("expected 3 samples, got %d", got)
			}
		}
	}
	if !found {
		t.Fatal("duration histogram not gathered")
	}
}

func TestEventCounters(t *testing.T) {
	m := NewOrderMetricsWithRegisterer(prometheus.NewRegistry())

	m.RecordTimelineEvent()
	m.RecordOutboxEvent()
	m.RecordOutboxEvent()
	m.RecordConsumedEvent("kafka", "ok")
	m.ObserveGatewayCall("customers", "ok", time.Millisecond)

	if got := counterValue(t, m.timelineEvents); got != 1 {
		t.Fatalf("timeline events = %v", got)
	}
	if got := counterValue(t, m.outboxEvents); got != 2 {
		t.Fatalf("outbox events = %v", got)
	}
	if got := counterValue(t, m.consumedEvents.WithLabelValues("kafka", "ok")); got != 1 {
		t.Fatalf("consumed events = %v", got)
	}
}
