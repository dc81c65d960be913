package observability

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewMetrics_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	if m.EventsPublishedTotal == nil {
		t.Fatal("EventsPublishedTotal should not be nil")
	}
	if m.DeliveriesTotal == nil {
		t.Fatal("DeliveriesTotal should not be nil")
	}
	if m.DeliveryLatency == nil {
		t.Fatal("DeliveryLatency should not be nil")
	}
	if m.ActiveSubscriptions == nil {
		t.Fatal("ActiveSubscriptions should not be nil")
	}
	if m.StickyEvents == nil {
		t.Fatal("StickyEvents should not be nil")
	}
	if m.PrefOpsTotal == nil {
		t.Fatal("PrefOpsTotal should not be nil")
	}
}

func TestRecordDelivery(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordDelivery("delivered", 0.5)
	m.RecordDelivery("delivered", 1.2)
	m.RecordDelivery("handler_error", 0.3)

	// Verify the counter vec has values by gathering.
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	found := false
	for _, f := range families {
		if f.GetName() == "pulse_deliveries_total" {
			found = true
			metrics := f.GetMetric()
			if len(metrics) != 2 { // delivered + handler_error
				t.Fatalf("expected 2 label combinations, got %d", len(metrics))
			}
		}
	}
	if !found {
		t.Fatal("pulse_deliveries_total metric not found")
	}
}

func TestEventsPublishedTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.EventsPublishedTotal.Inc()
	m.EventsPublishedTotal.Inc()
	m.EventsPublishedTotal.Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	for _, f := range families {
		if f.GetName() == "pulse_events_published_total" {
			metrics := f.GetMetric()
			if len(metrics) != 1 {
				t.Fatalf("expected 1 metric, got %d", len(metrics))
			}
			val := metrics[0].GetCounter().GetValue()
			if val != 3 {
				t.Fatalf("expected count 3, got %f", val)
			}
			return
		}
	}
	t.Fatal("pulse_events_published_total metric not found")
}

func TestGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ActiveSubscriptions.Set(42)
	m.StickyEvents.Set(7)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	gauges := map[string]float64{
		"pulse_active_subscriptions": 42,
		"pulse_sticky_events":        7,
	}

	for _, f := range families {
		expected, ok := gauges[f.GetName()]
		if !ok {
			continue
		}
		val := f.GetMetric()[0].GetGauge().GetValue()
		if val != expected {
			t.Fatalf("%s: expected %f, got %f", f.GetName(), expected, val)
		}
		delete(gauges, f.GetName())
	}

	if len(gauges) > 0 {
		t.Fatalf("metrics not found: %v", gauges)
	}
}

func TestRecordPrefOp(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordPrefOp("set", nil)
	m.RecordPrefOp("set", nil)
	m.RecordPrefOp("get", errors.New("boom"))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	for _, f := range families {
		if f.GetName() != "pulse_pref_ops_total" {
			continue
		}
		metrics := f.GetMetric()
		if len(metrics) != 2 { // set/ok + get/error
			t.Fatalf("expected 2 label combinations, got %d", len(metrics))
		}
		return
	}
	t.Fatal("pulse_pref_ops_total metric not found")
}
