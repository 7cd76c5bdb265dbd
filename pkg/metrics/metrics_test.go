package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestLedgerMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLedgerMetrics(reg)

	m.ObserveDuration("purchase", 120*time.Millisecond)
	m.IncSuccess("purchase")
	m.IncFailure("purchase", "INSUFFICIENT_INVENTORY")
	m.AddUnits("purchase", 3)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	byName := map[string]*dto.MetricFamily{}
	for _, fam := range families {
		byName[fam.GetName()] = fam
	}

	if fam, ok := byName["ledger_operation_success"]; !ok || fam.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatalf("expected one successful operation, got %+v", fam)
	}
	if fam, ok := byName["ledger_units_moved"]; !ok || fam.GetMetric()[0].GetCounter().GetValue() != 3 {
		t.Fatalf("expected 3 units moved, got %+v", fam)
	}
	if _, ok := byName["ledger_operation_duration_seconds"]; !ok {
		t.Fatal("expected duration histogram to be registered")
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	m := NewLedgerMetrics(nil)
	m.IncSuccess("purchase")
	m.IncFailure("refund", "SUPPLY_EXCEEDED")
	m.AddUnits("refund", 1)
	m.ObserveDuration("withdrawal", time.Second)
}

func TestNormalizeLabel(t *testing.T) {
	if normalizeLabel("") != "unknown" {
		t.Fatal("expected empty label to normalize to unknown")
	}
	if normalizeLabel("purchase") != "purchase" {
		t.Fatal("expected non-empty label to pass through")
	}
}
