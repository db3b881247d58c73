package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestLedgerMetricsExports(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewLedgerMetrics(reg)

	metrics.IncTransaction("deposit", "lunch")
	metrics.IncTransaction("deposit", "lunch")
	metrics.IncReversal()
	metrics.ObserveDrift("lunch", 12.5)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "ledger_transactions_total", "type", "deposit"); err != nil {
		t.Fatalf("fetch transactions: %v", err)
	} else if got != 2 {
		t.Fatalf("expected transactions=2, got %f", got)
	}

	if got, err := fetchGaugeValue(mfs, "ledger_balance_drift", "balance_type", "lunch"); err != nil {
		t.Fatalf("fetch drift: %v", err)
	} else if got != 12.5 {
		t.Fatalf("expected drift=12.5, got %f", got)
	}
}

func TestLedgerMetricsNilSafe(t *testing.T) {
	var metrics *LedgerMetrics
	metrics.IncTransaction("deposit", "lunch")
	metrics.IncReversal()
	metrics.ObserveDrift("lunch", 1)

	empty := NewLedgerMetrics(nil)
	empty.IncTransaction("deposit", "lunch")
	empty.IncReversal()
	empty.ObserveDrift("lunch", 1)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, labelName, labelValue string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == labelName && lp.GetValue() == labelValue {
					return m.GetCounter().GetValue(), nil
				}
			}
		}
	}
	return 0, fmt.Errorf("metric %s{%s=%q} not found", name, labelName, labelValue)
}

func fetchGaugeValue(mfs []*dto.MetricFamily, name, labelName, labelValue string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == labelName && lp.GetValue() == labelValue {
					return m.GetGauge().GetValue(), nil
				}
			}
		}
	}
	return 0, fmt.Errorf("metric %s{%s=%q} not found", name, labelName, labelValue)
}
