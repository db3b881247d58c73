package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics records ledger activity. All methods are nil-safe so services
// can run without a registry wired (tests, one-off CLIs).
type LedgerMetrics struct {
	transactions *prometheus.CounterVec
	reversals    prometheus.Counter
	drift        *prometheus.GaugeVec
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	transactions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_transactions_total",
		Help: "Ledger transactions applied, by type and balance type.",
	}, []string{"type", "balance_type"})
	reversals := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_reversals_total",
		Help: "Reversal transactions created.",
	})
	drift := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ledger_balance_drift",
		Help: "Cached-minus-computed balance drift observed during reconciliation.",
	}, []string{"balance_type"})
	reg.MustRegister(transactions, reversals, drift)
	return &LedgerMetrics{
		transactions: transactions,
		reversals:    reversals,
		drift:        drift,
	}
}

// IncTransaction counts an applied transaction.
func (m *LedgerMetrics) IncTransaction(txType, balanceType string) {
	if m == nil || m.transactions == nil {
		return
	}
	m.transactions.WithLabelValues(normalizeLabel(txType), normalizeLabel(balanceType)).Inc()
}

// IncReversal counts a reversal.
func (m *LedgerMetrics) IncReversal() {
	if m == nil || m.reversals == nil {
		return
	}
	m.reversals.Inc()
}

// ObserveDrift records the reconciliation drift for a balance type.
func (m *LedgerMetrics) ObserveDrift(balanceType string, drift float64) {
	if m == nil || m.drift == nil {
		return
	}
	m.drift.WithLabelValues(normalizeLabel(balanceType)).Set(drift)
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
