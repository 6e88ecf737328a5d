// Package metrics exports wallet engine measurements as Prometheus metrics.
// A CLI process writes them to a node_exporter textfile on exit.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "dcrvault"

// Metrics records sync, fee and transaction events. It satisfies the
// recorder interfaces of the discovery and transaction packages.
type Metrics struct {
	registry *prometheus.Registry

	syncPercent      *prometheus.GaugeVec
	addressesDerived prometheus.Counter
	syncsCompleted   *prometheus.CounterVec
	syncFailures     *prometheus.CounterVec
	feeEstimates     prometheus.Histogram
	txsBuilt         *prometheus.CounterVec
	txInputs         prometheus.Histogram
	walletOps        *prometheus.CounterVec
}

// New creates a Metrics with its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		syncPercent: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "sync_percent",
			Help:      "Sync progress of a wallet, 0-100.",
		}, []string{"wallet"}),
		addressesDerived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "addresses_derived_total",
			Help:      "Candidate addresses derived by first syncs.",
		}),
		syncsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "syncs_completed_total",
			Help:      "Completed syncs by kind (full or refresh).",
		}, []string{"kind"}),
		syncFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "sync_failures_total",
			Help:      "Failed syncs by stage.",
		}, []string{"stage"}),
		feeEstimates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "fee_estimate_atoms",
			Help:      "Estimated transaction fees in atoms.",
			Buckets:   prometheus.ExponentialBuckets(500, 2, 10),
		}),
		txsBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "transactions_built_total",
			Help:      "Signed transactions built by kind.",
		}, []string{"kind"}),
		txInputs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "transaction_inputs",
			Help:      "Inputs per built transaction.",
			Buckets:   prometheus.LinearBuckets(1, 2, 10),
		}),
		walletOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "wallet_operations_total",
			Help:      "CLI wallet operations by command and result.",
		}, []string{"op", "result"}),
	}

	m.registry.MustRegister(
		m.syncPercent,
		m.addressesDerived,
		m.syncsCompleted,
		m.syncFailures,
		m.feeEstimates,
		m.txsBuilt,
		m.txInputs,
		m.walletOps,
	)
	return m
}

// Registry returns the registry holding every metric.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// SyncProgress records the latest persisted sync percentage of a wallet.
func (m *Metrics) SyncProgress(wallet string, percent float64) {
	m.syncPercent.WithLabelValues(wallet).Set(percent)
}

// AddressesDerived counts derived scan candidates.
func (m *Metrics) AddressesDerived(n int) {
	m.addressesDerived.Add(float64(n))
}

// SyncCompleted counts a finished sync.
func (m *Metrics) SyncCompleted(full bool) {
	kind := "refresh"
	if full {
		kind = "full"
	}
	m.syncsCompleted.WithLabelValues(kind).Inc()
}

// SyncFailed counts a sync that stopped at stage.
func (m *Metrics) SyncFailed(stage string) {
	m.syncFailures.WithLabelValues(stage).Inc()
}

// FeeEstimated observes an estimated fee.
func (m *Metrics) FeeEstimated(atoms int64) {
	m.feeEstimates.Observe(float64(atoms))
}

// TxBuilt counts a signed transaction and observes its input count.
func (m *Metrics) TxBuilt(kind string, inputs int) {
	m.txsBuilt.WithLabelValues(kind).Inc()
	m.txInputs.Observe(float64(inputs))
}

// RecordWalletOp records the outcome of a CLI operation.
func (m *Metrics) RecordWalletOp(op string, err error) {
	m.walletOps.WithLabelValues(op, strconv.FormatBool(err == nil)).Inc()
}

// WriteTextfile writes every metric to path in the node_exporter textfile
// format. An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
