// Package metrics exposes connection manager counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Connection attempt results.
const (
	ResultSuccess     = "success"
	ResultUnsupported = "unsupported_chain"
	ResultError       = "error"
)

// Metrics holds the manager's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	connects     *prometheus.CounterVec
	transactions *prometheus.CounterVec
	chainChanges prometheus.Counter
	unsupported  *prometheus.CounterVec
	connected    prometheus.Gauge
	pending      prometheus.Gauge
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		connects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "w3link_connect_attempts_total",
			Help: "Connection sequences by provider kind and result.",
		}, []string{"provider", "result"}),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "w3link_transactions_submitted_total",
			Help: "Transactions handed to the write client, by kind and outcome.",
		}, []string{"kind", "result"}),
		chainChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "w3link_chain_changes_total",
			Help: "Chain or network switches reported by the provider.",
		}),
		unsupported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "w3link_unsupported_chain_total",
			Help: "Chain validations that failed, by chain id.",
		}, []string{"chain_id"}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "w3link_connected",
			Help: "1 while a wallet is connected.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "w3link_pending_transactions",
			Help: "Transaction hashes awaiting a receipt.",
		}),
	}
	m.registry.MustRegister(m.connects, m.transactions, m.chainChanges, m.unsupported, m.connected, m.pending)
	return m
}

// Registry exposes the underlying registry, e.g. for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ConnectAttempt(provider, result string) {
	if m == nil {
		return
	}
	m.connects.WithLabelValues(provider, result).Inc()
}

func (m *Metrics) TransactionSubmitted(kind string, err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.transactions.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) ChainChanged() {
	if m == nil {
		return
	}
	m.chainChanges.Inc()
}

func (m *Metrics) UnsupportedChain(chainID string) {
	if m == nil {
		return
	}
	m.unsupported.WithLabelValues(chainID).Inc()
}

func (m *Metrics) SetConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.connected.Set(1)
	} else {
		m.connected.Set(0)
	}
}

func (m *Metrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(n))
}
