package observability

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetricsRegistry tracks applied ledger transactions.
type LedgerMetricsRegistry struct {
	txs     *prometheus.CounterVec
	latency *prometheus.HistogramVec
	height  prometheus.Counter
}

type rpcMetrics struct {
	requests  *prometheus.CounterVec
	errors    *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	throttles *prometheus.CounterVec
}

var (
	ledgerMetricsOnce sync.Once
	ledgerRegistry    *LedgerMetricsRegistry

	rpcMetricsOnce sync.Once
	rpcRegistry    *rpcMetrics
)

// LedgerMetrics returns the lazily-initialised ledger transaction metrics.
func LedgerMetrics() *LedgerMetricsRegistry {
	ledgerMetricsOnce.Do(func() {
		ledgerRegistry = &LedgerMetricsRegistry{
			txs: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "woofi",
				Subsystem: "ledger",
				Name:      "tx_total",
				Help:      "Total ledger transactions segmented by type and outcome.",
			}, []string{"type", "outcome"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "woofi",
				Subsystem: "ledger",
				Name:      "tx_duration_seconds",
				Help:      "Latency distribution for applying ledger transactions.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"type"}),
			height: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "woofi",
				Subsystem: "ledger",
				Name:      "commits_total",
				Help:      "Count of committed state roots.",
			}),
		}
		prometheus.MustRegister(ledgerRegistry.txs, ledgerRegistry.latency, ledgerRegistry.height)
	})
	return ledgerRegistry
}

// ObserveTx records the outcome and latency of one transaction. Outcome
// should be a stable string such as "success", "rejected" or "error".
func (m *LedgerMetricsRegistry) ObserveTx(txType, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	if txType == "" {
		txType = "unknown"
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.txs.WithLabelValues(txType, outcome).Inc()
	m.latency.WithLabelValues(txType).Observe(duration.Seconds())
	if outcome == "success" {
		m.height.Inc()
	}
}

// RPCMetrics returns the lazily-initialised registry used to record JSON-RPC
// activity.
func RPCMetrics() *rpcMetrics {
	rpcMetricsOnce.Do(func() {
		rpcRegistry = &rpcMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "woofi",
				Subsystem: "rpc",
				Name:      "requests_total",
				Help:      "Total JSON-RPC requests segmented by method and outcome.",
			}, []string{"method", "outcome"}),
			errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "woofi",
				Subsystem: "rpc",
				Name:      "errors_total",
				Help:      "Total JSON-RPC errors segmented by method and status code.",
			}, []string{"method", "status"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "woofi",
				Subsystem: "rpc",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for JSON-RPC handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method"}),
			throttles: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "woofi",
				Subsystem: "rpc",
				Name:      "throttles_total",
				Help:      "Count of requests rejected due to throttling policies.",
			}, []string{"reason"}),
		}
		prometheus.MustRegister(
			rpcRegistry.requests,
			rpcRegistry.errors,
			rpcRegistry.latency,
			rpcRegistry.throttles,
		)
	})
	return rpcRegistry
}

// Observe records the outcome of a request. The status code should be the
// HTTP status that was ultimately written to the response writer.
func (m *rpcMetrics) Observe(method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "unknown"
	}
	outcome := "success"
	if status >= 400 {
		outcome = "error"
	}
	m.requests.WithLabelValues(method, outcome).Inc()
	if status >= 400 {
		m.errors.WithLabelValues(method, fmt.Sprintf("%d", status)).Inc()
	}
	m.latency.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordThrottle increments the throttle counter. Reasons should be stable
// strings such as "rate_limit".
func (m *rpcMetrics) RecordThrottle(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "unspecified"
	}
	m.throttles.WithLabelValues(reason).Inc()
}
