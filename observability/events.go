package observability

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"woofi/core/types"
)

const donationEventType = "woofi.donation.made"

type eventMetrics struct {
	emitted *prometheus.CounterVec
	donated prometheus.Counter
}

var (
	eventMetricsOnce sync.Once
	eventRegistry    *eventMetrics
)

// Events returns the metrics registry tracking committed ledger events.
func Events() *eventMetrics {
	eventMetricsOnce.Do(func() {
		eventRegistry = &eventMetrics{
			emitted: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "woofi",
				Subsystem: "events",
				Name:      "emitted_total",
				Help:      "Count of committed events segmented by type.",
			}, []string{"type"}),
			donated: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "woofi",
				Subsystem: "events",
				Name:      "donated_amount_total",
				Help:      "Sum of native currency donated through committed donations.",
			}),
		}
		prometheus.MustRegister(eventRegistry.emitted, eventRegistry.donated)
	})
	return eventRegistry
}

// RecordEvent counts one committed event. Donation events also add their
// amount attribute to the donated total.
func (m *eventMetrics) RecordEvent(evt *types.Event) {
	if m == nil || evt == nil {
		return
	}
	normalized := strings.TrimSpace(strings.ToLower(evt.Type))
	if normalized == "" {
		normalized = "unknown"
	}
	m.emitted.WithLabelValues(normalized).Inc()
	if normalized != donationEventType {
		return
	}
	if amount, ok := evt.Uint("amount"); ok {
		m.donated.Add(float64(amount))
	}
}
