package relay

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type relayMetrics struct {
	submissions *prometheus.CounterVec
	dispatch    prometheus.Observer
	logoBytes   prometheus.Observer
}

var (
	relayMetricsOnce sync.Once
	relayMetricsInst *relayMetrics
)

func globalRelayMetrics() *relayMetrics {
	relayMetricsOnce.Do(func() {
		relayMetricsInst = newRelayMetrics()
	})
	return relayMetricsInst
}

func newRelayMetrics() *relayMetrics {
	return &relayMetrics{
		submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plugin_creator",
			Subsystem: "relay",
			Name:      "submissions_total",
			Help:      "Plugin submissions handled by the relay, labeled by outcome",
		}, []string{"outcome"}),
		dispatch: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "plugin_creator",
			Subsystem: "relay",
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent handing notifications to the mail transport",
			Buckets:   prometheus.DefBuckets,
		}),
		logoBytes: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "plugin_creator",
			Subsystem: "relay",
			Name:      "logo_size_bytes",
			Help:      "Size of logo attachments carried on submissions",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}),
	}
}

func (m *relayMetrics) startDispatch() func() {
	if m == nil {
		return func() {}
	}
	timer := prometheus.NewTimer(m.dispatch)
	return func() {
		timer.ObserveDuration()
	}
}

func (m *relayMetrics) recordOutcome(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *relayMetrics) recordLogo(size int) {
	if m == nil {
		return
	}
	m.logoBytes.Observe(float64(size))
}
