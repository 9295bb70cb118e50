package ipc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels beyond the three response statuses.
const (
	outcomeFailed    = "failed"
	outcomeCancelled = "cancelled"
)

// Metrics records request outcomes and latency for a Channel.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the channel collectors with reg. A nil reg uses the
// default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lens",
			Subsystem: "ipc",
			Name:      "requests_total",
			Help:      "IPC requests by type and outcome",
		}, []string{"type", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lens",
			Subsystem: "ipc",
			Name:      "request_duration_seconds",
			Help:      "Time from request write to resolution",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"type"}),
	}
}

func (m *Metrics) observe(reqType, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(reqType, status).Inc()
	m.duration.WithLabelValues(reqType).Observe(elapsed.Seconds())
}
