package observability

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Gateway call statuses.
const (
	StatusSuccess   = "success"
	StatusFailure   = "failure"
	StatusCancelled = "cancelled"
)

// GatewayMetrics exposes Prometheus collectors for remote backend calls.
type GatewayMetrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var (
	defaultOnce    sync.Once
	defaultGateway *GatewayMetrics
)

// NewGatewayMetrics registers the gateway metrics against registerer. A nil registerer
// uses the default Prometheus registerer, registered once per process.
func NewGatewayMetrics(registerer prometheus.Registerer) *GatewayMetrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultGateway = buildGatewayMetrics(prometheus.DefaultRegisterer)
		})
		return defaultGateway
	}
	return buildGatewayMetrics(registerer)
}

// Tracker instruments a single gateway call.
type Tracker struct {
	metrics *GatewayMetrics
	op      string
	start   time.Time
}

// Track starts a tracker for op.
func (m *GatewayMetrics) Track(op string) *Tracker {
	return &Tracker{metrics: m, op: op, start: time.Now()}
}

// End records duration and outcome and returns err untouched.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil || t.op == "" {
		return err
	}
	status := StatusSuccess
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = StatusCancelled
	case err != nil:
		status = StatusFailure
	}
	t.metrics.calls.WithLabelValues(t.op, status).Inc()
	t.metrics.duration.WithLabelValues(t.op).Observe(time.Since(t.start).Seconds())
	return err
}

func buildGatewayMetrics(registerer prometheus.Registerer) *GatewayMetrics {
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_gateway_calls_total",
		Help: "Remote backend calls partitioned by operation and status.",
	}, []string{"op", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "console_gateway_call_duration_seconds",
		Help:    "Duration in seconds of remote backend calls.",
		Buckets: []float64{.05, .1, .25, .5, .75, 1, 2, 5},
	}, []string{"op"})
	registerer.MustRegister(calls, duration)
	return &GatewayMetrics{calls: calls, duration: duration}
}
