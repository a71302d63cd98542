package symcheck

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// observer emits a log line and, when a registry is configured, metric
// samples for every client operation.
type observer struct {
	logger  *slog.Logger
	metrics *clientMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	obs := &observer{logger: logger}
	if reg != nil {
		m, err := newClientMetrics(reg)
		if err != nil {
			return nil, err
		}
		obs.metrics = m
	}
	return obs, nil
}

// observe is deferred by every client method; a nil receiver and a nil
// logger are both no-ops.
func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	elapsed := time.Since(start)
	status := "ok"
	if err != nil {
		status = "error"
	}

	if o.metrics != nil {
		o.metrics.ops.WithLabelValues(op, status).Inc()
		o.metrics.latency.WithLabelValues(op).Observe(elapsed.Seconds())
	}

	if o.logger == nil {
		return
	}
	if err != nil {
		o.logger.Warn("operation failed", "op", op, "duration", elapsed, "error", err)
		return
	}
	o.logger.Debug("operation completed", "op", op, "duration", elapsed)
}

type clientMetrics struct {
	ops     *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

func newClientMetrics(reg prometheus.Registerer) (*clientMetrics, error) {
	m := &clientMetrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "symcheck",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Client operations by name and outcome.",
		}, []string{"operation", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "symcheck",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "Client operation latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if err := registerOrGet(reg, &m.ops); err != nil {
		return nil, err
	}
	if err := registerOrGet(reg, &m.latency); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrGet registers c, or swaps in the collector a previous client
// already registered on the same registry.
func registerOrGet[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("symcheck: register sdk metrics: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("symcheck: collector %T already registered with a different type", are.ExistingCollector)
	}
	*c = existing
	return nil
}
