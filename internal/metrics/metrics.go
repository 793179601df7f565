/**
 * Recovery Metrics
 *
 * Prometheus instrumentation for the error handling pipeline. The
 * collector subscribes to the error event stream and exposes counters
 * and histograms keyed by error kind, severity, and strategy.
 *
 * Author: Roshni Games Team
 * Created: 2026-08-18
 */

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roshni-games/resilience/internal/events"
)

// Collector holds the prometheus instruments for the recovery pipeline.
type Collector struct {
	registry *prometheus.Registry

	errorsTotal     *prometheus.CounterVec
	recoveriesTotal *prometheus.CounterVec
	attempts        *prometheus.HistogramVec

	bus *events.Bus
}

// subscriber name on the event bus.
const subName = "metrics"

// NewCollector creates a collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "resilience",
				Name:      "errors_total",
				Help:      "Classified errors entering the recovery pipeline.",
			},
			[]string{"kind", "severity", "component"},
		),
		recoveriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "resilience",
				Name:      "recoveries_total",
				Help:      "Recovery outcomes by strategy and result.",
			},
			[]string{"strategy", "result"},
		),
		attempts: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "resilience",
				Name:      "recovery_attempts",
				Help:      "Operation invocations consumed per recovery.",
				Buckets:   []float64{1, 2, 3, 4, 5, 8, 10},
			},
			[]string{"strategy"},
		),
	}

	c.registry.MustRegister(c.errorsTotal, c.recoveriesTotal, c.attempts)
	return c
}

// Attach subscribes the collector to the event stream. Call Detach to
// stop observing.
func (c *Collector) Attach(bus *events.Bus) {
	c.bus = bus
	bus.SubscribeFunc(subName, c.observe)
}

// Detach unsubscribes the collector from the event stream.
func (c *Collector) Detach() {
	if c.bus != nil {
		c.bus.Unsubscribe(subName)
		c.bus = nil
	}
}

// observe records one error event.
func (c *Collector) observe(ev events.ErrorEvent) {
	if ev.Error != nil {
		component := ""
		if ev.Context != nil {
			component = ev.Context.Component
		}
		c.errorsTotal.WithLabelValues(
			ev.Error.Kind.String(),
			ev.Error.Severity.String(),
			component,
		).Inc()
	}

	if ev.Outcome == nil {
		return
	}

	strategy := ev.Outcome.Strategy
	if strategy == "" {
		strategy = "none"
	}

	result := "failure"
	if ev.Outcome.Success {
		result = "success"
	}

	c.recoveriesTotal.WithLabelValues(strategy, result).Inc()
	c.attempts.WithLabelValues(strategy).Observe(float64(ev.Outcome.Attempts))
}

// Handler returns an HTTP handler exposing the metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for test scraping.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
