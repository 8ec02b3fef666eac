package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/andrescamacho/helmsman/internal/engine"
)

const (
	namespace = "helmsman"
	subsystem = "engine"
)

// Collector implements engine.Metrics on a Prometheus registry.
type Collector struct {
	registry *prometheus.Registry

	eventsTotal   *prometheus.CounterVec
	eventDuration *prometheus.HistogramVec
	readyDepth    prometheus.Gauge
	deferredDepth prometheus.Gauge
}

// NewCollector creates and registers the engine metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "events_total",
				Help:      "Dispatched events by type, name and result",
			},
			[]string{"type", "name", "result"},
		),
		eventDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "event_duration_seconds",
				Help:      "Handler execution time by event type",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		readyDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ready_queue_depth",
			Help:      "Events waiting in the ready FIFO",
		}),
		deferredDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "deferred_queue_depth",
			Help:      "Events waiting for their scheduled time",
		}),
	}

	c.registry.MustRegister(c.eventsTotal, c.eventDuration, c.readyDepth, c.deferredDepth)
	return c
}

// EventDispatched records one handler completion.
func (c *Collector) EventDispatched(eventType, name string, result engine.Result, duration time.Duration) {
	c.eventsTotal.WithLabelValues(eventType, name, string(result)).Inc()
	c.eventDuration.WithLabelValues(eventType).Observe(duration.Seconds())
}

// QueueDepth records the queue gauges.
func (c *Collector) QueueDepth(ready, scheduled int) {
	c.readyDepth.Set(float64(ready))
	c.deferredDepth.Set(float64(scheduled))
}

// Serve exposes /metrics on the given address. Runs until the process
// exits; meant to be started on its own goroutine.
func (c *Collector) Serve(address string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))

	log.Info("metrics server listening", zap.String("address", address))
	if err := http.ListenAndServe(address, mux); err != nil {
		log.Error("metrics server stopped", zap.Error(err))
	}
}
