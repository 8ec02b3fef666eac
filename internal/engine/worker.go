package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/andrescamacho/helmsman/internal/domain/shared"
)

const (
	// DefaultEmptyTimeout bounds Get so the worker can keep promoting
	// deferred events while the ready queue is idle.
	DefaultEmptyTimeout = 600 * time.Millisecond

	// DefaultPace is slept after each successful remote action to stay
	// under the ~2 req/s server limit.
	DefaultPace = 550 * time.Millisecond
)

// Metrics observes worker activity. Implemented by the prometheus adapter;
// NopMetrics is used when metrics are disabled.
type Metrics interface {
	EventDispatched(eventType, name string, result Result, duration time.Duration)
	QueueDepth(ready, scheduled int)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) EventDispatched(string, string, Result, time.Duration) {}
func (NopMetrics) QueueDepth(int, int)                                   {}

// Worker is the single cooperative consumer of the event queue. Only one
// worker runs per process; the handler path is serial by design.
type Worker struct {
	queue    *EventQueue
	registry *Registry
	clock    shared.Clock
	metrics  Metrics
	log      *zap.Logger

	emptyTimeout time.Duration
	pace         time.Duration
}

// NewWorker wires a worker to its queue and dispatch table. A nil metrics
// collector disables observation.
func NewWorker(queue *EventQueue, registry *Registry, clock shared.Clock, metrics Metrics, log *zap.Logger) *Worker {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Worker{
		queue:        queue,
		registry:     registry,
		clock:        clock,
		metrics:      metrics,
		log:          log,
		emptyTimeout: DefaultEmptyTimeout,
		pace:         DefaultPace,
	}
}

// SetPacing overrides the empty-queue timeout and the post-success pace.
func (w *Worker) SetPacing(emptyTimeout, pace time.Duration) {
	w.emptyTimeout = emptyTimeout
	w.pace = pace
}

// Run consumes events until a DEFAULT exit event arrives. Call from a
// dedicated goroutine; enqueue the exit event and join to stop.
func (w *Worker) Run() {
	w.log.Info("worker started")

	for {
		w.queue.UpdateScheduled()
		w.metrics.QueueDepth(w.queue.ReadyLen(), w.queue.ScheduledLen())

		ev, err := w.queue.Get(w.emptyTimeout)
		if err != nil {
			continue
		}

		if ev.Type == TypeDefault && ev.Name == ExitEvent {
			w.log.Info("worker exiting")
			return
		}

		w.log.Debug("executing event",
			zap.Int64("id", ev.ID),
			zap.String("type", string(ev.Type)),
			zap.String("name", ev.Name))

		started := w.clock.Now()
		result := w.registry.Dispatch(ev)
		w.metrics.EventDispatched(string(ev.Type), ev.Name, result, w.clock.Now().Sub(started))

		switch result {
		case ResultSkip:
			// No remote request happened: no notification, no pacing.
			continue
		case ResultFail:
			w.queue.EventDone(ev, ResultFail)
		case ResultInstant:
			w.queue.EventDone(ev, ResultSuccess)
		default:
			w.queue.EventDone(ev, ResultSuccess)
			w.clock.Sleep(w.pace)
		}
	}
}
