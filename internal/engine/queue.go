package engine

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/andrescamacho/helmsman/internal/domain/shared"
)

// ErrTimeout is returned by Get when no ready event arrives in time.
var ErrTimeout = errors.New("event queue: get timed out")

// Subscriber receives completed events for one (type, name) key.
// Callbacks are value-free; panics are swallowed at the queue level.
type Subscriber func(ev *Event)

// scheduledEntry is one deferred event keyed by (when, id).
type scheduledEntry struct {
	when  time.Time
	event *Event
}

// scheduleHeap orders deferred entries by when, tie-broken by event ID so
// batches created left-to-right promote in input order.
type scheduleHeap []scheduledEntry

func (h scheduleHeap) Len() int { return len(h) }

func (h scheduleHeap) Less(i, j int) bool {
	if h[i].when.Equal(h[j].when) {
		return h[i].event.ID < h[j].event.ID
	}
	return h[i].when.Before(h[j].when)
}

func (h scheduleHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *scheduleHeap) Push(x any) { *h = append(*h, x.(scheduledEntry)) }

func (h *scheduleHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	*h = old[:n-1]
	return entry
}

// EventQueue is the hybrid ready/deferred queue with completion fan-out.
// Put, Schedule and NewID are safe under concurrent producers; Get and
// UpdateScheduled are called only from the worker.
type EventQueue struct {
	currentID atomic.Int64

	readyMu sync.Mutex
	ready   []*Event
	wake    chan struct{}

	// The deferred heap needs its own lock: peeking the head for "is it
	// due?" must be atomic with the subsequent pop.
	scheduledMu sync.Mutex
	scheduled   scheduleHeap

	subMu       sync.Mutex
	subscribers map[EventType]map[string][]Subscriber

	clock shared.Clock
	log   *zap.Logger
}

// NewEventQueue creates an empty queue on the given clock.
func NewEventQueue(clock shared.Clock, log *zap.Logger) *EventQueue {
	return &EventQueue{
		wake:        make(chan struct{}, 1),
		subscribers: make(map[EventType]map[string][]Subscriber),
		clock:       clock,
		log:         log,
	}
}

// NewID returns the next event ID: strictly increasing, thread-safe.
func (q *EventQueue) NewID() int64 {
	return q.currentID.Add(1)
}

// NewEvent assigns an ID and builds an event without enqueuing it.
func (q *EventQueue) NewEvent(eventType EventType, name string, payload any) *Event {
	return &Event{ID: q.NewID(), Type: eventType, Name: name, Payload: payload}
}

// NewEventsFrom builds a batch of events with IDs assigned left to right,
// so scheduling the batch at one instant preserves the given order.
func (q *EventQueue) NewEventsFrom(specs ...Spec) []*Event {
	events := make([]*Event, len(specs))
	for i, spec := range specs {
		events[i] = q.NewEvent(spec.Type, spec.Name, spec.Payload)
	}
	return events
}

// Put pushes an event onto the ready FIFO and returns its ID.
func (q *EventQueue) Put(ev *Event) int64 {
	q.push(ev)
	return ev.ID
}

// PutNew creates and enqueues an event in one step.
func (q *EventQueue) PutNew(eventType EventType, name string, payload any) int64 {
	return q.Put(q.NewEvent(eventType, name, payload))
}

func (q *EventQueue) push(ev *Event) {
	q.readyMu.Lock()
	q.ready = append(q.ready, ev)
	q.readyMu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Get pops the next ready event, blocking up to timeout. Returns
// ErrTimeout when nothing arrives.
func (q *EventQueue) Get(timeout time.Duration) (*Event, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		q.readyMu.Lock()
		if len(q.ready) > 0 {
			ev := q.ready[0]
			q.ready = q.ready[1:]
			q.readyMu.Unlock()
			return ev, nil
		}
		q.readyMu.Unlock()

		select {
		case <-q.wake:
		case <-deadline.C:
			return nil, ErrTimeout
		}
	}
}

// Schedule inserts events into the deferred queue keyed by when. A batch
// scheduled at one instant keeps its order through the ID tie-break.
func (q *EventQueue) Schedule(when time.Time, events ...*Event) {
	q.scheduledMu.Lock()
	defer q.scheduledMu.Unlock()

	for _, ev := range events {
		q.log.Debug("scheduled event",
			zap.Int64("id", ev.ID),
			zap.String("name", ev.Name),
			zap.Time("when", when))
		heap.Push(&q.scheduled, scheduledEntry{when: when, event: ev})
	}
}

// UpdateScheduled promotes every deferred event whose time has come onto
// the ready FIFO, in scheduled order. The heap is time-ordered, so it can
// stop at the first future entry. Idempotent when nothing is due.
func (q *EventQueue) UpdateScheduled() {
	now := q.clock.Now()
	for {
		q.scheduledMu.Lock()
		if len(q.scheduled) == 0 || q.scheduled[0].when.After(now) {
			q.scheduledMu.Unlock()
			return
		}
		entry := heap.Pop(&q.scheduled).(scheduledEntry)
		q.scheduledMu.Unlock()

		q.push(entry.event)
	}
}

// ScheduledLen reports the number of deferred events (for metrics).
func (q *EventQueue) ScheduledLen() int {
	q.scheduledMu.Lock()
	defer q.scheduledMu.Unlock()
	return len(q.scheduled)
}

// ReadyLen reports the number of ready events (for metrics).
func (q *EventQueue) ReadyLen() int {
	q.readyMu.Lock()
	defer q.readyMu.Unlock()
	return len(q.ready)
}

// Subscribe appends a callback for completions of (eventType, name).
// Within one completion, callbacks fire in registration order.
func (q *EventQueue) Subscribe(eventType EventType, name string, fn Subscriber) {
	q.subMu.Lock()
	defer q.subMu.Unlock()

	byName, ok := q.subscribers[eventType]
	if !ok {
		byName = make(map[string][]Subscriber)
		q.subscribers[eventType] = byName
	}
	byName[name] = append(byName[name], fn)
}

// EventDone marks completion. Failed events are not broadcast. A panicking
// subscriber is logged and must not disrupt the remaining subscribers or
// the worker.
func (q *EventQueue) EventDone(ev *Event, result Result) {
	if result == ResultFail {
		q.log.Debug("failed event, notification discarded",
			zap.Int64("id", ev.ID),
			zap.String("type", string(ev.Type)),
			zap.String("name", ev.Name))
		return
	}

	q.subMu.Lock()
	subscribers := q.subscribers[ev.Type][ev.Name]
	q.subMu.Unlock()

	for _, subscriber := range subscribers {
		q.notify(subscriber, ev)
	}
}

func (q *EventQueue) notify(subscriber Subscriber, ev *Event) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("subscriber panicked",
				zap.Int64("id", ev.ID),
				zap.String("type", string(ev.Type)),
				zap.String("name", ev.Name),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()
	subscriber(ev)
}
