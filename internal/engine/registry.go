package engine

import (
	"go.uber.org/zap"
)

// HandlerFunc executes one event and reports the outcome. Handlers capture
// their dependencies (state, clients) at registration time.
type HandlerFunc func(ev *Event) Result

// Registry routes (EventType, EventName) to a handler.
type Registry struct {
	handlers map[EventType]map[string]HandlerFunc
	log      *zap.Logger
}

// NewRegistry creates an empty dispatch table.
func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[EventType]map[string]HandlerFunc),
		log:      log,
	}
}

// Register binds a handler to (eventType, name). Later registrations for
// the same key replace earlier ones.
func (r *Registry) Register(eventType EventType, name string, fn HandlerFunc) {
	byName, ok := r.handlers[eventType]
	if !ok {
		byName = make(map[string]HandlerFunc)
		r.handlers[eventType] = byName
	}
	byName[name] = fn
}

// Dispatch runs the handler for the event. A missing handler or a handler
// panic is a FAIL; the worker keeps running either way.
func (r *Registry) Dispatch(ev *Event) (result Result) {
	byName, ok := r.handlers[ev.Type]
	if !ok {
		r.log.Error("no handler for event type", zap.String("type", string(ev.Type)))
		return ResultFail
	}
	fn, ok := byName[ev.Name]
	if !ok {
		r.log.Error("no handler for event name",
			zap.String("type", string(ev.Type)),
			zap.String("name", ev.Name))
		return ResultFail
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("handler panicked",
				zap.Int64("id", ev.ID),
				zap.String("type", string(ev.Type)),
				zap.String("name", ev.Name),
				zap.Any("panic", rec),
				zap.Stack("stack"))
			result = ResultFail
		}
	}()

	return fn(ev)
}
