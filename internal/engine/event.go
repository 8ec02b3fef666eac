package engine

import "fmt"

// EventType groups event names into dispatch families. The string values
// double as the REPL command prefixes.
type EventType string

const (
	TypeShip     EventType = "ships"
	TypeContract EventType = "contracts"
	TypeAgent    EventType = "agent"
	TypeSystem   EventType = "system"
	TypeView     EventType = "view"
	TypeStrategy EventType = "strategy"
	TypeDefault  EventType = "default"
)

// ExitEvent is the name of the DEFAULT event that shuts the worker down.
const ExitEvent = "exit"

// Event is one unit of work for the worker. IDs are unique and strictly
// increasing per process; equal scheduled times break ties by ID.
type Event struct {
	ID      int64
	Type    EventType
	Name    string
	Payload any
}

func (e *Event) String() string {
	return fmt.Sprintf("Event[<%d> %s.%s %v]", e.ID, e.Type, e.Name, e.Payload)
}

// Spec describes an event to be created; used for batch creation so IDs
// are assigned left to right.
type Spec struct {
	Type    EventType
	Name    string
	Payload any
}
