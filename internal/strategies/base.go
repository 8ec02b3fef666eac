package strategies

import (
	"time"

	"github.com/andrescamacho/helmsman/internal/engine"
)

// Spec builders shared by the strategies. Strategies compose these into
// batches so that a whole action sequence gets IDs assigned left to right
// and replays in order when scheduled at a single instant.

func dockSpec(ship string) engine.Spec {
	return engine.Spec{Type: engine.TypeShip, Name: "dock", Payload: engine.ShipPayload{Ship: ship}}
}

func orbitSpec(ship string) engine.Spec {
	return engine.Spec{Type: engine.TypeShip, Name: "orbit", Payload: engine.ShipPayload{Ship: ship}}
}

func refuelSpec(ship string) engine.Spec {
	return engine.Spec{Type: engine.TypeShip, Name: "refuel", Payload: engine.ShipPayload{Ship: ship}}
}

func navigateSpec(ship, waypoint string) engine.Spec {
	return engine.Spec{
		Type:    engine.TypeShip,
		Name:    "navigate",
		Payload: engine.NavigatePayload{Ship: ship, Waypoint: waypoint},
	}
}

func extractSpec(ship, signature string) engine.Spec {
	return engine.Spec{
		Type:    engine.TypeShip,
		Name:    "extract",
		Payload: engine.ExtractPayload{Ship: ship, SurveySignature: signature},
	}
}

func surveySpec(ship string) engine.Spec {
	return engine.Spec{Type: engine.TypeShip, Name: "survey", Payload: engine.ShipPayload{Ship: ship}}
}

func sellSpec(ship, resource string, units int) engine.Spec {
	return engine.Spec{
		Type:    engine.TypeShip,
		Name:    "sell_cargo_item",
		Payload: engine.CargoPayload{Ship: ship, Resource: resource, Units: units},
	}
}

func buySpec(ship, resource string, units int) engine.Spec {
	return engine.Spec{
		Type:    engine.TypeShip,
		Name:    "buy_cargo_item",
		Payload: engine.CargoPayload{Ship: ship, Resource: resource, Units: units},
	}
}

func jettisonSpec(ship, resource string, units int) engine.Spec {
	return engine.Spec{
		Type:    engine.TypeShip,
		Name:    "jettison_cargo_item",
		Payload: engine.CargoPayload{Ship: ship, Resource: resource, Units: units},
	}
}

func flightModeSpec(ship, mode string) engine.Spec {
	return engine.Spec{
		Type:    engine.TypeShip,
		Name:    "flight_mode",
		Payload: engine.FlightModePayload{Ship: ship, Mode: mode},
	}
}

func fetchMarketSpec(waypoint string) engine.Spec {
	return engine.Spec{
		Type:    engine.TypeSystem,
		Name:    "fetch_market",
		Payload: engine.WaypointPayload{Waypoint: waypoint},
	}
}

func deliverSpec(contractID, ship, resource string, units int) engine.Spec {
	return engine.Spec{
		Type:    engine.TypeContract,
		Name:    "deliver",
		Payload: engine.DeliverPayload{ContractID: contractID, Ship: ship, Resource: resource, Units: units},
	}
}

func fulfillSpec(contractID string) engine.Spec {
	return engine.Spec{
		Type:    engine.TypeContract,
		Name:    "fulfill",
		Payload: engine.ContractPayload{ContractID: contractID},
	}
}

// scheduleBatch builds the batch, defers it to when, and returns the
// events so callers can record IDs of interest.
func scheduleBatch(q *engine.EventQueue, when time.Time, specs ...engine.Spec) []*engine.Event {
	events := q.NewEventsFrom(specs...)
	q.Schedule(when, events...)
	return events
}

// putBatch builds the batch and pushes it onto the ready FIFO.
func putBatch(q *engine.EventQueue, specs ...engine.Spec) []*engine.Event {
	events := q.NewEventsFrom(specs...)
	for _, ev := range events {
		q.Put(ev)
	}
	return events
}
