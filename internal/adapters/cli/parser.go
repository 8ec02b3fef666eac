package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andrescamacho/helmsman/internal/engine"
)

// eventTypes maps the REPL's command words to event types.
var eventTypes = map[string]engine.EventType{
	"ships":     engine.TypeShip,
	"contracts": engine.TypeContract,
	"agent":     engine.TypeAgent,
	"system":    engine.TypeSystem,
	"view":      engine.TypeView,
	"strategy":  engine.TypeStrategy,
	"default":   engine.TypeDefault,
}

// ParseCommand turns one REPL line `<type> <name> <args...>` into an
// event spec with a typed payload.
func ParseCommand(line string) (engine.Spec, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return engine.Spec{}, fmt.Errorf("expected '<event_type> <event_name> [args...]', got %q", line)
	}

	eventType, ok := eventTypes[strings.ToLower(fields[0])]
	if !ok {
		return engine.Spec{}, fmt.Errorf("unknown event type %q", fields[0])
	}
	name := strings.ToLower(fields[1])
	args := fields[2:]

	payload, err := buildPayload(eventType, name, args)
	if err != nil {
		return engine.Spec{}, fmt.Errorf("%s %s: %w", fields[0], name, err)
	}
	return engine.Spec{Type: eventType, Name: name, Payload: payload}, nil
}

func buildPayload(eventType engine.EventType, name string, args []string) (any, error) {
	switch eventType {
	case engine.TypeShip:
		return shipPayload(name, args)
	case engine.TypeContract:
		return contractPayload(name, args)
	case engine.TypeAgent:
		return agentPayload(name, args)
	case engine.TypeSystem:
		return systemPayload(name, args)
	case engine.TypeView:
		return engine.ViewPayload{Args: args}, nil
	case engine.TypeStrategy:
		return strategyPayload(name, args)
	case engine.TypeDefault:
		return nil, nil
	}
	return nil, fmt.Errorf("unhandled event type %q", eventType)
}

func shipPayload(name string, args []string) (any, error) {
	switch name {
	case "fetch_all":
		return nil, nil

	case "dock", "orbit", "refuel", "survey", "chart", "scan_waypoints":
		if err := wantArgs(args, 1, "<ship>"); err != nil {
			return nil, err
		}
		return engine.ShipPayload{Ship: args[0]}, nil

	case "navigate":
		if err := wantArgs(args, 2, "<ship> <waypoint>"); err != nil {
			return nil, err
		}
		return engine.NavigatePayload{Ship: args[0], Waypoint: args[1]}, nil

	case "extract":
		if len(args) != 1 && len(args) != 2 {
			return nil, fmt.Errorf("expected <ship> [survey_signature], got %d args", len(args))
		}
		payload := engine.ExtractPayload{Ship: args[0]}
		if len(args) == 2 {
			payload.SurveySignature = args[1]
		}
		return payload, nil

	case "sell_cargo_item", "buy_cargo_item", "jettison_cargo_item":
		if err := wantArgs(args, 3, "<ship> <resource> <units>"); err != nil {
			return nil, err
		}
		units, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("invalid units %q: %w", args[2], err)
		}
		return engine.CargoPayload{Ship: args[0], Resource: args[1], Units: units}, nil

	case "purchase":
		if err := wantArgs(args, 2, "<waypoint> <ship_type>"); err != nil {
			return nil, err
		}
		return engine.PurchaseShipPayload{Waypoint: args[0], ShipType: args[1]}, nil

	case "jump":
		if err := wantArgs(args, 2, "<ship> <system>"); err != nil {
			return nil, err
		}
		return engine.JumpPayload{Ship: args[0], System: args[1]}, nil

	case "flight_mode":
		if err := wantArgs(args, 2, "<ship> <mode>"); err != nil {
			return nil, err
		}
		return engine.FlightModePayload{Ship: args[0], Mode: strings.ToUpper(args[1])}, nil

	case "load_survey":
		if err := wantArgs(args, 1, "<signature>"); err != nil {
			return nil, err
		}
		return engine.LoadSurveyPayload{Signature: args[0]}, nil
	}
	return nil, fmt.Errorf("unknown ship event %q", name)
}

func contractPayload(name string, args []string) (any, error) {
	switch name {
	case "fetch_all":
		return nil, nil

	case "accept", "fulfill":
		if err := wantArgs(args, 1, "<contract_id>"); err != nil {
			return nil, err
		}
		return engine.ContractPayload{ContractID: args[0]}, nil

	case "deliver":
		if err := wantArgs(args, 4, "<contract_id> <ship> <resource> <units>"); err != nil {
			return nil, err
		}
		units, err := strconv.Atoi(args[3])
		if err != nil {
			return nil, fmt.Errorf("invalid units %q: %w", args[3], err)
		}
		return engine.DeliverPayload{
			ContractID: args[0],
			Ship:       args[1],
			Resource:   args[2],
			Units:      units,
		}, nil

	case "strategy":
		if err := wantArgs(args, 2, "<contract_id> <asteroid_waypoint>"); err != nil {
			return nil, err
		}
		return engine.ContractStrategyPayload{ContractID: args[0], Asteroid: args[1]}, nil

	case "assign_strategy_ship", "assign_strategy_surveyor":
		if err := wantArgs(args, 2, "<contract_id> <ship>"); err != nil {
			return nil, err
		}
		return engine.AssignShipPayload{ContractID: args[0], Ship: args[1]}, nil

	case "assign_strategy_survey":
		if err := wantArgs(args, 2, "<contract_id> <signature>"); err != nil {
			return nil, err
		}
		return engine.AssignSurveyPayload{ContractID: args[0], Signature: args[1]}, nil
	}
	return nil, fmt.Errorf("unknown contract event %q", name)
}

func agentPayload(name string, args []string) (any, error) {
	switch name {
	case "fetch":
		return nil, nil

	case "register":
		if len(args) != 2 && len(args) != 3 {
			return nil, fmt.Errorf("expected <symbol> <faction> [email], got %d args", len(args))
		}
		payload := engine.RegisterPayload{Symbol: args[0], Faction: args[1]}
		if len(args) == 3 {
			payload.Email = args[2]
		}
		return payload, nil
	}
	return nil, fmt.Errorf("unknown agent event %q", name)
}

func systemPayload(name string, args []string) (any, error) {
	switch name {
	case "system", "jump_gate", "system_waypoints":
		if err := wantArgs(args, 1, "<system>"); err != nil {
			return nil, err
		}
		return engine.SystemPayload{System: args[0]}, nil

	case "waypoint", "fetch_market", "shipyard":
		if err := wantArgs(args, 1, "<waypoint>"); err != nil {
			return nil, err
		}
		return engine.WaypointPayload{Waypoint: args[0]}, nil
	}
	return nil, fmt.Errorf("unknown system event %q", name)
}

func strategyPayload(name string, args []string) (any, error) {
	switch name {
	case "trade":
		if len(args) != 1 && len(args) != 4 {
			return nil, fmt.Errorf("expected <ship> [resource source target], got %d args", len(args))
		}
		payload := engine.TradeAssignPayload{Ship: args[0]}
		if len(args) == 4 {
			payload.Resource = args[1]
			payload.Source = args[2]
			payload.Target = args[3]
		}
		return payload, nil

	case "market_update":
		if err := wantArgs(args, 2, "<ship> <system>"); err != nil {
			return nil, err
		}
		return engine.MarketUpdatePayload{Ship: args[0], System: args[1]}, nil

	case "trade_routes":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown strategy event %q", name)
}

func wantArgs(args []string, count int, usage string) error {
	if len(args) != count {
		return fmt.Errorf("expected %s, got %d args", usage, len(args))
	}
	return nil
}
