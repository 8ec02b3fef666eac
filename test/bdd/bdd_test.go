package bdd

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"go.uber.org/zap"

	"github.com/andrescamacho/helmsman/internal/adapters/cli"
	"github.com/andrescamacho/helmsman/internal/app"
	"github.com/andrescamacho/helmsman/internal/domain/game"
	"github.com/andrescamacho/helmsman/internal/domain/shared"
	"github.com/andrescamacho/helmsman/internal/engine"
	"github.com/andrescamacho/helmsman/internal/handlers"
	"github.com/andrescamacho/helmsman/internal/strategies"
	"github.com/andrescamacho/helmsman/test/helpers"
)

// drainLimit bounds the synthetic worker loop: the strategies are built
// to run forever, so scenarios assert on the call log rather than on the
// loop terminating.
const drainLimit = 500

// botWorld is one scenario's fully wired bot with a fake remote.
type botWorld struct {
	clock    *shared.MockClock
	queue    *engine.EventQueue
	state    *game.State
	api      *helpers.FakeGameAPI
	registry *engine.Registry
}

func newBotWorld() *botWorld {
	clock := shared.NewMockClock(helpers.Epoch)
	log := zap.NewNop()
	queue := engine.NewEventQueue(clock, log)
	state := game.NewState()
	api := helpers.NewFakeGameAPI()

	params := &app.Params{
		Queue: queue,
		State: state,
		API:   api,
		Clock: clock,
		Log:   log,
	}

	registry := engine.NewRegistry(log)
	handlers.NewShipHandler(params).Register(registry)
	handlers.NewContractHandler(params).Register(registry)
	handlers.NewAgentHandler(params).Register(registry)
	handlers.NewSystemHandler(params).Register(registry)
	handlers.NewViewHandler(params).Register(registry)
	strategies.NewRegistry(params).Register(registry)

	return &botWorld{
		clock:    clock,
		queue:    queue,
		state:    state,
		api:      api,
		registry: registry,
	}
}

func (w *botWorld) aShipDockedAt(symbol, waypoint string) error {
	w.state.Lock()
	defer w.state.Unlock()
	w.state.Ships[symbol] = &game.Ship{
		Symbol: symbol,
		Nav: game.Nav{
			SystemSymbol:   game.SystemOf(waypoint),
			WaypointSymbol: waypoint,
			Status:         game.NavStatusDocked,
		},
		Fuel:  game.Fuel{Current: 400, Capacity: 400},
		Cargo: game.Cargo{Capacity: 60},
	}
	return nil
}

func (w *botWorld) anAcceptedContract(id string, units int, resource, destination string) error {
	w.state.Lock()
	defer w.state.Unlock()
	w.state.Contracts[id] = &game.Contract{
		ID:       id,
		Accepted: true,
		Deliveries: []game.ContractDeliverTerm{
			{TradeSymbol: resource, DestinationSymbol: destination, UnitsRequired: units},
		},
	}
	w.api.ContractsByID[id] = w.state.Contracts[id]
	return nil
}

func (w *botWorld) extractionsFillTheHold(units int, resource string) error {
	w.api.ExtractYieldSymbol = resource
	w.api.ExtractYieldUnits = units
	w.api.ExtractCargo = game.Cargo{
		Capacity:  60,
		Units:     units,
		Inventory: []game.CargoItem{{Symbol: resource, Units: units}},
	}
	return nil
}

func (w *botWorld) extractionsAlsoYield(units int, resource string) error {
	w.api.ExtractCargo.Inventory = append(w.api.ExtractCargo.Inventory,
		game.CargoItem{Symbol: resource, Units: units})
	w.api.ExtractCargo.Units += units
	return nil
}

func (w *botWorld) purchasesFillTheHold(resource string) error {
	w.api.CargoAfterTrade = game.Cargo{
		Capacity:  60,
		Units:     60,
		Inventory: []game.CargoItem{{Symbol: resource, Units: 60}},
	}
	return nil
}

// theCommandIsIssued mirrors the REPL: view and strategy commands run
// synchronously, everything else goes through the queue.
func (w *botWorld) theCommandIsIssued(line string) error {
	spec, err := cli.ParseCommand(line)
	if err != nil {
		return err
	}
	if spec.Type == engine.TypeView || spec.Type == engine.TypeStrategy {
		if result := w.registry.Dispatch(w.queue.NewEvent(spec.Type, spec.Name, spec.Payload)); result == engine.ResultFail {
			return fmt.Errorf("command %q failed", line)
		}
		return nil
	}
	w.queue.Put(w.queue.NewEvent(spec.Type, spec.Name, spec.Payload))
	return nil
}

// theWorkerDrainsTheQueue replays the worker loop synchronously on the
// mock clock until the queue goes quiet or the iteration cap is hit.
func (w *botWorld) theWorkerDrainsTheQueue() error {
	for i := 0; i < drainLimit; i++ {
		w.queue.UpdateScheduled()
		ev, err := w.queue.Get(time.Millisecond)
		if err != nil {
			return nil
		}
		if ev.Type == engine.TypeDefault && ev.Name == engine.ExitEvent {
			return nil
		}

		switch result := w.registry.Dispatch(ev); result {
		case engine.ResultSkip:
		case engine.ResultFail:
			w.queue.EventDone(ev, engine.ResultFail)
		case engine.ResultInstant:
			w.queue.EventDone(ev, engine.ResultSuccess)
		default:
			w.queue.EventDone(ev, engine.ResultSuccess)
			w.clock.Sleep(engine.DefaultPace)
		}
	}
	return nil
}

func (w *botWorld) remoteLogContains(prefix string) error {
	for _, call := range w.api.Calls() {
		if strings.HasPrefix(call, prefix) {
			return nil
		}
	}
	return fmt.Errorf("no remote call starting with %q; log: %v", prefix, w.api.Calls())
}

func (w *botWorld) noRemoteCallStartingWith(prefix string) error {
	for _, call := range w.api.Calls() {
		if strings.HasPrefix(call, prefix) {
			return fmt.Errorf("unexpected remote call %q", call)
		}
	}
	return nil
}

func (w *botWorld) theRemoteLogIsExactly(table *godog.Table) error {
	calls := w.api.Calls()
	if len(calls) != len(table.Rows) {
		return fmt.Errorf("expected %d remote calls, got %d: %v", len(table.Rows), len(calls), calls)
	}
	for i, row := range table.Rows {
		if calls[i] != row.Cells[0].Value {
			return fmt.Errorf("call %d: expected %q, got %q", i, row.Cells[0].Value, calls[i])
		}
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	var w *botWorld
	ctx.Before(func(ctx0 context.Context, sc *godog.Scenario) (context.Context, error) {
		w = newBotWorld()
		return ctx0, nil
	})

	ctx.Step(`^a ship "([^"]*)" docked at "([^"]*)"$`, func(symbol, waypoint string) error {
		return w.aShipDockedAt(symbol, waypoint)
	})
	ctx.Step(`^an accepted contract "([^"]*)" requiring (\d+) units of "([^"]*)" delivered to "([^"]*)"$`,
		func(id string, units int, resource, destination string) error {
			return w.anAcceptedContract(id, units, resource, destination)
		})
	ctx.Step(`^every extraction fills the hold with (\d+) units of "([^"]*)"$`,
		func(units int, resource string) error { return w.extractionsFillTheHold(units, resource) })
	ctx.Step(`^extractions also yield (\d+) units of "([^"]*)"$`,
		func(units int, resource string) error { return w.extractionsAlsoYield(units, resource) })
	ctx.Step(`^purchases fill the hold with "([^"]*)"$`,
		func(resource string) error { return w.purchasesFillTheHold(resource) })
	ctx.Step(`^the command "([^"]*)" is issued$`,
		func(line string) error { return w.theCommandIsIssued(line) })
	ctx.Step(`^the worker drains the queue$`,
		func() error { return w.theWorkerDrainsTheQueue() })
	ctx.Step(`^the remote log contains a call starting with "([^"]*)"$`,
		func(prefix string) error { return w.remoteLogContains(prefix) })
	ctx.Step(`^no remote call starting with "([^"]*)" was made$`,
		func(prefix string) error { return w.noRemoteCallStartingWith(prefix) })
	ctx.Step(`^the remote log is exactly:$`,
		func(table *godog.Table) error { return w.theRemoteLogIsExactly(table) })
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
