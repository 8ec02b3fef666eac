package handlers

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/helmsman/internal/domain/game"
	"github.com/andrescamacho/helmsman/internal/engine"
	"github.com/andrescamacho/helmsman/test/helpers"
)

func dockedShip(symbol string) *game.Ship {
	return &game.Ship{
		Symbol: symbol,
		Nav:    game.Nav{WaypointSymbol: "X1-TEST-A1", SystemSymbol: "X1-TEST", Status: game.NavStatusDocked},
		Fuel:   game.Fuel{Current: 100, Capacity: 400},
		Cargo:  game.Cargo{Capacity: 60},
	}
}

func shipEvent(name, symbol string) *engine.Event {
	return &engine.Event{ID: 1, Type: engine.TypeShip, Name: name, Payload: engine.ShipPayload{Ship: symbol}}
}

func TestDockSkipsWhenAlreadyDocked(t *testing.T) {
	env := helpers.NewTestEnv(t)
	env.AddShip(dockedShip("HM-1"))
	h := NewShipHandler(env.Params)

	result := h.Dock(shipEvent("dock", "HM-1"))

	assert.Equal(t, engine.ResultSkip, result)
	assert.Empty(t, env.API.Calls(), "no remote call for a repeated dock")
}

func TestDockSkipsUnknownShip(t *testing.T) {
	env := helpers.NewTestEnv(t)
	h := NewShipHandler(env.Params)

	result := h.Dock(shipEvent("dock", "GHOST"))

	assert.Equal(t, engine.ResultSkip, result)
}

func TestDockUpdatesNavOnSuccess(t *testing.T) {
	env := helpers.NewTestEnv(t)
	ship := dockedShip("HM-1")
	ship.Nav.Status = game.NavStatusInOrbit
	env.AddShip(ship)
	h := NewShipHandler(env.Params)

	result := h.Dock(shipEvent("dock", "HM-1"))

	assert.Equal(t, engine.ResultSuccess, result)
	assert.Equal(t, game.NavStatusDocked, ship.Nav.Status)
	assert.Equal(t, []string{"dock HM-1"}, env.API.Calls())
}

func TestOrbitFailsWhenAPIErrors(t *testing.T) {
	env := helpers.NewTestEnv(t)
	env.AddShip(dockedShip("HM-1"))
	env.API.Err = errors.New("boom")
	h := NewShipHandler(env.Params)

	result := h.Orbit(shipEvent("orbit", "HM-1"))

	assert.Equal(t, engine.ResultFail, result)
}

func TestRefuelSkipsOnFullTank(t *testing.T) {
	env := helpers.NewTestEnv(t)
	ship := dockedShip("HM-1")
	ship.Fuel = game.Fuel{Current: 400, Capacity: 400}
	env.AddShip(ship)
	h := NewShipHandler(env.Params)

	result := h.Refuel(shipEvent("refuel", "HM-1"))

	assert.Equal(t, engine.ResultSkip, result)
	assert.Empty(t, env.API.Calls())
}

func TestRefuelUpdatesFuelAndAgent(t *testing.T) {
	env := helpers.NewTestEnv(t)
	ship := env.AddShip(dockedShip("HM-1"))
	env.API.FuelAfterRefuel = game.Fuel{Current: 400, Capacity: 400}
	env.API.Agent = game.Agent{Symbol: "HM", Credits: 99000}
	h := NewShipHandler(env.Params)

	result := h.Refuel(shipEvent("refuel", "HM-1"))

	assert.Equal(t, engine.ResultSuccess, result)
	assert.Equal(t, 400, ship.Fuel.Current)
	assert.Equal(t, 99000, env.State.Agent.Credits)
}

func TestNavigateUpdatesNavAndFuel(t *testing.T) {
	env := helpers.NewTestEnv(t)
	ship := env.AddShip(dockedShip("HM-1"))
	env.API.ArrivalAt = helpers.Epoch.Add(10 * time.Minute)
	env.API.FuelAfterNav = game.Fuel{Current: 60, Capacity: 400}
	h := NewShipHandler(env.Params)

	result := h.Navigate(&engine.Event{
		Type:    engine.TypeShip,
		Name:    "navigate",
		Payload: engine.NavigatePayload{Ship: "HM-1", Waypoint: "X1-TEST-B2"},
	})

	assert.Equal(t, engine.ResultSuccess, result)
	assert.Equal(t, game.NavStatusInTransit, ship.Nav.Status)
	assert.Equal(t, "X1-TEST-B2", ship.Nav.WaypointSymbol)
	assert.Equal(t, helpers.Epoch.Add(10*time.Minute), ship.Nav.Route.Arrival)
	assert.Equal(t, 60, ship.Fuel.Current)
}

func TestSellAllResolvesHeldUnits(t *testing.T) {
	env := helpers.NewTestEnv(t)
	ship := dockedShip("HM-1")
	ship.Cargo.Inventory = []game.CargoItem{{Symbol: "IRON_ORE", Units: 34}}
	ship.Cargo.Units = 34
	env.AddShip(ship)
	h := NewShipHandler(env.Params)

	result := h.SellCargoItem(&engine.Event{
		Type:    engine.TypeShip,
		Name:    "sell_cargo_item",
		Payload: engine.CargoPayload{Ship: "HM-1", Resource: "IRON_ORE", Units: -1},
	})

	assert.Equal(t, engine.ResultSuccess, result)
	assert.Equal(t, []string{"sell HM-1 IRON_ORE 34"}, env.API.Calls())
}

func TestSellSkipsReservedResource(t *testing.T) {
	env := helpers.NewTestEnv(t)
	env.AddShip(dockedShip("HM-1"))
	h := NewShipHandler(env.Params)

	result := h.SellCargoItem(&engine.Event{
		Type:    engine.TypeShip,
		Name:    "sell_cargo_item",
		Payload: engine.CargoPayload{Ship: "HM-1", Resource: "ANTIMATTER", Units: -1},
	})

	assert.Equal(t, engine.ResultSkip, result)
	assert.Empty(t, env.API.Calls())
}

func TestSellSkipsWhenNothingHeld(t *testing.T) {
	env := helpers.NewTestEnv(t)
	env.AddShip(dockedShip("HM-1"))
	h := NewShipHandler(env.Params)

	result := h.SellCargoItem(&engine.Event{
		Type:    engine.TypeShip,
		Name:    "sell_cargo_item",
		Payload: engine.CargoPayload{Ship: "HM-1", Resource: "IRON_ORE", Units: -1},
	})

	assert.Equal(t, engine.ResultSkip, result)
	assert.Empty(t, env.API.Calls())
}

func TestBuyFillResolvesFreeCapacity(t *testing.T) {
	env := helpers.NewTestEnv(t)
	ship := dockedShip("HM-1")
	// Reserved stack counts against the room left in the hold.
	ship.Cargo.Inventory = []game.CargoItem{{Symbol: "ANTIMATTER", Units: 5}}
	ship.Cargo.Units = 5
	env.AddShip(ship)
	h := NewShipHandler(env.Params)

	result := h.BuyCargoItem(&engine.Event{
		Type:    engine.TypeShip,
		Name:    "buy_cargo_item",
		Payload: engine.CargoPayload{Ship: "HM-1", Resource: "FUEL", Units: -1},
	})

	assert.Equal(t, engine.ResultSuccess, result)
	assert.Equal(t, []string{"buy HM-1 FUEL 55"}, env.API.Calls())
}

func TestJettisonSkipsReservedResource(t *testing.T) {
	env := helpers.NewTestEnv(t)
	ship := dockedShip("HM-1")
	ship.Cargo.Inventory = []game.CargoItem{{Symbol: "ANTIMATTER", Units: 5}}
	env.AddShip(ship)
	h := NewShipHandler(env.Params)

	result := h.JettisonCargoItem(&engine.Event{
		Type:    engine.TypeShip,
		Name:    "jettison_cargo_item",
		Payload: engine.CargoPayload{Ship: "HM-1", Resource: "ANTIMATTER", Units: -1},
	})

	assert.Equal(t, engine.ResultSkip, result)
	assert.Empty(t, env.API.Calls())
}

func TestExtractUsesLiveSurvey(t *testing.T) {
	env := helpers.NewTestEnv(t)
	ship := env.AddShip(dockedShip("HM-1"))
	env.State.Surveys.Add(&game.Survey{
		Signature:      "SIG-1",
		WaypointSymbol: ship.Nav.WaypointSymbol,
		Deposits:       []string{"IRON_ORE"},
		Expiration:     time.Now().Add(time.Hour),
	})
	env.API.CooldownUntil = helpers.Epoch.Add(70 * time.Second)
	h := NewShipHandler(env.Params)

	result := h.Extract(&engine.Event{
		Type:    engine.TypeShip,
		Name:    "extract",
		Payload: engine.ExtractPayload{Ship: "HM-1", SurveySignature: "SIG-1"},
	})

	assert.Equal(t, engine.ResultSuccess, result)
	assert.Equal(t, []string{"extract HM-1 SIG-1"}, env.API.Calls())
	assert.Equal(t, helpers.Epoch.Add(70*time.Second), ship.Cooldown.Expiration)
}

func TestExtractDowngradesWhenSurveyMissing(t *testing.T) {
	env := helpers.NewTestEnv(t)
	env.AddShip(dockedShip("HM-1"))
	h := NewShipHandler(env.Params)

	result := h.Extract(&engine.Event{
		Type:    engine.TypeShip,
		Name:    "extract",
		Payload: engine.ExtractPayload{Ship: "HM-1", SurveySignature: "GONE"},
	})

	assert.Equal(t, engine.ResultSuccess, result)
	// Empty signature in the call log: untargeted extraction.
	assert.Equal(t, []string{"extract HM-1 "}, env.API.Calls())
}

func TestSurveyCachesResults(t *testing.T) {
	env := helpers.NewTestEnv(t)
	ship := env.AddShip(dockedShip("HM-1"))
	env.API.Surveys = []*game.Survey{{
		Signature:      "SIG-9",
		WaypointSymbol: ship.Nav.WaypointSymbol,
		Deposits:       []string{"COPPER_ORE"},
		Expiration:     time.Now().Add(time.Hour),
	}}
	h := NewShipHandler(env.Params)

	result := h.Survey(shipEvent("survey", "HM-1"))

	require.Equal(t, engine.ResultSuccess, result)
	_, found := env.State.Surveys.Get(ship.Nav.WaypointSymbol, "SIG-9")
	assert.True(t, found)
}

func TestFlightModeSkipsWhenAlreadySet(t *testing.T) {
	env := helpers.NewTestEnv(t)
	ship := dockedShip("HM-1")
	ship.Nav.FlightMode = game.FlightModeBurn
	env.AddShip(ship)
	h := NewShipHandler(env.Params)

	result := h.FlightMode(&engine.Event{
		Type:    engine.TypeShip,
		Name:    "flight_mode",
		Payload: engine.FlightModePayload{Ship: "HM-1", Mode: game.FlightModeBurn},
	})

	assert.Equal(t, engine.ResultSkip, result)
	assert.Empty(t, env.API.Calls())
}

func TestFetchAllReplacesFleet(t *testing.T) {
	env := helpers.NewTestEnv(t)
	env.AddShip(dockedShip("STALE"))
	env.API.Ships = []*game.Ship{dockedShip("HM-1"), dockedShip("HM-2")}
	h := NewShipHandler(env.Params)

	result := h.FetchAll(&engine.Event{Type: engine.TypeShip, Name: "fetch_all"})

	assert.Equal(t, engine.ResultSuccess, result)
	assert.Len(t, env.State.Ships, 2)
	_, stale := env.State.Ship("STALE")
	assert.False(t, stale)
}
