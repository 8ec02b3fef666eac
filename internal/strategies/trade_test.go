package strategies

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/helmsman/internal/domain/game"
	"github.com/andrescamacho/helmsman/internal/engine"
	"github.com/andrescamacho/helmsman/test/helpers"
)

const testSystem = "X1-TEST"

// tradeFixture wires a strategy over two marketplaces 100 units apart.
func tradeFixture(t *testing.T) (*helpers.TestEnv, *SystemTradeStrategy) {
	t.Helper()
	env := helpers.NewTestEnv(t)
	s := NewSystemTradeStrategy(env.Params)
	s.targetSystem = testSystem
	s.targetWaypoints = map[string]*game.Waypoint{
		"X1-TEST-A1": {Symbol: "X1-TEST-A1", SystemSymbol: testSystem, X: 0, Y: 0, Traits: []string{game.TraitMarketplace}},
		"X1-TEST-B2": {Symbol: "X1-TEST-B2", SystemSymbol: testSystem, X: 100, Y: 0, Traits: []string{game.TraitMarketplace}},
	}
	s.marketplaces = []string{"X1-TEST-A1", "X1-TEST-B2"}
	return env, s
}

func setMarkets(env *helpers.TestEnv, purchase, sell int) {
	env.State.Markets["X1-TEST-A1"] = &game.Market{
		WaypointSymbol: "X1-TEST-A1",
		TradeGoods:     []game.TradeGood{{Symbol: "IRON", PurchasePrice: purchase, SellPrice: purchase + 2}},
	}
	env.State.Markets["X1-TEST-B2"] = &game.Market{
		WaypointSymbol: "X1-TEST-B2",
		TradeGoods:     []game.TradeGood{{Symbol: "IRON", PurchasePrice: sell + 2, SellPrice: sell}},
	}
}

func eventNames(events []*engine.Event) []string {
	names := make([]string, len(events))
	for i, ev := range events {
		names[i] = ev.Name
	}
	return names
}

func TestPlannerAcceptsRouteAboveMarginThreshold(t *testing.T) {
	env, s := tradeFixture(t)
	// Spread 50 over 100 distance: 60*50 - 100/50*240 = 2520, clears 1200.
	setMarkets(env, 100, 150)
	s.assignedShips["HM-T1"] = true
	env.AddShip(&game.Ship{
		Symbol: "HM-T1",
		Nav:    game.Nav{WaypointSymbol: "X1-TEST-C3", Status: game.NavStatusInOrbit},
		Fuel:   game.Fuel{Current: 400, Capacity: 400},
		Cargo:  game.Cargo{Capacity: 60},
	})

	s.BuildTradeRoutes()

	require.NotNil(t, s.routes["HM-T1"])
	assert.Equal(t, "IRON", s.routes["HM-T1"].Resource)
	assert.Equal(t, "X1-TEST-A1", s.routes["HM-T1"].Source)
	assert.Equal(t, "X1-TEST-B2", s.routes["HM-T1"].Target)
	assert.InDelta(t, 2520, s.routes["HM-T1"].TripMargin, 0.01)
	assert.False(t, s.haltTrade)

	// Standby trader heads for the source.
	assert.Equal(t, []string{"orbit", "navigate"}, eventNames(env.DrainReady(t)))
}

func TestPlannerHaltsWhenNoRouteClearsThreshold(t *testing.T) {
	env, s := tradeFixture(t)
	// Spread 25 over 100 distance: 60*25 - 480 = 1020, below 1200.
	setMarkets(env, 100, 125)

	s.BuildTradeRoutes()

	assert.True(t, s.haltTrade)
	assert.Empty(t, s.routes)
}

func TestPlannerSkipsSameWaypointPairing(t *testing.T) {
	env, s := tradeFixture(t)
	// Only one market quotes the resource: buy and sell collapse onto the
	// same waypoint, which is never a route.
	env.State.Markets["X1-TEST-A1"] = &game.Market{
		WaypointSymbol: "X1-TEST-A1",
		TradeGoods:     []game.TradeGood{{Symbol: "IRON", PurchasePrice: 10, SellPrice: 500}},
	}

	s.BuildTradeRoutes()

	assert.True(t, s.haltTrade)
}

func TestPlannerDefersRouteChangeForBusyTrader(t *testing.T) {
	env, s := tradeFixture(t)
	setMarkets(env, 100, 150)
	s.assignedShips["HM-T1"] = true
	s.routes["HM-T1"] = &TradeRoute{Resource: "COPPER", Source: "X1-TEST-B2", Target: "X1-TEST-A1"}

	s.BuildTradeRoutes()

	// The flying trader keeps its current route; the switch waits for the
	// next target arrival.
	assert.Equal(t, "COPPER", s.routes["HM-T1"].Resource)
	require.NotNil(t, s.pendingRouteChange["HM-T1"])
	assert.Equal(t, "IRON", s.pendingRouteChange["HM-T1"].Resource)
	assert.Empty(t, env.DrainReady(t))
}

func TestStartRouteAtSourceSchedulesBuyLegImmediately(t *testing.T) {
	env, s := tradeFixture(t)
	s.assignedShips["HM-T1"] = true
	env.AddShip(&game.Ship{
		Symbol: "HM-T1",
		Nav:    game.Nav{WaypointSymbol: "X1-TEST-A1", Status: game.NavStatusInOrbit},
		Fuel:   game.Fuel{Current: 400, Capacity: 400},
		Cargo:  game.Cargo{Capacity: 60},
	})

	env.State.Lock()
	s.startRoute("HM-T1", &TradeRoute{Resource: "IRON", Source: "X1-TEST-A1", Target: "X1-TEST-B2"})
	env.State.Unlock()

	// Scheduled at now: promotion makes it ready at once.
	env.Queue.UpdateScheduled()
	names := eventNames(env.DrainReady(t))
	assert.Equal(t, []string{"dock", "buy_cargo_item", "orbit", "navigate"}, names)
}

func TestSourceArrivalRefuelsWhenTripBurnsMostOfTank(t *testing.T) {
	env, s := tradeFixture(t)
	s.routes["HM-T1"] = &TradeRoute{Resource: "IRON", Source: "X1-TEST-A1", Target: "X1-TEST-B2"}
	// 2.5 * 100 = 250 >= 200 current fuel: refuel goes into the batch.
	env.AddShip(&game.Ship{
		Symbol: "HM-T1",
		Nav:    game.Nav{WaypointSymbol: "X1-TEST-A1", Status: game.NavStatusInOrbit},
		Fuel:   game.Fuel{Current: 200, Capacity: 400},
		Cargo: game.Cargo{Capacity: 60, Units: 8, Inventory: []game.CargoItem{
			{Symbol: "QUARTZ_SAND", Units: 5},
			{Symbol: "ANTIMATTER", Units: 3},
		}},
	})

	env.State.Lock()
	s.sourceArrival("HM-T1", env.Clock.Now())
	env.State.Unlock()

	env.Queue.UpdateScheduled()
	names := eventNames(env.DrainReady(t))
	// Stray cargo is dumped, reserved antimatter is not.
	assert.Equal(t, []string{"dock", "refuel", "jettison_cargo_item", "buy_cargo_item", "orbit", "navigate"}, names)
}

func TestTargetArrivalFliesLoopAgain(t *testing.T) {
	env, s := tradeFixture(t)
	s.routes["HM-T1"] = &TradeRoute{Resource: "IRON", Source: "X1-TEST-A1", Target: "X1-TEST-B2"}
	arrival := helpers.Epoch.Add(5 * time.Minute)
	env.AddShip(&game.Ship{
		Symbol: "HM-T1",
		Nav: game.Nav{
			WaypointSymbol: "X1-TEST-B2",
			Status:         game.NavStatusInTransit,
			Route:          game.Route{Arrival: arrival},
		},
		Fuel:  game.Fuel{Current: 400, Capacity: 400},
		Cargo: game.Cargo{Capacity: 60},
	})

	env.State.Lock()
	s.targetArrival("HM-T1")
	env.State.Unlock()

	// Nothing ready before arrival plus slack.
	env.Queue.UpdateScheduled()
	assert.Equal(t, 0, env.Queue.ReadyLen())

	env.Clock.SetTime(arrival.Add(arrivalSlack))
	env.Queue.UpdateScheduled()
	names := eventNames(env.DrainReady(t))
	assert.Equal(t, []string{"dock", "sell_cargo_item", "orbit", "navigate"}, names)
}

func TestTargetArrivalOnHaltSellsAndParks(t *testing.T) {
	env, s := tradeFixture(t)
	s.haltTrade = true
	s.routes["HM-T1"] = &TradeRoute{Resource: "IRON", Source: "X1-TEST-A1", Target: "X1-TEST-B2"}
	env.AddShip(&game.Ship{
		Symbol: "HM-T1",
		Nav:    game.Nav{WaypointSymbol: "X1-TEST-B2", Route: game.Route{Arrival: helpers.Epoch}},
		Cargo:  game.Cargo{Capacity: 60},
	})

	env.State.Lock()
	s.targetArrival("HM-T1")
	env.State.Unlock()

	env.Clock.SetTime(helpers.Epoch.Add(arrivalSlack))
	env.Queue.UpdateScheduled()
	names := eventNames(env.DrainReady(t))
	assert.Equal(t, []string{"dock", "sell_cargo_item", "orbit"}, names)
	assert.Nil(t, s.routes["HM-T1"], "halted trader leaves the route pool")
}

func TestScoutTourAdvancesToNearestUnvisitedMarket(t *testing.T) {
	env, s := tradeFixture(t)
	s.scout = "HM-S1"
	env.AddShip(&game.Ship{
		Symbol: "HM-S1",
		Nav:    game.Nav{WaypointSymbol: "X1-TEST-A1", Status: game.NavStatusInOrbit},
	})

	ev := env.Queue.NewEvent(engine.TypeSystem, "fetch_market", engine.WaypointPayload{Waypoint: "X1-TEST-A1"})
	s.pendingFetchMarket[ev.ID] = "X1-TEST-A1"

	s.onFetchMarket(ev)

	assert.True(t, s.visited["X1-TEST-A1"])
	names := eventNames(env.DrainReady(t))
	assert.Equal(t, []string{"navigate"}, names)
	assert.Len(t, s.pendingNavigateMarket, 1)
}

func TestScoutTourCompletionPlansAndSchedulesNextRound(t *testing.T) {
	env, s := tradeFixture(t)
	setMarkets(env, 100, 150)
	s.scout = "HM-S1"
	s.visited["X1-TEST-A1"] = true
	env.AddShip(&game.Ship{
		Symbol: "HM-S1",
		Nav:    game.Nav{WaypointSymbol: "X1-TEST-B2", Status: game.NavStatusInOrbit},
	})

	ev := env.Queue.NewEvent(engine.TypeSystem, "fetch_market", engine.WaypointPayload{Waypoint: "X1-TEST-B2"})
	s.pendingFetchMarket[ev.ID] = "X1-TEST-B2"

	s.onFetchMarket(ev)

	// The round is over: planner ran and the next leg waits out the refresh
	// interval.
	assert.False(t, s.haltTrade)
	assert.Equal(t, 0, env.Queue.ReadyLen())
	require.Equal(t, 1, env.Queue.ScheduledLen())

	env.Clock.Advance(scoutRefreshInterval)
	env.Queue.UpdateScheduled()
	assert.Equal(t, []string{"navigate"}, eventNames(env.DrainReady(t)))
}

func TestAssignMarketUpdaterStartsTourInBurnMode(t *testing.T) {
	env, s := tradeFixture(t)
	env.AddShip(&game.Ship{
		Symbol: "HM-S1",
		Nav:    game.Nav{WaypointSymbol: "X1-TEST-A1", Status: game.NavStatusDocked},
	})
	env.State.Waypoints["X1-TEST-A1"] = s.targetWaypoints["X1-TEST-A1"]
	env.State.Waypoints["X1-TEST-B2"] = s.targetWaypoints["X1-TEST-B2"]

	s.AssignMarketUpdater("HM-S1", testSystem)

	names := eventNames(env.DrainReady(t))
	assert.Equal(t, []string{"flight_mode", "orbit", "navigate"}, names)
	assert.Equal(t, "HM-S1", s.scout)
	assert.Equal(t, []string{"X1-TEST-A1", "X1-TEST-B2"}, s.marketplaces)
}
