package helpers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andrescamacho/helmsman/internal/domain/game"
	"github.com/andrescamacho/helmsman/internal/domain/ports"
)

// FakeGameAPI is a test double for ports.GameAPI. Every call is recorded
// as "name arg1 arg2" so tests can assert on the exact remote traffic.
// Responses come from the configurable fields; zero values produce
// plausible defaults.
type FakeGameAPI struct {
	mu    sync.Mutex
	calls []string

	// Err, when set, fails every call.
	Err error

	Agent     game.Agent
	Ships     []*game.Ship
	Contracts []*game.Contract

	// Navigate responses: arrival used for the returned route.
	ArrivalAt    time.Time
	FuelAfterNav game.Fuel

	// Refuel response.
	FuelAfterRefuel game.Fuel

	// Extract/Survey responses.
	ExtractYieldSymbol string
	ExtractYieldUnits  int
	ExtractCargo       game.Cargo
	CooldownUntil      time.Time
	Surveys            []*game.Survey

	// Trade responses.
	TradePricePerUnit int
	CargoAfterTrade   game.Cargo

	// Contract responses keyed by ID; nil entries fall back to a bare
	// contract with just the ID set.
	ContractsByID map[string]*game.Contract

	// System lookups.
	System    *ports.SystemInfo
	Waypoints []*game.Waypoint
	Markets   map[string]*game.Market
	Shipyard  *ports.Shipyard
	Gate      *ports.JumpGate
}

// NewFakeGameAPI creates an empty fake.
func NewFakeGameAPI() *FakeGameAPI {
	return &FakeGameAPI{
		TradePricePerUnit: 10,
		ContractsByID:     make(map[string]*game.Contract),
		Markets:           make(map[string]*game.Market),
	}
}

// Calls returns a copy of the recorded call log.
func (f *FakeGameAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount counts recorded calls whose name matches.
func (f *FakeGameAPI) CallCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, call := range f.calls {
		if len(call) >= len(name) && call[:len(name)] == name {
			count++
		}
	}
	return count
}

func (f *FakeGameAPI) record(format string, args ...any) error {
	f.mu.Lock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	f.mu.Unlock()
	return f.Err
}

func (f *FakeGameAPI) contract(id string) *game.Contract {
	if c, ok := f.ContractsByID[id]; ok {
		return c
	}
	return &game.Contract{ID: id, Accepted: true}
}

func (f *FakeGameAPI) FetchAgent(ctx context.Context) (*game.Agent, error) {
	if err := f.record("fetch_agent"); err != nil {
		return nil, err
	}
	agent := f.Agent
	return &agent, nil
}

func (f *FakeGameAPI) Register(ctx context.Context, symbol, faction, email string) (*ports.RegisterResult, error) {
	if err := f.record("register %s %s", symbol, faction); err != nil {
		return nil, err
	}
	agent := f.Agent
	agent.Symbol = symbol
	ship := &game.Ship{Symbol: symbol + "-1"}
	return &ports.RegisterResult{
		Token:    "fake-token",
		Agent:    &agent,
		Contract: &game.Contract{ID: "bootstrap-contract"},
		Ship:     ship,
		Faction:  faction,
	}, nil
}

func (f *FakeGameAPI) ListShips(ctx context.Context) ([]*game.Ship, error) {
	if err := f.record("list_ships"); err != nil {
		return nil, err
	}
	return f.Ships, nil
}

func (f *FakeGameAPI) PurchaseShip(ctx context.Context, waypointSymbol, shipType string) (*ports.PurchaseShipResult, error) {
	if err := f.record("purchase_ship %s %s", waypointSymbol, shipType); err != nil {
		return nil, err
	}
	return &ports.PurchaseShipResult{
		Ship:  &game.Ship{Symbol: "NEW-SHIP", Nav: game.Nav{WaypointSymbol: waypointSymbol, Status: game.NavStatusDocked}},
		Agent: f.Agent,
		Price: 80000,
	}, nil
}

func (f *FakeGameAPI) Dock(ctx context.Context, shipSymbol string) (*game.Nav, error) {
	if err := f.record("dock %s", shipSymbol); err != nil {
		return nil, err
	}
	return &game.Nav{Status: game.NavStatusDocked}, nil
}

func (f *FakeGameAPI) Orbit(ctx context.Context, shipSymbol string) (*game.Nav, error) {
	if err := f.record("orbit %s", shipSymbol); err != nil {
		return nil, err
	}
	return &game.Nav{Status: game.NavStatusInOrbit}, nil
}

func (f *FakeGameAPI) Navigate(ctx context.Context, shipSymbol, waypointSymbol string) (*ports.NavigateResult, error) {
	if err := f.record("navigate %s %s", shipSymbol, waypointSymbol); err != nil {
		return nil, err
	}
	return &ports.NavigateResult{
		Nav: game.Nav{
			SystemSymbol:   game.SystemOf(waypointSymbol),
			WaypointSymbol: waypointSymbol,
			Status:         game.NavStatusInTransit,
			Route: game.Route{
				Destination: game.RouteEndpoint{Symbol: waypointSymbol},
				Arrival:     f.ArrivalAt,
			},
		},
		Fuel: f.FuelAfterNav,
	}, nil
}

func (f *FakeGameAPI) PatchFlightMode(ctx context.Context, shipSymbol, mode string) (*game.Nav, error) {
	if err := f.record("flight_mode %s %s", shipSymbol, mode); err != nil {
		return nil, err
	}
	return &game.Nav{FlightMode: mode}, nil
}

func (f *FakeGameAPI) Jump(ctx context.Context, shipSymbol, systemSymbol string) (*ports.JumpResult, error) {
	if err := f.record("jump %s %s", shipSymbol, systemSymbol); err != nil {
		return nil, err
	}
	return &ports.JumpResult{
		Nav:      game.Nav{SystemSymbol: systemSymbol, Status: game.NavStatusInOrbit},
		Cooldown: game.Cooldown{Expiration: f.CooldownUntil},
	}, nil
}

func (f *FakeGameAPI) Refuel(ctx context.Context, shipSymbol string) (*ports.RefuelResult, error) {
	if err := f.record("refuel %s", shipSymbol); err != nil {
		return nil, err
	}
	return &ports.RefuelResult{
		Fuel:       f.FuelAfterRefuel,
		Agent:      f.Agent,
		FuelAdded:  f.FuelAfterRefuel.Capacity - f.FuelAfterRefuel.Current,
		TotalPrice: 120,
	}, nil
}

func (f *FakeGameAPI) Extract(ctx context.Context, shipSymbol string, survey *game.Survey) (*ports.ExtractResult, error) {
	signature := ""
	if survey != nil {
		signature = survey.Signature
	}
	if err := f.record("extract %s %s", shipSymbol, signature); err != nil {
		return nil, err
	}
	return &ports.ExtractResult{
		YieldSymbol: f.ExtractYieldSymbol,
		YieldUnits:  f.ExtractYieldUnits,
		Cargo:       f.ExtractCargo,
		Cooldown:    game.Cooldown{Expiration: f.CooldownUntil},
	}, nil
}

func (f *FakeGameAPI) Survey(ctx context.Context, shipSymbol string) (*ports.SurveyResult, error) {
	if err := f.record("survey %s", shipSymbol); err != nil {
		return nil, err
	}
	return &ports.SurveyResult{
		Surveys:  f.Surveys,
		Cooldown: game.Cooldown{Expiration: f.CooldownUntil},
	}, nil
}

func (f *FakeGameAPI) Sell(ctx context.Context, shipSymbol, tradeSymbol string, units int) (*ports.TradeResult, error) {
	if err := f.record("sell %s %s %d", shipSymbol, tradeSymbol, units); err != nil {
		return nil, err
	}
	return &ports.TradeResult{
		Cargo:        f.CargoAfterTrade,
		Agent:        f.Agent,
		TradeSymbol:  tradeSymbol,
		Units:        units,
		PricePerUnit: f.TradePricePerUnit,
		TotalPrice:   units * f.TradePricePerUnit,
	}, nil
}

func (f *FakeGameAPI) Buy(ctx context.Context, shipSymbol, tradeSymbol string, units int) (*ports.TradeResult, error) {
	if err := f.record("buy %s %s %d", shipSymbol, tradeSymbol, units); err != nil {
		return nil, err
	}
	return &ports.TradeResult{
		Cargo:        f.CargoAfterTrade,
		Agent:        f.Agent,
		TradeSymbol:  tradeSymbol,
		Units:        units,
		PricePerUnit: f.TradePricePerUnit,
		TotalPrice:   units * f.TradePricePerUnit,
	}, nil
}

func (f *FakeGameAPI) Jettison(ctx context.Context, shipSymbol, tradeSymbol string, units int) (*game.Cargo, error) {
	if err := f.record("jettison %s %s %d", shipSymbol, tradeSymbol, units); err != nil {
		return nil, err
	}
	cargo := f.CargoAfterTrade
	return &cargo, nil
}

func (f *FakeGameAPI) Chart(ctx context.Context, shipSymbol string) (*ports.ChartResult, error) {
	if err := f.record("chart %s", shipSymbol); err != nil {
		return nil, err
	}
	return &ports.ChartResult{Waypoint: &game.Waypoint{Symbol: "CHARTED"}}, nil
}

func (f *FakeGameAPI) ScanWaypoints(ctx context.Context, shipSymbol string) (*ports.ScanResult, error) {
	if err := f.record("scan_waypoints %s", shipSymbol); err != nil {
		return nil, err
	}
	return &ports.ScanResult{
		Waypoints: f.Waypoints,
		Cooldown:  game.Cooldown{Expiration: f.CooldownUntil},
	}, nil
}

func (f *FakeGameAPI) ListContracts(ctx context.Context) ([]*game.Contract, error) {
	if err := f.record("list_contracts"); err != nil {
		return nil, err
	}
	return f.Contracts, nil
}

func (f *FakeGameAPI) AcceptContract(ctx context.Context, contractID string) (*ports.ContractResult, error) {
	if err := f.record("accept_contract %s", contractID); err != nil {
		return nil, err
	}
	agent := f.Agent
	return &ports.ContractResult{Contract: f.contract(contractID), Agent: &agent}, nil
}

func (f *FakeGameAPI) DeliverContract(ctx context.Context, contractID, shipSymbol, tradeSymbol string, units int) (*ports.DeliverResult, error) {
	if err := f.record("deliver_contract %s %s %s %d", contractID, shipSymbol, tradeSymbol, units); err != nil {
		return nil, err
	}
	return &ports.DeliverResult{
		Contract: f.contract(contractID),
		Cargo:    f.CargoAfterTrade,
	}, nil
}

func (f *FakeGameAPI) FulfillContract(ctx context.Context, contractID string) (*ports.ContractResult, error) {
	if err := f.record("fulfill_contract %s", contractID); err != nil {
		return nil, err
	}
	agent := f.Agent
	contract := f.contract(contractID)
	contract.Fulfilled = true
	return &ports.ContractResult{Contract: contract, Agent: &agent}, nil
}

func (f *FakeGameAPI) GetSystem(ctx context.Context, systemSymbol string) (*ports.SystemInfo, error) {
	if err := f.record("get_system %s", systemSymbol); err != nil {
		return nil, err
	}
	if f.System != nil {
		return f.System, nil
	}
	return &ports.SystemInfo{Symbol: systemSymbol}, nil
}

func (f *FakeGameAPI) ListWaypoints(ctx context.Context, systemSymbol string) ([]*game.Waypoint, error) {
	if err := f.record("list_waypoints %s", systemSymbol); err != nil {
		return nil, err
	}
	return f.Waypoints, nil
}

func (f *FakeGameAPI) GetWaypoint(ctx context.Context, waypointSymbol string) (*game.Waypoint, error) {
	if err := f.record("get_waypoint %s", waypointSymbol); err != nil {
		return nil, err
	}
	for _, wp := range f.Waypoints {
		if wp.Symbol == waypointSymbol {
			return wp, nil
		}
	}
	return &game.Waypoint{Symbol: waypointSymbol, SystemSymbol: game.SystemOf(waypointSymbol)}, nil
}

func (f *FakeGameAPI) GetMarket(ctx context.Context, waypointSymbol string) (*game.Market, error) {
	if err := f.record("get_market %s", waypointSymbol); err != nil {
		return nil, err
	}
	if market, ok := f.Markets[waypointSymbol]; ok {
		return market, nil
	}
	return &game.Market{WaypointSymbol: waypointSymbol}, nil
}

func (f *FakeGameAPI) GetShipyard(ctx context.Context, waypointSymbol string) (*ports.Shipyard, error) {
	if err := f.record("get_shipyard %s", waypointSymbol); err != nil {
		return nil, err
	}
	if f.Shipyard != nil {
		return f.Shipyard, nil
	}
	return &ports.Shipyard{WaypointSymbol: waypointSymbol}, nil
}

func (f *FakeGameAPI) GetJumpGate(ctx context.Context, systemSymbol string) (*ports.JumpGate, error) {
	if err := f.record("get_jump_gate %s", systemSymbol); err != nil {
		return nil, err
	}
	if f.Gate != nil {
		return f.Gate, nil
	}
	return &ports.JumpGate{}, nil
}
