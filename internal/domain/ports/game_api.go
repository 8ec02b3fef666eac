package ports

import (
	"context"

	"github.com/andrescamacho/helmsman/internal/domain/game"
)

// RegisterResult is the payload of a fresh account registration.
type RegisterResult struct {
	Token    string
	Agent    *game.Agent
	Contract *game.Contract
	Ship     *game.Ship
	Faction  string
}

// NavigateResult carries the nav and fuel delta of a navigate order.
type NavigateResult struct {
	Nav  game.Nav
	Fuel game.Fuel
}

// JumpResult carries the nav and cooldown of a jump.
type JumpResult struct {
	Nav      game.Nav
	Cooldown game.Cooldown
}

// RefuelResult carries the fuel delta and updated agent after refueling.
type RefuelResult struct {
	Fuel       game.Fuel
	Agent      game.Agent
	FuelAdded  int
	TotalPrice int
}

// ExtractResult carries the mining yield, cargo and cooldown.
type ExtractResult struct {
	YieldSymbol string
	YieldUnits  int
	Cargo       game.Cargo
	Cooldown    game.Cooldown
}

// SurveyResult carries the created surveys and the ship cooldown.
type SurveyResult struct {
	Surveys  []*game.Survey
	Cooldown game.Cooldown
}

// TradeResult carries the cargo and agent delta of a buy or sell, plus the
// transaction detail for the ledger.
type TradeResult struct {
	Cargo        game.Cargo
	Agent        game.Agent
	TradeSymbol  string
	Units        int
	PricePerUnit int
	TotalPrice   int
}

// PurchaseShipResult carries the new ship and updated agent.
type PurchaseShipResult struct {
	Ship  *game.Ship
	Agent game.Agent
	Price int
}

// ContractResult carries an updated contract plus the agent when credits
// moved (accept, fulfill).
type ContractResult struct {
	Contract *game.Contract
	Agent    *game.Agent
}

// DeliverResult carries the contract and cargo delta of a delivery.
type DeliverResult struct {
	Contract *game.Contract
	Cargo    game.Cargo
}

// ScanResult carries scanned waypoints and the scan cooldown.
type ScanResult struct {
	Waypoints []*game.Waypoint
	Cooldown  game.Cooldown
}

// ChartResult carries the charted waypoint.
type ChartResult struct {
	Waypoint *game.Waypoint
}

// SystemInfo is the system record with its waypoint stubs.
type SystemInfo struct {
	Symbol    string
	Type      string
	X         float64
	Y         float64
	Waypoints []*game.Waypoint
}

// JumpGate describes the connected systems reachable from a gate.
type JumpGate struct {
	Range             int
	FactionSymbol     string
	ConnectedSystems  []string
}

// ShipyardListing is one purchasable ship type at a shipyard.
type ShipyardListing struct {
	Type          string
	Name          string
	PurchasePrice int
}

// Shipyard is the purchase surface of a shipyard waypoint.
type Shipyard struct {
	WaypointSymbol string
	ShipTypes      []string
	Listings       []ShipyardListing
}

// GameAPI is the narrow port around the remote game service. Every method
// maps to one remote call; all are synchronous and rate-limited by the
// implementation.
type GameAPI interface {
	// Agent
	FetchAgent(ctx context.Context) (*game.Agent, error)
	Register(ctx context.Context, symbol, faction, email string) (*RegisterResult, error)

	// Fleet
	ListShips(ctx context.Context) ([]*game.Ship, error)
	PurchaseShip(ctx context.Context, waypointSymbol, shipType string) (*PurchaseShipResult, error)
	Dock(ctx context.Context, shipSymbol string) (*game.Nav, error)
	Orbit(ctx context.Context, shipSymbol string) (*game.Nav, error)
	Navigate(ctx context.Context, shipSymbol, waypointSymbol string) (*NavigateResult, error)
	PatchFlightMode(ctx context.Context, shipSymbol, mode string) (*game.Nav, error)
	Jump(ctx context.Context, shipSymbol, systemSymbol string) (*JumpResult, error)
	Refuel(ctx context.Context, shipSymbol string) (*RefuelResult, error)
	Extract(ctx context.Context, shipSymbol string, survey *game.Survey) (*ExtractResult, error)
	Survey(ctx context.Context, shipSymbol string) (*SurveyResult, error)
	Sell(ctx context.Context, shipSymbol, tradeSymbol string, units int) (*TradeResult, error)
	Buy(ctx context.Context, shipSymbol, tradeSymbol string, units int) (*TradeResult, error)
	Jettison(ctx context.Context, shipSymbol, tradeSymbol string, units int) (*game.Cargo, error)
	Chart(ctx context.Context, shipSymbol string) (*ChartResult, error)
	ScanWaypoints(ctx context.Context, shipSymbol string) (*ScanResult, error)

	// Contracts
	ListContracts(ctx context.Context) ([]*game.Contract, error)
	AcceptContract(ctx context.Context, contractID string) (*ContractResult, error)
	DeliverContract(ctx context.Context, contractID, shipSymbol, tradeSymbol string, units int) (*DeliverResult, error)
	FulfillContract(ctx context.Context, contractID string) (*ContractResult, error)

	// Systems
	GetSystem(ctx context.Context, systemSymbol string) (*SystemInfo, error)
	ListWaypoints(ctx context.Context, systemSymbol string) ([]*game.Waypoint, error)
	GetWaypoint(ctx context.Context, waypointSymbol string) (*game.Waypoint, error)
	GetMarket(ctx context.Context, waypointSymbol string) (*game.Market, error)
	GetShipyard(ctx context.Context, waypointSymbol string) (*Shipyard, error)
	GetJumpGate(ctx context.Context, systemSymbol string) (*JumpGate, error)
}
