package engine

// Each event name carries a fixed, named payload shape. Handlers assert on
// the concrete type and SKIP on a mismatch, which keeps the REPL protocol
// loose while the engine stays typed.

// ShipPayload targets one ship: dock, orbit, refuel, survey, chart,
// scan_waypoints.
type ShipPayload struct {
	Ship string
}

// NavigatePayload moves a ship to a waypoint.
type NavigatePayload struct {
	Ship     string
	Waypoint string
}

// ExtractPayload mines, optionally biased by a survey signature.
type ExtractPayload struct {
	Ship            string
	SurveySignature string
}

// CargoPayload buys, sells or jettisons cargo. Units == -1 means
// "everything held" on sell/jettison and "fill remaining space" on buy.
type CargoPayload struct {
	Ship     string
	Resource string
	Units    int
}

// PurchaseShipPayload buys a new ship at a shipyard waypoint.
type PurchaseShipPayload struct {
	Waypoint string
	ShipType string
}

// JumpPayload jumps a ship to another system.
type JumpPayload struct {
	Ship   string
	System string
}

// FlightModePayload switches a ship's flight mode.
type FlightModePayload struct {
	Ship string
	Mode string
}

// ContractPayload addresses one contract: accept, fulfill.
type ContractPayload struct {
	ContractID string
}

// DeliverPayload delivers cargo against a contract.
type DeliverPayload struct {
	ContractID string
	Ship       string
	Resource   string
	Units      int
}

// ContractStrategyPayload starts a mining strategy for a contract.
type ContractStrategyPayload struct {
	ContractID string
	Asteroid   string
}

// AssignShipPayload assigns a ship (or surveyor) to a contract strategy.
type AssignShipPayload struct {
	ContractID string
	Ship       string
}

// AssignSurveyPayload pins a survey signature for a contract strategy.
type AssignSurveyPayload struct {
	ContractID string
	Signature  string
}

// TradeAssignPayload puts a ship on a trade route.
type TradeAssignPayload struct {
	Ship     string
	Resource string
	Source   string
	Target   string
}

// MarketUpdatePayload assigns the marketplace scout for a system.
type MarketUpdatePayload struct {
	Ship   string
	System string
}

// WaypointPayload addresses one waypoint: fetch_market, waypoint, shipyard.
type WaypointPayload struct {
	Waypoint string
}

// SystemPayload addresses one system: system, system_waypoints, jump_gate.
type SystemPayload struct {
	System string
}

// RegisterPayload registers a fresh agent.
type RegisterPayload struct {
	Symbol  string
	Faction string
	Email   string
}

// LoadSurveyPayload reloads a persisted survey into the registry.
type LoadSurveyPayload struct {
	Signature string
}

// ViewPayload carries raw REPL arguments for read-only views.
type ViewPayload struct {
	Args []string
}
