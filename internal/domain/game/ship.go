package game

import "time"

// Nav status values reported by the game API.
const (
	NavStatusDocked    = "DOCKED"
	NavStatusInOrbit   = "IN_ORBIT"
	NavStatusInTransit = "IN_TRANSIT"
)

// Flight modes. BURN is what the market scout runs on.
const (
	FlightModeCruise = "CRUISE"
	FlightModeBurn   = "BURN"
	FlightModeDrift  = "DRIFT"
	FlightModeStealth = "STEALTH"
)

// RouteEndpoint is one end of a nav route, with coordinates so strategies
// can compute distances from an in-transit ship.
type RouteEndpoint struct {
	Symbol string
	X      float64
	Y      float64
}

// Route is the ship's current or last navigate order.
type Route struct {
	Departure     RouteEndpoint
	Destination   RouteEndpoint
	DepartureTime time.Time
	Arrival       time.Time
}

// Nav holds the ship's navigation state.
type Nav struct {
	SystemSymbol   string
	WaypointSymbol string
	Status         string
	FlightMode     string
	Route          Route
}

// Fuel holds current and maximum fuel units.
type Fuel struct {
	Current  int
	Capacity int
}

// CargoItem is one stack of a resource in the hold.
type CargoItem struct {
	Symbol string
	Units  int
}

// Cargo is the ship's hold.
type Cargo struct {
	Capacity  int
	Units     int
	Inventory []CargoItem
}

// ResourceCount sums the held units of one resource symbol.
func (c Cargo) ResourceCount(symbol string) int {
	total := 0
	for _, item := range c.Inventory {
		if item.Symbol == symbol {
			total += item.Units
		}
	}
	return total
}

// TotalUnits sums every stack in the hold, reserved items included.
func (c Cargo) TotalUnits() int {
	total := 0
	for _, item := range c.Inventory {
		total += item.Units
	}
	return total
}

// FreeCapacity is the room left in the hold.
func (c Cargo) FreeCapacity() int {
	return c.Capacity - c.TotalUnits()
}

// ReservedUnits sums the units of items that strategies never touch.
func (c Cargo) ReservedUnits() int {
	total := 0
	for _, item := range c.Inventory {
		if IsReserved(item.Symbol) {
			total += item.Units
		}
	}
	return total
}

// Cooldown is a per-ship timestamp before which extract/survey/jump/scan
// cannot be re-issued. The zero Expiration means no active cooldown.
type Cooldown struct {
	Expiration time.Time
}

// Active reports whether the cooldown still blocks actions at t.
func (c Cooldown) Active(t time.Time) bool {
	return c.Expiration.After(t)
}

// Ship is the in-memory picture of one fleet ship.
type Ship struct {
	Symbol   string
	Nav      Nav
	Fuel     Fuel
	Cargo    Cargo
	Cooldown Cooldown
}
