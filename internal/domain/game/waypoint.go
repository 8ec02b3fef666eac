package game

import (
	"math"
	"strings"
)

// Waypoint traits the strategies care about.
const (
	TraitMarketplace = "MARKETPLACE"
	TraitShipyard    = "SHIPYARD"
)

// Waypoint is a coordinate within a system.
type Waypoint struct {
	Symbol       string
	SystemSymbol string
	Type         string
	X            float64
	Y            float64
	Traits       []string
}

// HasTrait reports whether the waypoint carries the given trait symbol.
func (w *Waypoint) HasTrait(trait string) bool {
	for _, t := range w.Traits {
		if t == trait {
			return true
		}
	}
	return false
}

// Distance is the Euclidean distance between two waypoints.
func Distance(ax, ay, bx, by float64) float64 {
	return math.Hypot(ax-bx, ay-by)
}

// SystemOf derives the system symbol from a waypoint symbol
// (X1-DC54-89945X belongs to X1-DC54).
func SystemOf(waypointSymbol string) string {
	parts := strings.SplitN(waypointSymbol, "-", 3)
	if len(parts) < 2 {
		return waypointSymbol
	}
	return parts[0] + "-" + parts[1]
}

// NearestWaypoint picks the waypoint closest to (x, y), or nil when the
// candidate list is empty.
func NearestWaypoint(x, y float64, candidates []*Waypoint) *Waypoint {
	var nearest *Waypoint
	best := math.MaxFloat64
	for _, wp := range candidates {
		d := Distance(x, y, wp.X, wp.Y)
		if d < best {
			best = d
			nearest = wp
		}
	}
	return nearest
}
