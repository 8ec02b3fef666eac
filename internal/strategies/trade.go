package strategies

import (
	"context"
	"sort"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/andrescamacho/helmsman/internal/app"
	"github.com/andrescamacho/helmsman/internal/domain/game"
	"github.com/andrescamacho/helmsman/internal/engine"
)

const (
	// Planner economics. Margins are estimated for a nominal hold and an
	// average fuel price rather than the assigned ship's exact numbers.
	assumedCargo     = 60
	avgFuelPrice     = 240
	fuelUnitDistance = 50

	// A route must clear this margin per trip to be worth flying.
	tripMarginThreshold = 20 * assumedCargo

	// How long the scout idles after finishing a full tour of the
	// system's marketplaces before starting the next refresh round.
	scoutRefreshInterval = 30 * time.Minute

	// Refuel at the source when the round trip would burn most of the
	// tank: 2.5 legs of the route distance against current fuel.
	refuelTripFactor = 2.5
)

// TradeRoute is one (buy at source, sell at target) pairing for a single
// resource, with its estimated per-trip margin.
type TradeRoute struct {
	Resource   string
	Source     string
	Target     string
	TripMargin float64
}

// sameRoute reports whether two routes trade the same resource over the
// same pair of waypoints.
func sameRoute(a, b *TradeRoute) bool {
	return a != nil && b != nil &&
		a.Resource == b.Resource && a.Source == b.Source && a.Target == b.Target
}

// marketQuote is one market's prices for one resource.
type marketQuote struct {
	waypoint string
	purchase int
	sell     int
}

// SystemTradeStrategy runs in-system arbitrage: a scout ship tours every
// marketplace refreshing price data, and a pool of trader ships flies
// buy/sell loops on routes picked by the planner.
//
// All entry points run under the state lock, which also guards the
// strategy-local maps.
type SystemTradeStrategy struct {
	p   *app.Params
	log *zap.Logger

	targetSystem    string
	targetWaypoints map[string]*game.Waypoint
	marketplaces    []string
	visited         map[string]bool
	scout           string

	assignedShips      map[string]bool
	routes             map[string]*TradeRoute
	pendingRouteChange map[string]*TradeRoute
	haltTrade          bool

	pendingNavigateMarket map[int64]string
	pendingNavigateSource map[int64]string
	pendingNavigateTarget map[int64]string
	pendingFetchMarket    map[int64]string
}

// NewSystemTradeStrategy subscribes to the completions the trade loops
// react to.
func NewSystemTradeStrategy(p *app.Params) *SystemTradeStrategy {
	s := &SystemTradeStrategy{
		p:   p,
		log: p.Log.Named("trade_strategy"),

		targetWaypoints: make(map[string]*game.Waypoint),
		visited:         make(map[string]bool),

		assignedShips:      make(map[string]bool),
		routes:             make(map[string]*TradeRoute),
		pendingRouteChange: make(map[string]*TradeRoute),

		pendingNavigateMarket: make(map[int64]string),
		pendingNavigateSource: make(map[int64]string),
		pendingNavigateTarget: make(map[int64]string),
		pendingFetchMarket:    make(map[int64]string),
	}

	p.Queue.Subscribe(engine.TypeShip, "navigate", s.onNavigate)
	p.Queue.Subscribe(engine.TypeSystem, "fetch_market", s.onFetchMarket)
	return s
}

// AssignShip adds a ship to the trader pool. With an explicit route it
// starts flying immediately; otherwise it stands by until the planner
// finds one.
func (s *SystemTradeStrategy) AssignShip(symbol string, route *TradeRoute) {
	s.p.State.Lock()
	defer s.p.State.Unlock()

	s.assignedShips[symbol] = true
	if route != nil {
		s.startRoute(symbol, route)
		return
	}
	s.log.Info("trader standing by", zap.String("ship", symbol))
}

// AssignMarketUpdater makes the ship the marketplace scout for a system.
func (s *SystemTradeStrategy) AssignMarketUpdater(symbol, system string) {
	s.p.State.Lock()
	defer s.p.State.Unlock()

	s.targetSystem = system
	s.scout = symbol
	s.loadSystemWaypoints(system)

	s.marketplaces = nil
	s.visited = make(map[string]bool)
	for _, wp := range s.targetWaypoints {
		if wp.HasTrait(game.TraitMarketplace) {
			s.marketplaces = append(s.marketplaces, wp.Symbol)
		}
	}
	sort.Strings(s.marketplaces)

	ship, ok := s.p.State.Ship(symbol)
	if !ok {
		s.log.Warn("unknown scout ship", zap.String("ship", symbol))
		return
	}

	next := s.nearestUnvisited(s.shipPosition(ship))
	if next == nil {
		s.log.Warn("no marketplaces in system", zap.String("system", system))
		return
	}

	events := putBatch(s.p.Queue,
		flightModeSpec(symbol, game.FlightModeBurn),
		orbitSpec(symbol),
		navigateSpec(symbol, next.Symbol))
	s.pendingNavigateMarket[events[len(events)-1].ID] = next.Symbol
	s.log.Info("scout assigned",
		zap.String("ship", symbol),
		zap.String("system", system),
		zap.Int("marketplaces", len(s.marketplaces)))
}

// BuildTradeRoutes runs the planner against the accumulated market data
// and re-targets the trader pool.
func (s *SystemTradeStrategy) BuildTradeRoutes() {
	s.p.State.Lock()
	defer s.p.State.Unlock()
	s.buildTradeRoutes()
}

// loadSystemWaypoints fills targetWaypoints from the store, falling back
// to whatever state already holds. Caller holds the state lock.
func (s *SystemTradeStrategy) loadSystemWaypoints(system string) {
	s.targetWaypoints = make(map[string]*game.Waypoint)

	if s.p.Store != nil {
		waypoints, err := s.p.Store.LoadWaypoints(context.Background(), system)
		if err != nil {
			s.log.Warn("waypoint load failed", zap.String("system", system), zap.Error(err))
		}
		for _, wp := range waypoints {
			s.targetWaypoints[wp.Symbol] = wp
		}
	}
	for symbol, wp := range s.p.State.Waypoints {
		if wp.SystemSymbol == system {
			s.targetWaypoints[symbol] = wp
		}
	}
}

// shipPosition resolves a ship's coordinates within the target system.
func (s *SystemTradeStrategy) shipPosition(ship *game.Ship) (float64, float64) {
	if wp, ok := s.targetWaypoints[ship.Nav.WaypointSymbol]; ok {
		return wp.X, wp.Y
	}
	dest := ship.Nav.Route.Destination
	return dest.X, dest.Y
}

// nearestUnvisited picks the closest marketplace the scout has not
// refreshed this round.
func (s *SystemTradeStrategy) nearestUnvisited(x, y float64) *game.Waypoint {
	candidates := make([]*game.Waypoint, 0, len(s.marketplaces))
	for _, symbol := range s.marketplaces {
		if s.visited[symbol] {
			continue
		}
		if wp, ok := s.targetWaypoints[symbol]; ok {
			candidates = append(candidates, wp)
		}
	}
	return game.NearestWaypoint(x, y, candidates)
}

// buildTradeRoutes pairs the cheapest purchase markets with the richest
// sell markets per resource and keeps the pairings that clear the margin
// threshold. Caller holds the state lock.
func (s *SystemTradeStrategy) buildTradeRoutes() {
	markets := s.p.State.MarketsInSystem(s.targetSystem)

	quotes := make(map[string][]marketQuote)
	for waypoint, market := range markets {
		if _, ok := s.targetWaypoints[waypoint]; !ok {
			continue
		}
		for _, good := range market.TradeGoods {
			quotes[good.Symbol] = append(quotes[good.Symbol], marketQuote{
				waypoint: waypoint,
				purchase: good.PurchasePrice,
				sell:     good.SellPrice,
			})
		}
	}

	var candidates []*TradeRoute
	for _, resource := range lo.Keys(quotes) {
		buyOrder := append([]marketQuote(nil), quotes[resource]...)
		sellOrder := append([]marketQuote(nil), quotes[resource]...)
		sort.Slice(buyOrder, func(i, j int) bool { return buyOrder[i].purchase < buyOrder[j].purchase })
		sort.Slice(sellOrder, func(i, j int) bool { return sellOrder[i].sell > sellOrder[j].sell })

		for i := range buyOrder {
			source, target := buyOrder[i], sellOrder[i]
			if source.waypoint == target.waypoint {
				continue
			}
			rawMargin := float64(assumedCargo * (target.sell - source.purchase))
			fuelCost := s.routeDistance(source.waypoint, target.waypoint) / fuelUnitDistance * avgFuelPrice
			tripMargin := rawMargin - fuelCost
			if tripMargin < tripMarginThreshold {
				continue
			}
			candidates = append(candidates, &TradeRoute{
				Resource:   resource,
				Source:     source.waypoint,
				Target:     target.waypoint,
				TripMargin: tripMargin,
			})
		}
	}

	if len(candidates) == 0 {
		s.haltTrade = true
		s.log.Warn("no profitable route, trading halted", zap.String("system", s.targetSystem))
		return
	}
	s.haltTrade = false

	best := lo.MaxBy(candidates, func(a, b *TradeRoute) bool { return a.TripMargin > b.TripMargin })
	s.log.Info("best route",
		zap.String("resource", best.Resource),
		zap.String("source", best.Source),
		zap.String("target", best.Target),
		zap.Float64("margin", best.TripMargin))

	for _, symbol := range lo.Keys(s.assignedShips) {
		current := s.routes[symbol]
		if current == nil {
			s.startRoute(symbol, best)
			continue
		}
		if !sameRoute(current, best) {
			s.pendingRouteChange[symbol] = best
		}
	}
}

// routeDistance is the Euclidean distance between two known waypoints.
func (s *SystemTradeStrategy) routeDistance(a, b string) float64 {
	wa, okA := s.targetWaypoints[a]
	wb, okB := s.targetWaypoints[b]
	if !okA || !okB {
		return 0
	}
	return game.Distance(wa.X, wa.Y, wb.X, wb.Y)
}

// startRoute puts a standby trader onto a route. Caller holds the state
// lock.
func (s *SystemTradeStrategy) startRoute(symbol string, route *TradeRoute) {
	s.routes[symbol] = route
	s.log.Info("route assigned",
		zap.String("ship", symbol),
		zap.String("resource", route.Resource),
		zap.String("source", route.Source),
		zap.String("target", route.Target))

	ship, ok := s.p.State.Ship(symbol)
	if ok && ship.Nav.WaypointSymbol == route.Source && ship.Nav.Status != game.NavStatusInTransit {
		s.sourceArrival(symbol, s.p.Clock.Now())
		return
	}

	events := putBatch(s.p.Queue, orbitSpec(symbol), navigateSpec(symbol, route.Source))
	s.pendingNavigateSource[events[len(events)-1].ID] = symbol
}

// onNavigate dispatches a navigate completion to whichever loop recorded
// its ID.
func (s *SystemTradeStrategy) onNavigate(ev *engine.Event) {
	s.p.State.Lock()
	defer s.p.State.Unlock()

	if waypoint, ok := s.pendingNavigateMarket[ev.ID]; ok {
		delete(s.pendingNavigateMarket, ev.ID)
		s.scoutArrival(waypoint)
		return
	}
	if symbol, ok := s.pendingNavigateSource[ev.ID]; ok {
		delete(s.pendingNavigateSource, ev.ID)
		s.sourceNavigateDone(symbol)
		return
	}
	if symbol, ok := s.pendingNavigateTarget[ev.ID]; ok {
		delete(s.pendingNavigateTarget, ev.ID)
		s.targetArrival(symbol)
	}
}

// scoutArrival queues a market refresh once the scout reaches the
// marketplace. Caller holds the state lock.
func (s *SystemTradeStrategy) scoutArrival(waypoint string) {
	ship, ok := s.p.State.Ship(s.scout)
	if !ok {
		return
	}

	events := scheduleBatch(s.p.Queue, ship.Nav.Route.Arrival, fetchMarketSpec(waypoint))
	s.pendingFetchMarket[events[0].ID] = waypoint
}

// onFetchMarket advances the scout tour: mark the marketplace visited and
// head for the nearest remaining one. A finished round rebuilds the trade
// routes and defers the next round by the refresh interval.
func (s *SystemTradeStrategy) onFetchMarket(ev *engine.Event) {
	s.p.State.Lock()
	defer s.p.State.Unlock()

	waypoint, ok := s.pendingFetchMarket[ev.ID]
	if !ok {
		return
	}
	delete(s.pendingFetchMarket, ev.ID)
	s.visited[waypoint] = true

	here, ok := s.targetWaypoints[waypoint]
	if !ok {
		return
	}

	next := s.nearestUnvisited(here.X, here.Y)
	if next != nil {
		events := putBatch(s.p.Queue, navigateSpec(s.scout, next.Symbol))
		s.pendingNavigateMarket[events[0].ID] = next.Symbol
		return
	}

	// Tour complete: plan with the fresh data, then start the next round
	// after the refresh interval.
	s.buildTradeRoutes()
	s.visited = make(map[string]bool)
	s.visited[waypoint] = true

	next = s.nearestUnvisited(here.X, here.Y)
	if next == nil {
		s.log.Warn("single marketplace system, scout parked", zap.String("waypoint", waypoint))
		return
	}
	when := s.p.Clock.Now().Add(scoutRefreshInterval)
	events := scheduleBatch(s.p.Queue, when, navigateSpec(s.scout, next.Symbol))
	s.pendingNavigateMarket[events[0].ID] = next.Symbol
	s.log.Info("market tour complete",
		zap.String("system", s.targetSystem),
		zap.Time("next_round", when))
}

// sourceNavigateDone fires when a trader's navigate to its source
// waypoint completes. Caller holds the state lock.
func (s *SystemTradeStrategy) sourceNavigateDone(symbol string) {
	ship, ok := s.p.State.Ship(symbol)
	if !ok {
		return
	}
	s.sourceArrival(symbol, ship.Nav.Route.Arrival.Add(arrivalSlack))
}

// sourceArrival schedules the buy leg: dock, top up fuel when the round
// trip warrants it, dump stray cargo, fill the hold with the traded
// resource and head for the target. Caller holds the state lock.
func (s *SystemTradeStrategy) sourceArrival(symbol string, when time.Time) {
	route := s.routes[symbol]
	ship, ok := s.p.State.Ship(symbol)
	if route == nil || !ok {
		return
	}

	specs := []engine.Spec{dockSpec(symbol)}
	if refuelTripFactor*s.routeDistance(route.Source, route.Target) >= float64(ship.Fuel.Current) {
		specs = append(specs, refuelSpec(symbol))
	}
	for _, item := range ship.Cargo.Inventory {
		if game.IsReserved(item.Symbol) || item.Symbol == route.Resource {
			continue
		}
		specs = append(specs, jettisonSpec(symbol, item.Symbol, -1))
	}
	specs = append(specs,
		buySpec(symbol, route.Resource, -1),
		orbitSpec(symbol),
		navigateSpec(symbol, route.Target))

	events := scheduleBatch(s.p.Queue, when, specs...)
	s.pendingNavigateTarget[events[len(events)-1].ID] = symbol
}

// targetArrival schedules the sell leg and decides what the trader does
// next: switch to a pending route, stop on a halt, or fly the loop again.
// Caller holds the state lock.
func (s *SystemTradeStrategy) targetArrival(symbol string) {
	route := s.routes[symbol]
	ship, ok := s.p.State.Ship(symbol)
	if route == nil || !ok {
		return
	}
	when := ship.Nav.Route.Arrival.Add(arrivalSlack)

	if change, ok := s.pendingRouteChange[symbol]; ok {
		delete(s.pendingRouteChange, symbol)
		scheduleBatch(s.p.Queue, when,
			dockSpec(symbol),
			sellSpec(symbol, route.Resource, -1),
			refuelSpec(symbol),
			orbitSpec(symbol))
		s.routes[symbol] = change
		s.log.Info("route switched",
			zap.String("ship", symbol),
			zap.String("resource", change.Resource))

		if change.Source == route.Target {
			s.sourceArrival(symbol, when)
			return
		}
		events := scheduleBatch(s.p.Queue, when, navigateSpec(symbol, change.Source))
		s.pendingNavigateSource[events[0].ID] = symbol
		return
	}

	if s.haltTrade {
		scheduleBatch(s.p.Queue, when,
			dockSpec(symbol),
			sellSpec(symbol, route.Resource, -1),
			orbitSpec(symbol))
		delete(s.routes, symbol)
		s.log.Info("trader halted", zap.String("ship", symbol))
		return
	}

	events := scheduleBatch(s.p.Queue, when,
		dockSpec(symbol),
		sellSpec(symbol, route.Resource, -1),
		orbitSpec(symbol),
		navigateSpec(symbol, route.Source))
	s.pendingNavigateSource[events[len(events)-1].ID] = symbol
}
