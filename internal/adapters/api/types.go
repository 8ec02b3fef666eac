package api

import (
	"time"

	"github.com/andrescamacho/helmsman/internal/domain/game"
	"github.com/andrescamacho/helmsman/internal/domain/ports"
)

// Wire shapes of the remote API, converted into domain values at the
// client boundary so nothing above this package sees JSON tags.

type agentJSON struct {
	AccountID       string `json:"accountId"`
	Symbol          string `json:"symbol"`
	Headquarters    string `json:"headquarters"`
	Credits         int    `json:"credits"`
	StartingFaction string `json:"startingFaction"`
}

func (a agentJSON) toDomain() game.Agent {
	return game.Agent{
		AccountID:       a.AccountID,
		Symbol:          a.Symbol,
		Headquarters:    a.Headquarters,
		Credits:         a.Credits,
		StartingFaction: a.StartingFaction,
	}
}

type routeEndpointJSON struct {
	Symbol string  `json:"symbol"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type navJSON struct {
	SystemSymbol   string `json:"systemSymbol"`
	WaypointSymbol string `json:"waypointSymbol"`
	Status         string `json:"status"`
	FlightMode     string `json:"flightMode"`
	Route          struct {
		Origin        routeEndpointJSON `json:"origin"`
		Destination   routeEndpointJSON `json:"destination"`
		DepartureTime string            `json:"departureTime"`
		Arrival       string            `json:"arrival"`
	} `json:"route"`
}

func (n navJSON) toDomain() game.Nav {
	return game.Nav{
		SystemSymbol:   n.SystemSymbol,
		WaypointSymbol: n.WaypointSymbol,
		Status:         n.Status,
		FlightMode:     n.FlightMode,
		Route: game.Route{
			Departure: game.RouteEndpoint{
				Symbol: n.Route.Origin.Symbol,
				X:      n.Route.Origin.X,
				Y:      n.Route.Origin.Y,
			},
			Destination: game.RouteEndpoint{
				Symbol: n.Route.Destination.Symbol,
				X:      n.Route.Destination.X,
				Y:      n.Route.Destination.Y,
			},
			DepartureTime: parseTime(n.Route.DepartureTime),
			Arrival:       parseTime(n.Route.Arrival),
		},
	}
}

type fuelJSON struct {
	Current  int `json:"current"`
	Capacity int `json:"capacity"`
}

func (f fuelJSON) toDomain() game.Fuel {
	return game.Fuel{Current: f.Current, Capacity: f.Capacity}
}

type cargoJSON struct {
	Capacity  int `json:"capacity"`
	Units     int `json:"units"`
	Inventory []struct {
		Symbol string `json:"symbol"`
		Units  int    `json:"units"`
	} `json:"inventory"`
}

func (c cargoJSON) toDomain() game.Cargo {
	inventory := make([]game.CargoItem, len(c.Inventory))
	for i, item := range c.Inventory {
		inventory[i] = game.CargoItem{Symbol: item.Symbol, Units: item.Units}
	}
	return game.Cargo{Capacity: c.Capacity, Units: c.Units, Inventory: inventory}
}

type cooldownJSON struct {
	TotalSeconds     int    `json:"totalSeconds"`
	RemainingSeconds int    `json:"remainingSeconds"`
	Expiration       string `json:"expiration"`
}

func (c cooldownJSON) toDomain() game.Cooldown {
	return game.Cooldown{Expiration: parseTime(c.Expiration)}
}

type shipJSON struct {
	Symbol string    `json:"symbol"`
	Nav    navJSON   `json:"nav"`
	Fuel   fuelJSON  `json:"fuel"`
	Cargo  cargoJSON `json:"cargo"`
}

func (s shipJSON) toDomain() *game.Ship {
	return &game.Ship{
		Symbol: s.Symbol,
		Nav:    s.Nav.toDomain(),
		Fuel:   s.Fuel.toDomain(),
		Cargo:  s.Cargo.toDomain(),
	}
}

type contractJSON struct {
	ID            string `json:"id"`
	FactionSymbol string `json:"factionSymbol"`
	Type          string `json:"type"`
	Terms         struct {
		Deadline string `json:"deadline"`
		Payment  struct {
			OnAccepted  int `json:"onAccepted"`
			OnFulfilled int `json:"onFulfilled"`
		} `json:"payment"`
		Deliver []struct {
			TradeSymbol       string `json:"tradeSymbol"`
			DestinationSymbol string `json:"destinationSymbol"`
			UnitsRequired     int    `json:"unitsRequired"`
			UnitsFulfilled    int    `json:"unitsFulfilled"`
		} `json:"deliver"`
	} `json:"terms"`
	Accepted  bool `json:"accepted"`
	Fulfilled bool `json:"fulfilled"`
}

func (c contractJSON) toDomain() *game.Contract {
	deliveries := make([]game.ContractDeliverTerm, len(c.Terms.Deliver))
	for i, term := range c.Terms.Deliver {
		deliveries[i] = game.ContractDeliverTerm{
			TradeSymbol:       term.TradeSymbol,
			DestinationSymbol: term.DestinationSymbol,
			UnitsRequired:     term.UnitsRequired,
			UnitsFulfilled:    term.UnitsFulfilled,
		}
	}
	return &game.Contract{
		ID:               c.ID,
		FactionSymbol:    c.FactionSymbol,
		Type:             c.Type,
		Deliveries:       deliveries,
		Deadline:         parseTime(c.Terms.Deadline),
		PaymentOnAccept:  c.Terms.Payment.OnAccepted,
		PaymentOnFulfill: c.Terms.Payment.OnFulfilled,
		Accepted:         c.Accepted,
		Fulfilled:        c.Fulfilled,
	}
}

type surveyJSON struct {
	Signature string `json:"signature"`
	Symbol    string `json:"symbol"`
	Deposits  []struct {
		Symbol string `json:"symbol"`
	} `json:"deposits"`
	Expiration string `json:"expiration"`
	Size       string `json:"size"`
}

func (s surveyJSON) toDomain() *game.Survey {
	deposits := make([]string, len(s.Deposits))
	for i, deposit := range s.Deposits {
		deposits[i] = deposit.Symbol
	}
	return &game.Survey{
		Signature:      s.Signature,
		WaypointSymbol: s.Symbol,
		Deposits:       deposits,
		Size:           s.Size,
		Expiration:     parseTime(s.Expiration),
	}
}

// surveyBody rebuilds the wire form of a survey for targeted extraction:
// the remote validates the full original object, not just the signature.
func surveyBody(s *game.Survey) map[string]any {
	deposits := make([]map[string]string, len(s.Deposits))
	for i, deposit := range s.Deposits {
		deposits[i] = map[string]string{"symbol": deposit}
	}
	return map[string]any{
		"signature":  s.Signature,
		"symbol":     s.WaypointSymbol,
		"deposits":   deposits,
		"expiration": s.Expiration.UTC().Format(time.RFC3339),
		"size":       s.Size,
	}
}

type waypointJSON struct {
	Symbol       string  `json:"symbol"`
	SystemSymbol string  `json:"systemSymbol"`
	Type         string  `json:"type"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Traits       []struct {
		Symbol string `json:"symbol"`
	} `json:"traits"`
}

func (w waypointJSON) toDomain() *game.Waypoint {
	traits := make([]string, len(w.Traits))
	for i, trait := range w.Traits {
		traits[i] = trait.Symbol
	}
	systemSymbol := w.SystemSymbol
	if systemSymbol == "" {
		systemSymbol = game.SystemOf(w.Symbol)
	}
	return &game.Waypoint{
		Symbol:       w.Symbol,
		SystemSymbol: systemSymbol,
		Type:         w.Type,
		X:            w.X,
		Y:            w.Y,
		Traits:       traits,
	}
}

type tradeGoodJSON struct {
	Symbol        string `json:"symbol"`
	Supply        string `json:"supply"`
	TradeVolume   int    `json:"tradeVolume"`
	PurchasePrice int    `json:"purchasePrice"`
	SellPrice     int    `json:"sellPrice"`
}

type symbolJSON struct {
	Symbol string `json:"symbol"`
}

type marketJSON struct {
	Symbol     string          `json:"symbol"`
	Imports    []symbolJSON    `json:"imports"`
	Exports    []symbolJSON    `json:"exports"`
	Exchange   []symbolJSON    `json:"exchange"`
	TradeGoods []tradeGoodJSON `json:"tradeGoods"`
}

func symbolList(items []symbolJSON) []string {
	symbols := make([]string, len(items))
	for i, item := range items {
		symbols[i] = item.Symbol
	}
	return symbols
}

func (m marketJSON) toDomain() *game.Market {
	goods := make([]game.TradeGood, len(m.TradeGoods))
	for i, good := range m.TradeGoods {
		goods[i] = game.TradeGood{
			Symbol:        good.Symbol,
			Supply:        good.Supply,
			TradeVolume:   good.TradeVolume,
			PurchasePrice: good.PurchasePrice,
			SellPrice:     good.SellPrice,
		}
	}
	return &game.Market{
		WaypointSymbol: m.Symbol,
		Imports:        symbolList(m.Imports),
		Exports:        symbolList(m.Exports),
		Exchange:       symbolList(m.Exchange),
		TradeGoods:     goods,
	}
}

type transactionJSON struct {
	WaypointSymbol string `json:"waypointSymbol"`
	ShipSymbol     string `json:"shipSymbol"`
	TradeSymbol    string `json:"tradeSymbol"`
	Units          int    `json:"units"`
	PricePerUnit   int    `json:"pricePerUnit"`
	TotalPrice     int    `json:"totalPrice"`
}

func (t transactionJSON) toTradeResult(cargo cargoJSON, agent agentJSON) *ports.TradeResult {
	return &ports.TradeResult{
		Cargo:        cargo.toDomain(),
		Agent:        agent.toDomain(),
		TradeSymbol:  t.TradeSymbol,
		Units:        t.Units,
		PricePerUnit: t.PricePerUnit,
		TotalPrice:   t.TotalPrice,
	}
}

// parseTime decodes the API's RFC3339 timestamps; a missing or malformed
// value becomes the zero time.
func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
