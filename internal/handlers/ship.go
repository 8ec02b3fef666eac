package handlers

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/andrescamacho/helmsman/internal/app"
	"github.com/andrescamacho/helmsman/internal/domain/game"
	"github.com/andrescamacho/helmsman/internal/domain/ports"
	"github.com/andrescamacho/helmsman/internal/engine"
)

// ShipHandler implements the SHIP.* remote operations: validate state,
// call the game API, apply the returned delta under the state lock.
type ShipHandler struct {
	p   *app.Params
	log *zap.Logger
}

// NewShipHandler creates the ship handler.
func NewShipHandler(p *app.Params) *ShipHandler {
	return &ShipHandler{p: p, log: p.Log.Named("ships")}
}

// Register binds every ship event name.
func (h *ShipHandler) Register(reg *engine.Registry) {
	reg.Register(engine.TypeShip, "dock", h.Dock)
	reg.Register(engine.TypeShip, "orbit", h.Orbit)
	reg.Register(engine.TypeShip, "navigate", h.Navigate)
	reg.Register(engine.TypeShip, "refuel", h.Refuel)
	reg.Register(engine.TypeShip, "extract", h.Extract)
	reg.Register(engine.TypeShip, "survey", h.Survey)
	reg.Register(engine.TypeShip, "sell_cargo_item", h.SellCargoItem)
	reg.Register(engine.TypeShip, "buy_cargo_item", h.BuyCargoItem)
	reg.Register(engine.TypeShip, "jettison_cargo_item", h.JettisonCargoItem)
	reg.Register(engine.TypeShip, "purchase", h.Purchase)
	reg.Register(engine.TypeShip, "jump", h.Jump)
	reg.Register(engine.TypeShip, "flight_mode", h.FlightMode)
	reg.Register(engine.TypeShip, "chart", h.Chart)
	reg.Register(engine.TypeShip, "scan_waypoints", h.ScanWaypoints)
	reg.Register(engine.TypeShip, "fetch_all", h.FetchAll)
	reg.Register(engine.TypeShip, "load_survey", h.LoadSurvey)
}

// ship reads a ship under the lock; a missing ship is a validation skip.
func (h *ShipHandler) ship(symbol string) (*game.Ship, bool) {
	h.p.State.Lock()
	defer h.p.State.Unlock()
	ship, ok := h.p.State.Ship(symbol)
	return ship, ok
}

// Dock docks the ship. SKIP when already docked.
func (h *ShipHandler) Dock(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.ShipPayload)
	if !ok {
		return engine.ResultSkip
	}
	ship, ok := h.ship(payload.Ship)
	if !ok {
		h.log.Warn("unknown ship", zap.String("ship", payload.Ship))
		return engine.ResultSkip
	}
	if ship.Nav.Status == game.NavStatusDocked {
		return engine.ResultSkip
	}

	nav, err := h.p.API.Dock(context.Background(), payload.Ship)
	if err != nil {
		h.log.Error("dock failed", zap.String("ship", payload.Ship), zap.Error(err))
		return engine.ResultFail
	}

	h.p.State.Lock()
	ship.Nav = *nav
	h.p.State.Unlock()

	h.log.Info("docked",
		zap.String("ship", payload.Ship),
		zap.String("waypoint", nav.WaypointSymbol))
	return engine.ResultSuccess
}

// Orbit moves the ship into orbit. SKIP when already orbiting.
func (h *ShipHandler) Orbit(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.ShipPayload)
	if !ok {
		return engine.ResultSkip
	}
	ship, ok := h.ship(payload.Ship)
	if !ok {
		h.log.Warn("unknown ship", zap.String("ship", payload.Ship))
		return engine.ResultSkip
	}
	if ship.Nav.Status == game.NavStatusInOrbit {
		return engine.ResultSkip
	}

	nav, err := h.p.API.Orbit(context.Background(), payload.Ship)
	if err != nil {
		h.log.Error("orbit failed", zap.String("ship", payload.Ship), zap.Error(err))
		return engine.ResultFail
	}

	h.p.State.Lock()
	ship.Nav = *nav
	h.p.State.Unlock()

	h.log.Info("entered orbit",
		zap.String("ship", payload.Ship),
		zap.String("waypoint", nav.WaypointSymbol))
	return engine.ResultSuccess
}

// Navigate always executes; the remote side decides what a navigate to the
// current waypoint means.
func (h *ShipHandler) Navigate(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.NavigatePayload)
	if !ok {
		return engine.ResultSkip
	}
	ship, ok := h.ship(payload.Ship)
	if !ok {
		h.log.Warn("unknown ship", zap.String("ship", payload.Ship))
		return engine.ResultSkip
	}

	result, err := h.p.API.Navigate(context.Background(), payload.Ship, payload.Waypoint)
	if err != nil {
		h.log.Error("navigate failed",
			zap.String("ship", payload.Ship),
			zap.String("waypoint", payload.Waypoint),
			zap.Error(err))
		return engine.ResultFail
	}

	h.p.State.Lock()
	ship.Nav = result.Nav
	ship.Fuel = result.Fuel
	h.p.State.Unlock()

	h.log.Info("navigating",
		zap.String("ship", payload.Ship),
		zap.String("waypoint", payload.Waypoint),
		zap.Time("arrival", result.Nav.Route.Arrival))
	return engine.ResultSuccess
}

// Refuel tops the tank up. SKIP when already full.
func (h *ShipHandler) Refuel(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.ShipPayload)
	if !ok {
		return engine.ResultSkip
	}
	ship, ok := h.ship(payload.Ship)
	if !ok {
		h.log.Warn("unknown ship", zap.String("ship", payload.Ship))
		return engine.ResultSkip
	}
	if ship.Fuel.Current == ship.Fuel.Capacity {
		return engine.ResultSkip
	}

	result, err := h.p.API.Refuel(context.Background(), payload.Ship)
	if err != nil {
		h.log.Error("refuel failed", zap.String("ship", payload.Ship), zap.Error(err))
		return engine.ResultFail
	}

	h.p.State.Lock()
	ship.Fuel = result.Fuel
	h.p.State.Agent = result.Agent
	h.p.State.Unlock()

	h.log.Info("refueled",
		zap.String("ship", payload.Ship),
		zap.Int("fuel", result.Fuel.Current),
		zap.Int("cost", result.TotalPrice))
	return engine.ResultSuccess
}

// Extract mines at the current waypoint, optionally biased by a survey.
// An expired or missing survey silently downgrades to untargeted mining.
func (h *ShipHandler) Extract(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.ExtractPayload)
	if !ok {
		return engine.ResultSkip
	}
	ship, ok := h.ship(payload.Ship)
	if !ok {
		h.log.Warn("unknown ship", zap.String("ship", payload.Ship))
		return engine.ResultSkip
	}

	var survey *game.Survey
	if payload.SurveySignature != "" {
		h.p.State.Lock()
		found, live := h.p.State.Surveys.Get(ship.Nav.WaypointSymbol, payload.SurveySignature)
		h.p.State.Unlock()
		if live {
			survey = found
		} else {
			h.log.Debug("requested survey expired, extracting untargeted",
				zap.String("signature", payload.SurveySignature))
		}
	}

	result, err := h.p.API.Extract(context.Background(), payload.Ship, survey)
	if err != nil {
		h.log.Error("extract failed", zap.String("ship", payload.Ship), zap.Error(err))
		return engine.ResultFail
	}

	h.p.State.Lock()
	ship.Cargo = result.Cargo
	ship.Cooldown = result.Cooldown
	h.p.State.Unlock()

	h.log.Info("extracted",
		zap.String("ship", payload.Ship),
		zap.String("resource", result.YieldSymbol),
		zap.Int("units", result.YieldUnits),
		zap.Time("cooldown", result.Cooldown.Expiration))
	return engine.ResultSuccess
}

// Survey creates surveys at the current waypoint and caches them, both in
// memory and as blobs through the store.
func (h *ShipHandler) Survey(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.ShipPayload)
	if !ok {
		return engine.ResultSkip
	}
	ship, ok := h.ship(payload.Ship)
	if !ok {
		h.log.Warn("unknown ship", zap.String("ship", payload.Ship))
		return engine.ResultSkip
	}

	result, err := h.p.API.Survey(context.Background(), payload.Ship)
	if err != nil {
		h.log.Error("survey failed", zap.String("ship", payload.Ship), zap.Error(err))
		return engine.ResultFail
	}

	h.p.State.Lock()
	ship.Cooldown = result.Cooldown
	for _, survey := range result.Surveys {
		h.p.State.Surveys.Add(survey)
	}
	h.p.State.Unlock()

	for _, survey := range result.Surveys {
		h.log.Info("created survey",
			zap.String("ship", payload.Ship),
			zap.String("signature", survey.Signature),
			zap.String("size", survey.Size),
			zap.Strings("deposits", survey.Deposits))
		h.persistSurvey(survey)
	}
	return engine.ResultSuccess
}

func (h *ShipHandler) persistSurvey(survey *game.Survey) {
	if h.p.Store == nil {
		return
	}
	ctx := context.Background()
	if err := h.p.Store.SaveSurvey(ctx, survey); err != nil {
		h.log.Warn("survey persist failed", zap.String("signature", survey.Signature), zap.Error(err))
		return
	}
	if blob, err := json.Marshal(survey); err == nil {
		if err := h.p.Store.SaveSnapshot(ctx, ports.SnapshotSurvey, survey.Signature, blob); err != nil {
			h.log.Warn("survey snapshot failed", zap.String("signature", survey.Signature), zap.Error(err))
		}
	}
}

// LoadSurvey reloads a persisted survey into the in-memory registry.
// No remote request: INSTANT.
func (h *ShipHandler) LoadSurvey(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.LoadSurveyPayload)
	if !ok || h.p.Store == nil {
		return engine.ResultSkip
	}

	survey, err := h.p.Store.LoadSurvey(context.Background(), payload.Signature)
	if err != nil {
		h.log.Error("survey load failed", zap.String("signature", payload.Signature), zap.Error(err))
		return engine.ResultFail
	}

	h.p.State.Lock()
	h.p.State.Surveys.Add(survey)
	h.p.State.Unlock()

	h.log.Info("loaded survey", zap.String("signature", payload.Signature))
	return engine.ResultInstant
}

// SellCargoItem sells units of one resource; -1 sells everything held.
// Reserved items are never sold.
func (h *ShipHandler) SellCargoItem(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.CargoPayload)
	if !ok {
		return engine.ResultSkip
	}
	if game.IsReserved(payload.Resource) {
		h.log.Debug("refused to sell reserved item", zap.String("resource", payload.Resource))
		return engine.ResultSkip
	}
	ship, ok := h.ship(payload.Ship)
	if !ok {
		h.log.Warn("unknown ship", zap.String("ship", payload.Ship))
		return engine.ResultSkip
	}

	units := payload.Units
	if units == -1 {
		h.p.State.Lock()
		units = ship.Cargo.ResourceCount(payload.Resource)
		h.p.State.Unlock()
	}
	if units <= 0 {
		return engine.ResultSkip
	}

	result, err := h.p.API.Sell(context.Background(), payload.Ship, payload.Resource, units)
	if err != nil {
		h.log.Error("sell failed",
			zap.String("ship", payload.Ship),
			zap.String("resource", payload.Resource),
			zap.Error(err))
		return engine.ResultFail
	}

	h.p.State.Lock()
	ship.Cargo = result.Cargo
	h.p.State.Agent = result.Agent
	h.p.State.Unlock()

	h.recordTrade(ship, result, "SELL")
	h.log.Info("sold cargo",
		zap.String("ship", payload.Ship),
		zap.String("resource", result.TradeSymbol),
		zap.Int("units", result.Units),
		zap.Int("total", result.TotalPrice))
	return engine.ResultSuccess
}

// BuyCargoItem buys units of one resource; -1 fills the remaining cargo
// space, reserved stacks included in the occupancy count.
func (h *ShipHandler) BuyCargoItem(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.CargoPayload)
	if !ok {
		return engine.ResultSkip
	}
	ship, ok := h.ship(payload.Ship)
	if !ok {
		h.log.Warn("unknown ship", zap.String("ship", payload.Ship))
		return engine.ResultSkip
	}

	units := payload.Units
	if units == -1 {
		h.p.State.Lock()
		units = ship.Cargo.FreeCapacity()
		h.p.State.Unlock()
	}
	if units <= 0 {
		return engine.ResultSkip
	}

	result, err := h.p.API.Buy(context.Background(), payload.Ship, payload.Resource, units)
	if err != nil {
		h.log.Error("buy failed",
			zap.String("ship", payload.Ship),
			zap.String("resource", payload.Resource),
			zap.Error(err))
		return engine.ResultFail
	}

	h.p.State.Lock()
	ship.Cargo = result.Cargo
	h.p.State.Agent = result.Agent
	h.p.State.Unlock()

	h.recordTrade(ship, result, "BUY")
	h.log.Info("bought cargo",
		zap.String("ship", payload.Ship),
		zap.String("resource", result.TradeSymbol),
		zap.Int("units", result.Units),
		zap.Int("total", result.TotalPrice))
	return engine.ResultSuccess
}

// JettisonCargoItem dumps units of one resource; -1 dumps everything held.
func (h *ShipHandler) JettisonCargoItem(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.CargoPayload)
	if !ok {
		return engine.ResultSkip
	}
	if game.IsReserved(payload.Resource) {
		h.log.Debug("refused to jettison reserved item", zap.String("resource", payload.Resource))
		return engine.ResultSkip
	}
	ship, ok := h.ship(payload.Ship)
	if !ok {
		h.log.Warn("unknown ship", zap.String("ship", payload.Ship))
		return engine.ResultSkip
	}

	units := payload.Units
	if units == -1 {
		h.p.State.Lock()
		units = ship.Cargo.ResourceCount(payload.Resource)
		h.p.State.Unlock()
	}
	if units <= 0 {
		return engine.ResultSkip
	}

	cargo, err := h.p.API.Jettison(context.Background(), payload.Ship, payload.Resource, units)
	if err != nil {
		h.log.Error("jettison failed",
			zap.String("ship", payload.Ship),
			zap.String("resource", payload.Resource),
			zap.Error(err))
		return engine.ResultFail
	}

	h.p.State.Lock()
	ship.Cargo = *cargo
	h.p.State.Unlock()

	h.log.Info("jettisoned cargo",
		zap.String("ship", payload.Ship),
		zap.String("resource", payload.Resource),
		zap.Int("units", units))
	return engine.ResultSuccess
}

// Purchase buys a new ship at a shipyard waypoint.
func (h *ShipHandler) Purchase(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.PurchaseShipPayload)
	if !ok {
		return engine.ResultSkip
	}

	result, err := h.p.API.PurchaseShip(context.Background(), payload.Waypoint, payload.ShipType)
	if err != nil {
		h.log.Error("ship purchase failed",
			zap.String("waypoint", payload.Waypoint),
			zap.String("type", payload.ShipType),
			zap.Error(err))
		return engine.ResultFail
	}

	h.p.State.Lock()
	h.p.State.Agent = result.Agent
	h.p.State.Ships[result.Ship.Symbol] = result.Ship
	h.p.State.Unlock()

	h.log.Info("purchased ship",
		zap.String("ship", result.Ship.Symbol),
		zap.Int("price", result.Price))
	return engine.ResultSuccess
}

// Jump moves the ship to another system and starts the jump cooldown.
func (h *ShipHandler) Jump(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.JumpPayload)
	if !ok {
		return engine.ResultSkip
	}
	ship, ok := h.ship(payload.Ship)
	if !ok {
		h.log.Warn("unknown ship", zap.String("ship", payload.Ship))
		return engine.ResultSkip
	}

	result, err := h.p.API.Jump(context.Background(), payload.Ship, payload.System)
	if err != nil {
		h.log.Error("jump failed",
			zap.String("ship", payload.Ship),
			zap.String("system", payload.System),
			zap.Error(err))
		return engine.ResultFail
	}

	h.p.State.Lock()
	ship.Nav = result.Nav
	ship.Cooldown = result.Cooldown
	h.p.State.Unlock()

	h.log.Info("jumped",
		zap.String("ship", payload.Ship),
		zap.String("system", payload.System))
	return engine.ResultSuccess
}

// FlightMode patches the nav flight mode. SKIP when already set.
func (h *ShipHandler) FlightMode(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.FlightModePayload)
	if !ok {
		return engine.ResultSkip
	}
	ship, ok := h.ship(payload.Ship)
	if !ok {
		h.log.Warn("unknown ship", zap.String("ship", payload.Ship))
		return engine.ResultSkip
	}
	if ship.Nav.FlightMode == payload.Mode {
		return engine.ResultSkip
	}

	nav, err := h.p.API.PatchFlightMode(context.Background(), payload.Ship, payload.Mode)
	if err != nil {
		h.log.Error("flight mode change failed",
			zap.String("ship", payload.Ship),
			zap.String("mode", payload.Mode),
			zap.Error(err))
		return engine.ResultFail
	}

	h.p.State.Lock()
	ship.Nav = *nav
	h.p.State.Unlock()

	h.log.Info("flight mode set",
		zap.String("ship", payload.Ship),
		zap.String("mode", payload.Mode))
	return engine.ResultSuccess
}

// Chart records the current waypoint into the shared chart.
func (h *ShipHandler) Chart(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.ShipPayload)
	if !ok {
		return engine.ResultSkip
	}

	result, err := h.p.API.Chart(context.Background(), payload.Ship)
	if err != nil {
		h.log.Error("chart failed", zap.String("ship", payload.Ship), zap.Error(err))
		return engine.ResultFail
	}

	h.p.State.Lock()
	h.p.State.Waypoints[result.Waypoint.Symbol] = result.Waypoint
	h.p.State.Unlock()

	h.log.Info("charted waypoint",
		zap.String("ship", payload.Ship),
		zap.String("waypoint", result.Waypoint.Symbol))
	return engine.ResultSuccess
}

// ScanWaypoints scans the system's waypoints and starts the scan cooldown.
func (h *ShipHandler) ScanWaypoints(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.ShipPayload)
	if !ok {
		return engine.ResultSkip
	}
	ship, ok := h.ship(payload.Ship)
	if !ok {
		h.log.Warn("unknown ship", zap.String("ship", payload.Ship))
		return engine.ResultSkip
	}

	result, err := h.p.API.ScanWaypoints(context.Background(), payload.Ship)
	if err != nil {
		h.log.Error("scan failed", zap.String("ship", payload.Ship), zap.Error(err))
		return engine.ResultFail
	}

	h.p.State.Lock()
	ship.Cooldown = result.Cooldown
	for _, wp := range result.Waypoints {
		h.p.State.Waypoints[wp.Symbol] = wp
	}
	h.p.State.Unlock()

	h.log.Info("scanned waypoints",
		zap.String("ship", payload.Ship),
		zap.Int("count", len(result.Waypoints)))
	return engine.ResultSuccess
}

// FetchAll replaces the ship map with the remote fleet listing.
func (h *ShipHandler) FetchAll(ev *engine.Event) engine.Result {
	ships, err := h.p.API.ListShips(context.Background())
	if err != nil {
		h.log.Error("fleet fetch failed", zap.Error(err))
		return engine.ResultFail
	}

	h.p.State.Lock()
	h.p.State.Ships = make(map[string]*game.Ship, len(ships))
	for _, ship := range ships {
		h.p.State.Ships[ship.Symbol] = ship
	}
	h.p.State.Unlock()

	h.log.Info("fetched fleet", zap.Int("ships", len(ships)))
	return engine.ResultSuccess
}

// recordTrade writes one executed buy/sell into the store ledger.
func (h *ShipHandler) recordTrade(ship *game.Ship, result *ports.TradeResult, side string) {
	if h.p.Store == nil {
		return
	}
	h.p.State.Lock()
	waypoint := ship.Nav.WaypointSymbol
	h.p.State.Unlock()

	tx := &ports.TradeTransaction{
		ID:           uuid.NewString(),
		ShipSymbol:   ship.Symbol,
		Waypoint:     waypoint,
		TradeSymbol:  result.TradeSymbol,
		Side:         side,
		Units:        result.Units,
		PricePerUnit: result.PricePerUnit,
		TotalPrice:   result.TotalPrice,
		Timestamp:    h.p.Clock.Now(),
	}
	if err := h.p.Store.RecordTradeTransaction(context.Background(), tx); err != nil {
		h.log.Warn("trade transaction record failed", zap.Error(err))
	}
}
