package handlers

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/andrescamacho/helmsman/internal/app"
	"github.com/andrescamacho/helmsman/internal/domain/ports"
	"github.com/andrescamacho/helmsman/internal/engine"
)

// SystemHandler implements the SYSTEM.* lookups. The handlers that cache
// (fetch_market, system_waypoints, shipyard, system, jump_gate) write
// snapshots through the store so strategies can plan across restarts.
type SystemHandler struct {
	p   *app.Params
	log *zap.Logger
}

// NewSystemHandler creates the system handler.
func NewSystemHandler(p *app.Params) *SystemHandler {
	return &SystemHandler{p: p, log: p.Log.Named("system")}
}

// Register binds the system event names.
func (h *SystemHandler) Register(reg *engine.Registry) {
	reg.Register(engine.TypeSystem, "system", h.System)
	reg.Register(engine.TypeSystem, "jump_gate", h.JumpGate)
	reg.Register(engine.TypeSystem, "waypoint", h.Waypoint)
	reg.Register(engine.TypeSystem, "system_waypoints", h.SystemWaypoints)
	reg.Register(engine.TypeSystem, "fetch_market", h.FetchMarket)
	reg.Register(engine.TypeSystem, "shipyard", h.Shipyard)
}

// snapshot marshals and persists a cacheable record; best-effort.
func (h *SystemHandler) snapshot(kind, key string, value any) {
	if h.p.Store == nil {
		return
	}
	blob, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := h.p.Store.SaveSnapshot(context.Background(), kind, key, blob); err != nil {
		h.log.Warn("snapshot failed", zap.String("kind", kind), zap.String("key", key), zap.Error(err))
	}
}

// System fetches a system record with its waypoint stubs.
func (h *SystemHandler) System(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.SystemPayload)
	if !ok {
		return engine.ResultSkip
	}

	info, err := h.p.API.GetSystem(context.Background(), payload.System)
	if err != nil {
		h.log.Error("system fetch failed", zap.String("system", payload.System), zap.Error(err))
		return engine.ResultFail
	}

	h.p.State.Lock()
	for _, wp := range info.Waypoints {
		h.p.State.Waypoints[wp.Symbol] = wp
	}
	h.p.State.Unlock()

	h.snapshot(ports.SnapshotSystem, payload.System, info)
	h.log.Info("fetched system",
		zap.String("system", info.Symbol),
		zap.Int("waypoints", len(info.Waypoints)))
	return engine.ResultSuccess
}

// JumpGate fetches the connected systems of a gate.
func (h *SystemHandler) JumpGate(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.SystemPayload)
	if !ok {
		return engine.ResultSkip
	}

	gate, err := h.p.API.GetJumpGate(context.Background(), payload.System)
	if err != nil {
		h.log.Error("jump gate fetch failed", zap.String("system", payload.System), zap.Error(err))
		return engine.ResultFail
	}

	h.snapshot(ports.SnapshotJumpGate, payload.System, gate)
	h.log.Info("fetched jump gate",
		zap.String("system", payload.System),
		zap.Int("connections", len(gate.ConnectedSystems)))
	return engine.ResultSuccess
}

// Waypoint fetches one waypoint record.
func (h *SystemHandler) Waypoint(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.WaypointPayload)
	if !ok {
		return engine.ResultSkip
	}

	wp, err := h.p.API.GetWaypoint(context.Background(), payload.Waypoint)
	if err != nil {
		h.log.Error("waypoint fetch failed", zap.String("waypoint", payload.Waypoint), zap.Error(err))
		return engine.ResultFail
	}

	h.p.State.Lock()
	h.p.State.Waypoints[wp.Symbol] = wp
	h.p.State.Unlock()

	h.log.Info("fetched waypoint",
		zap.String("waypoint", wp.Symbol),
		zap.String("type", wp.Type))
	return engine.ResultSuccess
}

// SystemWaypoints fetches and persists every waypoint of a system; the
// trade strategy reads them back through the store.
func (h *SystemHandler) SystemWaypoints(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.SystemPayload)
	if !ok {
		return engine.ResultSkip
	}

	waypoints, err := h.p.API.ListWaypoints(context.Background(), payload.System)
	if err != nil {
		h.log.Error("system waypoints fetch failed", zap.String("system", payload.System), zap.Error(err))
		return engine.ResultFail
	}

	h.p.State.Lock()
	for _, wp := range waypoints {
		h.p.State.Waypoints[wp.Symbol] = wp
	}
	h.p.State.Unlock()

	if h.p.Store != nil {
		if err := h.p.Store.SaveWaypoints(context.Background(), waypoints); err != nil {
			h.log.Warn("waypoint persist failed", zap.String("system", payload.System), zap.Error(err))
		}
	}

	h.log.Info("fetched system waypoints",
		zap.String("system", payload.System),
		zap.Int("count", len(waypoints)))
	return engine.ResultSuccess
}

// FetchMarket refreshes one marketplace's price sheet.
func (h *SystemHandler) FetchMarket(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.WaypointPayload)
	if !ok {
		return engine.ResultSkip
	}

	market, err := h.p.API.GetMarket(context.Background(), payload.Waypoint)
	if err != nil {
		h.log.Error("market fetch failed", zap.String("waypoint", payload.Waypoint), zap.Error(err))
		return engine.ResultFail
	}

	h.p.State.Lock()
	h.p.State.Markets[payload.Waypoint] = market
	h.p.State.Unlock()

	h.snapshot(ports.SnapshotMarket, payload.Waypoint, market)
	h.log.Info("updated market",
		zap.String("waypoint", payload.Waypoint),
		zap.Int("goods", len(market.TradeGoods)))
	return engine.ResultSuccess
}

// Shipyard fetches a shipyard's purchase listings.
func (h *SystemHandler) Shipyard(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.WaypointPayload)
	if !ok {
		return engine.ResultSkip
	}

	shipyard, err := h.p.API.GetShipyard(context.Background(), payload.Waypoint)
	if err != nil {
		h.log.Error("shipyard fetch failed", zap.String("waypoint", payload.Waypoint), zap.Error(err))
		return engine.ResultFail
	}

	h.snapshot(ports.SnapshotShipyard, payload.Waypoint, shipyard)
	h.log.Info("fetched shipyard",
		zap.String("waypoint", payload.Waypoint),
		zap.Int("listings", len(shipyard.Listings)))
	return engine.ResultSuccess
}
