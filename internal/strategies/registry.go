package strategies

import (
	"go.uber.org/zap"

	"github.com/andrescamacho/helmsman/internal/app"
	"github.com/andrescamacho/helmsman/internal/engine"
)

// Registry owns the active strategies: one in-system trade strategy and
// one contract strategy per active contract. It registers the engine
// events that create and steer them. Strategy operations never touch the
// remote API themselves, so every handler here is INSTANT.
type Registry struct {
	p   *app.Params
	log *zap.Logger

	trade     *SystemTradeStrategy
	contracts map[string]*ContractStrategy
}

// NewRegistry creates the strategy registry with an idle trade strategy.
func NewRegistry(p *app.Params) *Registry {
	return &Registry{
		p:         p,
		log:       p.Log.Named("strategies"),
		trade:     NewSystemTradeStrategy(p),
		contracts: make(map[string]*ContractStrategy),
	}
}

// Trade exposes the trade strategy (for the REPL's synchronous path).
func (r *Registry) Trade() *SystemTradeStrategy {
	return r.trade
}

// Contract returns the strategy driving the given contract, if any.
func (r *Registry) Contract(id string) (*ContractStrategy, bool) {
	s, ok := r.contracts[id]
	return s, ok
}

// Register binds the strategy event names.
func (r *Registry) Register(reg *engine.Registry) {
	reg.Register(engine.TypeStrategy, "trade", r.AssignTrader)
	reg.Register(engine.TypeStrategy, "market_update", r.AssignMarketUpdater)
	reg.Register(engine.TypeStrategy, "trade_routes", r.BuildTradeRoutes)
	reg.Register(engine.TypeContract, "strategy", r.StartContractStrategy)
	reg.Register(engine.TypeContract, "assign_strategy_ship", r.AssignContractShip)
	reg.Register(engine.TypeContract, "assign_strategy_surveyor", r.AssignContractSurveyor)
	reg.Register(engine.TypeContract, "assign_strategy_survey", r.AssignContractSurvey)
}

// AssignTrader puts a ship into the trade pool, on an explicit route when
// the payload carries one.
func (r *Registry) AssignTrader(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.TradeAssignPayload)
	if !ok {
		return engine.ResultSkip
	}

	var route *TradeRoute
	if payload.Resource != "" && payload.Source != "" && payload.Target != "" {
		route = &TradeRoute{
			Resource: payload.Resource,
			Source:   payload.Source,
			Target:   payload.Target,
		}
	}
	r.trade.AssignShip(payload.Ship, route)
	return engine.ResultInstant
}

// AssignMarketUpdater makes a ship the marketplace scout for a system.
func (r *Registry) AssignMarketUpdater(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.MarketUpdatePayload)
	if !ok {
		return engine.ResultSkip
	}
	r.trade.AssignMarketUpdater(payload.Ship, payload.System)
	return engine.ResultInstant
}

// BuildTradeRoutes re-runs the planner on demand.
func (r *Registry) BuildTradeRoutes(ev *engine.Event) engine.Result {
	r.trade.BuildTradeRoutes()
	return engine.ResultInstant
}

// StartContractStrategy creates the mining strategy for a contract.
// Re-issuing the event for a known contract is a no-op.
func (r *Registry) StartContractStrategy(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.ContractStrategyPayload)
	if !ok {
		return engine.ResultSkip
	}
	if _, exists := r.contracts[payload.ContractID]; exists {
		r.log.Warn("contract strategy already active", zap.String("contract", payload.ContractID))
		return engine.ResultSkip
	}

	r.contracts[payload.ContractID] = NewContractStrategy(r.p, payload.ContractID, payload.Asteroid)
	r.log.Info("contract strategy started",
		zap.String("contract", payload.ContractID),
		zap.String("asteroid", payload.Asteroid))
	return engine.ResultInstant
}

// AssignContractShip adds a miner to a contract strategy.
func (r *Registry) AssignContractShip(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.AssignShipPayload)
	if !ok {
		return engine.ResultSkip
	}
	strategy, ok := r.contracts[payload.ContractID]
	if !ok {
		r.log.Warn("no strategy for contract", zap.String("contract", payload.ContractID))
		return engine.ResultSkip
	}
	strategy.AssignShip(payload.Ship)
	return engine.ResultInstant
}

// AssignContractSurveyor nominates the surveyor of a contract strategy.
func (r *Registry) AssignContractSurveyor(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.AssignShipPayload)
	if !ok {
		return engine.ResultSkip
	}
	strategy, ok := r.contracts[payload.ContractID]
	if !ok {
		r.log.Warn("no strategy for contract", zap.String("contract", payload.ContractID))
		return engine.ResultSkip
	}
	strategy.AssignSurveyor(payload.Ship)
	return engine.ResultInstant
}

// AssignContractSurvey pins a survey signature on a contract strategy.
func (r *Registry) AssignContractSurvey(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.AssignSurveyPayload)
	if !ok {
		return engine.ResultSkip
	}
	strategy, ok := r.contracts[payload.ContractID]
	if !ok {
		r.log.Warn("no strategy for contract", zap.String("contract", payload.ContractID))
		return engine.ResultSkip
	}
	strategy.AssignSurvey(payload.Signature)
	return engine.ResultInstant
}
