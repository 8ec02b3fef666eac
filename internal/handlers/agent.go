package handlers

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/andrescamacho/helmsman/internal/app"
	"github.com/andrescamacho/helmsman/internal/engine"
)

// AgentHandler implements the AGENT.* operations.
type AgentHandler struct {
	p   *app.Params
	log *zap.Logger
}

// NewAgentHandler creates the agent handler.
func NewAgentHandler(p *app.Params) *AgentHandler {
	return &AgentHandler{p: p, log: p.Log.Named("agent")}
}

// Register binds the agent event names.
func (h *AgentHandler) Register(reg *engine.Registry) {
	reg.Register(engine.TypeAgent, "fetch", h.Fetch)
	reg.Register(engine.TypeAgent, "register", h.RegisterAgent)
}

// Fetch refreshes the agent record.
func (h *AgentHandler) Fetch(ev *engine.Event) engine.Result {
	agent, err := h.p.API.FetchAgent(context.Background())
	if err != nil {
		h.log.Error("agent fetch failed", zap.Error(err))
		return engine.ResultFail
	}

	h.p.State.Lock()
	h.p.State.Agent = *agent
	h.p.State.Unlock()

	h.log.Info("fetched agent",
		zap.String("symbol", agent.Symbol),
		zap.Int("credits", agent.Credits))
	return engine.ResultSuccess
}

// RegisterAgent creates a fresh account. Discarded when a token is already
// configured, since the bearer would invalidate the registration call.
func (h *AgentHandler) RegisterAgent(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.RegisterPayload)
	if !ok {
		return engine.ResultSkip
	}
	if os.Getenv("TOKEN") != "" {
		h.log.Warn("auth token already present, registration discarded")
		return engine.ResultSkip
	}

	result, err := h.p.API.Register(context.Background(), payload.Symbol, payload.Faction, payload.Email)
	if err != nil {
		h.log.Error("registration failed", zap.String("symbol", payload.Symbol), zap.Error(err))
		return engine.ResultFail
	}

	h.p.State.Lock()
	h.p.State.Agent = *result.Agent
	h.p.State.Ships[result.Ship.Symbol] = result.Ship
	h.p.State.Contracts[result.Contract.ID] = result.Contract
	h.p.State.Unlock()

	// The operator has to save this into .env themselves.
	h.log.Info("registered new account",
		zap.String("symbol", result.Agent.Symbol),
		zap.String("token", result.Token))
	return engine.ResultSuccess
}
