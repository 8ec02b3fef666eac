package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/andrescamacho/helmsman/internal/app"
	"github.com/andrescamacho/helmsman/internal/domain/game"
	"github.com/andrescamacho/helmsman/internal/engine"
)

// ContractHandler implements the CONTRACT.* remote operations. The
// strategy assignment events of the same type are registered by the
// strategy registry, not here.
type ContractHandler struct {
	p   *app.Params
	log *zap.Logger
}

// NewContractHandler creates the contract handler.
func NewContractHandler(p *app.Params) *ContractHandler {
	return &ContractHandler{p: p, log: p.Log.Named("contracts")}
}

// Register binds the contract event names.
func (h *ContractHandler) Register(reg *engine.Registry) {
	reg.Register(engine.TypeContract, "fetch_all", h.FetchAll)
	reg.Register(engine.TypeContract, "accept", h.Accept)
	reg.Register(engine.TypeContract, "deliver", h.Deliver)
	reg.Register(engine.TypeContract, "fulfill", h.Fulfill)
}

// FetchAll replaces the contract map with the remote listing.
func (h *ContractHandler) FetchAll(ev *engine.Event) engine.Result {
	contracts, err := h.p.API.ListContracts(context.Background())
	if err != nil {
		h.log.Error("contract fetch failed", zap.Error(err))
		return engine.ResultFail
	}

	h.p.State.Lock()
	h.p.State.Contracts = make(map[string]*game.Contract, len(contracts))
	for _, contract := range contracts {
		h.p.State.Contracts[contract.ID] = contract
	}
	h.p.State.Unlock()

	h.log.Info("fetched contracts", zap.Int("count", len(contracts)))
	return engine.ResultSuccess
}

// Accept accepts a contract and applies the credit advance.
func (h *ContractHandler) Accept(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.ContractPayload)
	if !ok {
		return engine.ResultSkip
	}

	result, err := h.p.API.AcceptContract(context.Background(), payload.ContractID)
	if err != nil {
		h.log.Error("contract accept failed", zap.String("contract", payload.ContractID), zap.Error(err))
		return engine.ResultFail
	}

	h.p.State.Lock()
	if result.Agent != nil {
		h.p.State.Agent = *result.Agent
	}
	h.p.State.Contracts[result.Contract.ID] = result.Contract
	h.p.State.Unlock()

	h.log.Info("accepted contract", zap.String("contract", result.Contract.ID))
	return engine.ResultSuccess
}

// Deliver turns in cargo against a contract delivery line.
func (h *ContractHandler) Deliver(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.DeliverPayload)
	if !ok {
		return engine.ResultSkip
	}

	result, err := h.p.API.DeliverContract(
		context.Background(), payload.ContractID, payload.Ship, payload.Resource, payload.Units)
	if err != nil {
		h.log.Error("contract deliver failed",
			zap.String("contract", payload.ContractID),
			zap.String("ship", payload.Ship),
			zap.Error(err))
		return engine.ResultFail
	}

	h.p.State.Lock()
	h.p.State.Contracts[payload.ContractID] = result.Contract
	if ship, ok := h.p.State.Ship(payload.Ship); ok {
		ship.Cargo = result.Cargo
	}
	h.p.State.Unlock()

	h.log.Info("delivered",
		zap.String("contract", payload.ContractID),
		zap.String("resource", payload.Resource),
		zap.Int("units", payload.Units))
	return engine.ResultSuccess
}

// Fulfill closes out a completed contract.
func (h *ContractHandler) Fulfill(ev *engine.Event) engine.Result {
	payload, ok := ev.Payload.(engine.ContractPayload)
	if !ok {
		return engine.ResultSkip
	}

	result, err := h.p.API.FulfillContract(context.Background(), payload.ContractID)
	if err != nil {
		h.log.Error("contract fulfill failed", zap.String("contract", payload.ContractID), zap.Error(err))
		return engine.ResultFail
	}

	h.p.State.Lock()
	if result.Agent != nil {
		h.p.State.Agent = *result.Agent
	}
	h.p.State.Contracts[payload.ContractID] = result.Contract
	h.p.State.Unlock()

	h.log.Info("fulfilled contract", zap.String("contract", payload.ContractID))
	return engine.ResultSuccess
}
